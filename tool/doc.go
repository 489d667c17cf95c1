// Package tool provides the web search providers behind capability.WebSearcher.
//
// # Providers
//
//   - TavilySearch: the Tavily search API (TAVILY_API_KEY)
//   - BraveSearch: the Brave Search API (BRAVE_API_KEY)
//   - DuckDuckGoSearch: the DuckDuckGo HTML endpoint, parsed with goquery
//
// Every provider returns []capability.SearchResult. Transport failures and
// non-200 responses are reported as capability.ErrCapabilityUnavailable and
// undecodable bodies as capability.ErrMalformedOutput.
//
//	search, err := tool.NewTavilySearch("", tool.WithTavilyMaxResults(3))
//	if err != nil {
//		return err
//	}
//	results, err := search.Search(ctx, "latest developments in quantum computing")
//
// NewWebSearcher picks a provider by name, which is how the server wires the
// SEARCH_PROVIDER setting.
package tool

package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

// TavilySearch searches the web through the Tavily API.
type TavilySearch struct {
	APIKey      string
	BaseURL     string
	MaxResults  int
	SearchDepth string
	client      *http.Client
}

var _ capability.WebSearcher = (*TavilySearch)(nil)

type TavilyOption func(*TavilySearch)

// WithTavilyBaseURL sets the search endpoint.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *TavilySearch) {
		t.BaseURL = baseURL
	}
}

// WithTavilyMaxResults sets the number of results per query.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *TavilySearch) {
		if n > 0 {
			t.MaxResults = n
		}
	}
}

// WithTavilySearchDepth sets "basic" or "advanced" search depth.
func WithTavilySearchDepth(depth string) TavilyOption {
	return func(t *TavilySearch) {
		t.SearchDepth = depth
	}
}

// WithTavilyHTTPClient sets the HTTP client.
func WithTavilyHTTPClient(c *http.Client) TavilyOption {
	return func(t *TavilySearch) {
		t.client = c
	}
}

// NewTavilySearch creates a Tavily searcher. An empty apiKey falls back to
// TAVILY_API_KEY.
func NewTavilySearch(apiKey string, opts ...TavilyOption) (*TavilySearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY not set")
	}

	t := &TavilySearch{
		APIKey:      apiKey,
		BaseURL:     "https://api.tavily.com/search",
		MaxResults:  3,
		SearchDepth: "basic",
		client:      http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search executes one query.
func (t *TavilySearch) Search(ctx context.Context, query string) ([]capability.SearchResult, error) {
	body, err := json.Marshal(map[string]any{
		"api_key":      t.APIKey,
		"query":        query,
		"max_results":  t.MaxResults,
		"search_depth": t.SearchDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, capability.Unavailable("tavily", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, capability.Unavailable("tavily", fmt.Errorf("status %d", resp.StatusCode))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, capability.Malformed("tavily", err)
	}

	results := make([]capability.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, capability.SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return results, nil
}

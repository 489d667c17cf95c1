package tool

import (
	"fmt"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

// NewWebSearcher builds the named provider. apiKey is ignored by duckduckgo.
func NewWebSearcher(provider, apiKey string, maxResults int) (capability.WebSearcher, error) {
	switch provider {
	case "tavily", "":
		t, err := NewTavilySearch(apiKey, WithTavilyMaxResults(maxResults))
		if err != nil {
			return nil, err
		}
		return t, nil
	case "brave":
		b, err := NewBraveSearch(apiKey, WithBraveCount(maxResults))
		if err != nil {
			return nil, err
		}
		return b, nil
	case "duckduckgo":
		return NewDuckDuckGoSearch(maxResults), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", provider)
	}
}

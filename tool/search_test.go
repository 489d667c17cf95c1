package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "solar storms", body["query"])
		assert.Equal(t, float64(2), body["max_results"])
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"title":"NOAA","url":"https://noaa.example","content":"Space weather update","score":0.9},
			{"title":"NASA","url":"https://nasa.example","content":"Solar cycle 25","score":0.8}
		]}`))
	}))
	defer server.Close()

	search, err := NewTavilySearch("test-key", WithTavilyBaseURL(server.URL), WithTavilyMaxResults(2))
	require.NoError(t, err)

	results, err := search.Search(context.Background(), "solar storms")
	require.NoError(t, err)
	assert.Equal(t, []capability.SearchResult{
		{Title: "NOAA", URL: "https://noaa.example", Snippet: "Space weather update"},
		{Title: "NASA", URL: "https://nasa.example", Snippet: "Solar cycle 25"},
	}, results)
}

func TestTavilySearch_Errors(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	_, err := NewTavilySearch("")
	assert.Error(t, err)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer failing.Close()

	search, err := NewTavilySearch("k", WithTavilyBaseURL(failing.URL))
	require.NoError(t, err)
	_, err = search.Search(context.Background(), "q")
	assert.ErrorIs(t, err, capability.ErrCapabilityUnavailable)

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer garbage.Close()

	search, err = NewTavilySearch("k", WithTavilyBaseURL(garbage.URL))
	require.NoError(t, err)
	_, err = search.Search(context.Background(), "q")
	assert.ErrorIs(t, err, capability.ErrMalformedOutput)
}

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go generics", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		assert.Equal(t, "brave-key", r.Header.Get("X-Subscription-Token"))
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"Go","url":"https://go.dev","description":"Type parameters"}]}}`))
	}))
	defer server.Close()

	search, err := NewBraveSearch("brave-key", WithBraveBaseURL(server.URL), WithBraveCount(5))
	require.NoError(t, err)

	results, err := search.Search(context.Background(), "go generics")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://go.dev", results[0].URL)
	assert.Equal(t, "Type parameters", results[0].Snippet)
}

func TestBraveCountClamped(t *testing.T) {
	search, err := NewBraveSearch("k", WithBraveCount(50))
	require.NoError(t, err)
	assert.Equal(t, 20, search.Count)

	search, err = NewBraveSearch("k", WithBraveCount(0))
	require.NoError(t, err)
	assert.Equal(t, 1, search.Count)
}

const duckHTML = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa&rut=x">First <b>hit</b></a>
  <a class="result__snippet">Snippet one</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/b">Second</a>
  <div class="result__snippet">Snippet two</div>
</div>
<div class="result">
  <a class="result__a" href="https://example.net/c">Third</a>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rust async", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(duckHTML))
	}))
	defer server.Close()

	search := NewDuckDuckGoSearch(2)
	search.BaseURL = server.URL + "/"

	results, err := search.Search(context.Background(), "rust async")
	require.NoError(t, err)
	assert.Equal(t, []capability.SearchResult{
		{Title: "First hit", URL: "https://example.com/a", Snippet: "Snippet one"},
		{Title: "Second", URL: "https://example.org/b", Snippet: "Snippet two"},
	}, results)
}

func TestDuckDuckGoSearch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	search := NewDuckDuckGoSearch(3)
	search.BaseURL = server.URL + "/"
	_, err := search.Search(context.Background(), "q")
	assert.ErrorIs(t, err, capability.ErrCapabilityUnavailable)
	assert.Contains(t, err.Error(), "status code 403")
}

func TestNewWebSearcher(t *testing.T) {
	s, err := NewWebSearcher("duckduckgo", "", 3)
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGoSearch{}, s)

	s, err = NewWebSearcher("brave", "k", 3)
	require.NoError(t, err)
	assert.IsType(t, &BraveSearch{}, s)

	_, err = NewWebSearcher("bing", "k", 3)
	assert.Error(t, err)
}

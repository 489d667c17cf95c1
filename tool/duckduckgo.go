package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
)

// DuckDuckGoSearch scrapes the DuckDuckGo HTML endpoint. It needs no API key.
type DuckDuckGoSearch struct {
	BaseURL    string
	MaxResults int
	UserAgent  string
	client     *http.Client
}

var _ capability.WebSearcher = (*DuckDuckGoSearch)(nil)

// NewDuckDuckGoSearch creates a searcher returning at most maxResults hits.
func NewDuckDuckGoSearch(maxResults int) *DuckDuckGoSearch {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &DuckDuckGoSearch{
		BaseURL:    "https://html.duckduckgo.com/html/",
		MaxResults: maxResults,
		UserAgent:  "Mozilla/5.0 (compatible; chat-agents/1.0)",
		client:     http.DefaultClient,
	}
}

// Search executes one query and parses the result list.
func (d *DuckDuckGoSearch) Search(ctx context.Context, query string) ([]capability.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, capability.Unavailable("duckduckgo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, capability.Unavailable("duckduckgo", fmt.Errorf("status code %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, capability.Malformed("duckduckgo", err)
	}

	var results []capability.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		results = append(results, capability.SearchResult{
			Title:   title,
			URL:     resolveDuckDuckGoLink(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").Text()),
		})
		return len(results) < d.MaxResults
	})
	return results, nil
}

// resolveDuckDuckGoLink unwraps the /l/?uddg= redirect links.
func resolveDuckDuckGoLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

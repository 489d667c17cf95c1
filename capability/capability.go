// Package capability defines the collaborators the agent graphs depend on:
// a vector index over document chunks and a web search provider. The
// language model is github.com/tmc/langchaingo/llms.Model.
package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCapabilityUnavailable marks a collaborator that could not be reached
	// or returned an operational error.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrMalformedOutput marks model output that did not match the expected shape.
	ErrMalformedOutput = errors.New("malformed output")
)

// Error attributes a failure to a named capability. It matches both its Kind
// and the underlying error under errors.Is.
type Error struct {
	Capability string
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Capability, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Capability, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as ErrCapabilityUnavailable for the named capability.
func Unavailable(name string, err error) error {
	return &Error{Capability: name, Kind: ErrCapabilityUnavailable, Err: err}
}

// Malformed wraps err as ErrMalformedOutput for the named capability.
func Malformed(name string, err error) error {
	return &Error{Capability: name, Kind: ErrMalformedOutput, Err: err}
}

// Document is a retrievable chunk of text.
type Document struct {
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text"`
	Source   string         `json:"source,omitempty"`
	Page     int            `json:"page,omitempty"`
	Score    float64        `json:"score,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSource is the Document.Source value for grounding material built from
// web search results.
const WebSource = "web_search"

// WebDocument joins search results into a single grounding document.
func WebDocument(results []SearchResult) Document {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Snippet)
	}
	return Document{
		Text:     strings.Join(parts, "\n"),
		Source:   WebSource,
		Metadata: map[string]any{"type": "text", "results": len(results)},
	}
}

// VectorIndex stores document chunks and answers similarity queries.
type VectorIndex interface {
	// Index adds documents to the index.
	Index(ctx context.Context, docs ...Document) error
	// Search returns at most k documents ranked by similarity to query.
	Search(ctx context.Context, query string, k int) ([]Document, error)
	// Reset removes every document.
	Reset(ctx context.Context) error
	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// WebSearcher queries a web search provider.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// WebSearcherFunc adapts a function to WebSearcher.
type WebSearcherFunc func(ctx context.Context, query string) ([]SearchResult, error)

func (f WebSearcherFunc) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return f(ctx, query)
}

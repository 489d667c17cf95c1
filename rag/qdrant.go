package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "pdf_pages"

// QdrantIndex stores chunks in a Qdrant collection. Points are written and
// searched through the langchaingo vector store; collection lifecycle and
// counting go through the Qdrant REST API.
type QdrantIndex struct {
	baseURL    string
	apiKey     string
	collection string
	vectorSize int
	embedder   embeddings.Embedder
	client     *http.Client
	store      qdrant.Store

	mu      sync.Mutex
	ensured bool
}

var _ capability.VectorIndex = (*QdrantIndex)(nil)

// QdrantOption configures a QdrantIndex.
type QdrantOption func(*QdrantIndex)

// WithQdrantAPIKey sets the api-key header.
func WithQdrantAPIKey(key string) QdrantOption {
	return func(q *QdrantIndex) { q.apiKey = key }
}

// WithQdrantCollection overrides DefaultCollection.
func WithQdrantCollection(name string) QdrantOption {
	return func(q *QdrantIndex) { q.collection = name }
}

// WithQdrantVectorSize fixes the vector size used when creating the
// collection. Without it the size is taken from a probe embedding.
func WithQdrantVectorSize(n int) QdrantOption {
	return func(q *QdrantIndex) { q.vectorSize = n }
}

// WithQdrantHTTPClient sets the client used for REST calls.
func WithQdrantHTTPClient(c *http.Client) QdrantOption {
	return func(q *QdrantIndex) { q.client = c }
}

// NewQdrantIndex connects to the Qdrant instance at rawURL.
func NewQdrantIndex(rawURL string, embedder embeddings.Embedder, opts ...QdrantOption) (*QdrantIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("qdrant index: embedder is required")
	}
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant url %q: %w", rawURL, err)
	}

	q := &QdrantIndex{
		baseURL:    u.String(),
		collection: DefaultCollection,
		embedder:   embedder,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(q)
	}
	if strings.TrimSpace(q.collection) == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}

	storeOpts := []qdrant.Option{
		qdrant.WithURL(*u),
		qdrant.WithCollectionName(q.collection),
		qdrant.WithEmbedder(embedder),
	}
	if q.apiKey != "" {
		storeOpts = append(storeOpts, qdrant.WithAPIKey(q.apiKey))
	}
	store, err := qdrant.New(storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant store: %w", err)
	}
	q.store = store
	return q, nil
}

// Index embeds and upserts docs, creating the collection on first use.
func (q *QdrantIndex) Index(ctx context.Context, docs ...capability.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := q.ensureCollection(ctx); err != nil {
		return err
	}
	converted := make([]schema.Document, len(docs))
	for i, d := range docs {
		converted[i] = toSchema(d)
	}
	if _, err := q.store.AddDocuments(ctx, converted); err != nil {
		return capability.Unavailable("qdrant", err)
	}
	return nil
}

// Search returns the k nearest chunks, best first.
func (q *QdrantIndex) Search(ctx context.Context, query string, k int) ([]capability.Document, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	found, err := q.store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, capability.Unavailable("qdrant", err)
	}
	out := make([]capability.Document, 0, len(found))
	for _, d := range found {
		out = append(out, fromSchema(d))
	}
	return out, nil
}

// Reset deletes the collection. It is recreated by the next Index call.
func (q *QdrantIndex) Reset(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	path := "/collections/" + url.PathEscape(q.collection)
	status, err := q.doJSON(ctx, http.MethodDelete, path, nil, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	q.ensured = false
	return nil
}

// Count reports the exact number of points in the collection. A missing
// collection counts as empty.
func (q *QdrantIndex) Count(ctx context.Context) (int, error) {
	req := struct {
		Exact bool `json:"exact"`
	}{Exact: true}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}

	path := fmt.Sprintf("/collections/%s/points/count", url.PathEscape(q.collection))
	status, err := q.doJSON(ctx, http.MethodPost, path, req, &resp)
	if status == http.StatusNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ensured {
		return nil
	}

	size := q.vectorSize
	if size <= 0 {
		probe, err := q.embedder.EmbedQuery(ctx, "dimension probe")
		if err != nil {
			return capability.Unavailable("embedder", err)
		}
		size = len(probe)
	}
	if size <= 0 {
		return fmt.Errorf("qdrant vector size must be > 0")
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     size,
			"distance": "Cosine",
		},
	}
	path := "/collections/" + url.PathEscape(q.collection)
	status, err := q.doJSON(ctx, http.MethodPut, path, body, nil)
	// Qdrant answers 409 when the collection already exists.
	if err != nil && status != http.StatusConflict {
		return err
	}
	q.ensured = true
	return nil
}

// doJSON performs one REST call. The status code is returned even when the
// call failed so callers can tolerate specific answers.
func (q *QdrantIndex) doJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(q.apiKey) != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, capability.Unavailable("qdrant", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, capability.Unavailable("qdrant",
			fmt.Errorf("request failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(raw)))
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, capability.Malformed("qdrant", err)
	}
	return resp.StatusCode, nil
}

package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mahmoud-mohsen97/Chat-Agents/capability"
	"github.com/tmc/langchaingo/embeddings"
)

// MemoryIndex is an in-process vector index ranked by cosine similarity.
type MemoryIndex struct {
	mu       sync.RWMutex
	docs     []capability.Document
	vectors  [][]float32
	embedder embeddings.Embedder
}

var _ capability.VectorIndex = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty index that embeds with embedder.
func NewMemoryIndex(embedder embeddings.Embedder) *MemoryIndex {
	return &MemoryIndex{embedder: embedder}
}

// Index embeds and stores docs. Documents without an ID get a random one.
func (m *MemoryIndex) Index(ctx context.Context, docs ...capability.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if m.embedder == nil {
		return errors.New("memory index: no embedder configured")
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := m.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return capability.Unavailable("embedder", err)
	}
	if len(vectors) != len(docs) {
		return capability.Malformed("embedder", fmt.Errorf("got %d vectors for %d documents", len(vectors), len(docs)))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range docs {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		m.docs = append(m.docs, d)
		m.vectors = append(m.vectors, vectors[i])
	}
	return nil
}

// Search returns the k most similar documents, best first.
func (m *MemoryIndex) Search(ctx context.Context, query string, k int) ([]capability.Document, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if m.embedder == nil {
		return nil, errors.New("memory index: no embedder configured")
	}

	m.mu.RLock()
	empty := len(m.docs) == 0
	m.mu.RUnlock()
	if empty {
		return []capability.Document{}, nil
	}

	qv, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, capability.Unavailable("embedder", err)
	}

	type scored struct {
		index int
		score float64
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	scores := make([]scored, len(m.vectors))
	for i, v := range m.vectors {
		scores[i] = scored{index: i, score: cosineSimilarity(qv, v)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	k = min(k, len(scores))
	results := make([]capability.Document, k)
	for i := range k {
		doc := m.docs[scores[i].index]
		doc.Score = scores[i].score
		results[i] = doc
	}
	return results, nil
}

// Reset drops every stored document.
func (m *MemoryIndex) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	m.vectors = nil
	return nil
}

// Count reports the number of stored chunks.
func (m *MemoryIndex) Count(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

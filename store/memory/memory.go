// Package memory provides an in-process report store.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// MemoryReportStore implements store.ReportStore with a map.
type MemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]*store.Report
}

// NewMemoryReportStore creates an empty store.
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: make(map[string]*store.Report)}
}

// Save stores a report.
func (s *MemoryReportStore) Save(_ context.Context, report *store.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[report.ID]; ok {
		return store.ErrExists
	}
	s.reports[report.ID] = clone(report)
	return nil
}

// Load retrieves a report by id.
func (s *MemoryReportStore) Load(_ context.Context, id string) (*store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(r), nil
}

// List returns every report, newest first.
func (s *MemoryReportStore) List(_ context.Context) ([]*store.Report, error) {
	s.mu.RLock()
	out := make([]*store.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, clone(r))
	}
	s.mu.RUnlock()

	store.SortNewestFirst(out)
	return out, nil
}

// Delete removes a report.
func (s *MemoryReportStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

func clone(r *store.Report) *store.Report {
	c := *r
	c.Queries = slices.Clone(r.Queries)
	return &c
}

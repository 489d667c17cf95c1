// Package file stores each report as a JSON file in a directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

const ext = ".json"

// FileReportStore implements store.ReportStore on the local filesystem.
type FileReportStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileReportStore creates the directory if needed.
func NewFileReportStore(dir string) (*FileReportStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &FileReportStore{dir: dir}, nil
}

func (s *FileReportStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid report id %q", id)
	}
	return filepath.Join(s.dir, id+ext), nil
}

// Save writes a new report file. It fails if the file already exists.
func (s *FileReportStore) Save(_ context.Context, report *store.Report) error {
	p, err := s.path(report.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return store.ErrExists
		}
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return f.Close()
}

// Load reads a report file.
func (s *FileReportStore) Load(_ context.Context, id string) (*store.Report, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readReport(p)
}

// List reads every report file in the directory, newest first. Files that
// cannot be decoded are skipped.
func (s *FileReportStore) List(_ context.Context) ([]*store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	reports := []*store.Report{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		r, err := readReport(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}
	store.SortNewestFirst(reports)
	return reports, nil
}

// Delete removes a report file.
func (s *FileReportStore) Delete(_ context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to delete report file: %w", err)
	}
	return nil
}

func readReport(p string) (*store.Report, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	var r store.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}

package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

var (
	// ErrNotFound is returned when no report has the requested id.
	ErrNotFound = errors.New("report not found")
	// ErrExists is returned when saving a report whose id is already taken.
	// Reports are write-once.
	ErrExists = errors.New("report already exists")
)

// Report is a persisted research report.
type Report struct {
	ID          string    `json:"report_id"`
	Query       string    `json:"query"`
	Title       string    `json:"title"`
	Markdown    string    `json:"markdown"`
	Persona     string    `json:"persona"`
	Queries     []string  `json:"queries"`
	WordCount   int       `json:"word_count"`
	CharCount   int       `json:"char_count"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"timestamp"`
}

// ReportStore defines the interface for report persistence.
type ReportStore interface {
	// Save stores a new report. It returns ErrExists if the id is taken.
	Save(ctx context.Context, report *Report) error

	// Load retrieves a report by id. It returns ErrNotFound if missing.
	Load(ctx context.Context, id string) (*Report, error)

	// List returns every report, newest first.
	List(ctx context.Context) ([]*Report, error)

	// Delete removes a report. It returns ErrNotFound if missing.
	Delete(ctx context.Context, id string) error
}

// SortNewestFirst orders reports by CreatedAt descending, then by id.
func SortNewestFirst(reports []*Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
}

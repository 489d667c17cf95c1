package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mahmoud-mohsen97/Chat-Agents/log"
	"github.com/mahmoud-mohsen97/Chat-Agents/researcher"
	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// personaLimit is how many characters of the persona a report keeps.
const personaLimit = 100

// ErrEmptyQuery is returned when Generate is called without a topic.
var ErrEmptyQuery = errors.New("query must not be empty")

// Researcher produces a research result for a topic.
type Researcher interface {
	Run(ctx context.Context, question string) (researcher.Result, error)
}

// Service generates research reports and keeps them in a store.
type Service struct {
	research Researcher
	reports  store.ReportStore
	logger   log.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time source for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets how report ids are minted.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService creates a report service.
func NewService(research Researcher, reports store.ReportStore, opts ...Option) *Service {
	s := &Service{
		research: research,
		reports:  reports,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrDefault(s.logger)
	return s
}

// Generate researches query and returns the report. With save set, a report
// with content is also written to the store.
func (s *Service) Generate(ctx context.Context, query string, save bool) (*store.Report, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	s.logger.Info("Generating research report for: %s", query)
	res, err := s.research.Run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("research failed: %w", err)
	}

	r := s.build(query, res)
	if save && r.Markdown != "" {
		if err := s.reports.Save(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to save report %s: %w", r.ID, err)
		}
		s.logger.Info("Report saved: %s", r.ID)
	}
	return r, nil
}

func (s *Service) build(query string, res researcher.Result) *store.Report {
	return &store.Report{
		ID:          s.newID(),
		Query:       query,
		Title:       Title(res.Markdown),
		Markdown:    res.Markdown,
		Persona:     truncatePersona(res.Persona),
		Queries:     res.Queries[:],
		WordCount:   len(strings.Fields(res.Markdown)),
		CharCount:   utf8.RuneCountInString(res.Markdown),
		ResultCount: res.ResultCount,
		CreatedAt:   s.now().UTC(),
	}
}

// List returns saved reports, newest first.
func (s *Service) List(ctx context.Context) ([]*store.Report, error) {
	return s.reports.List(ctx)
}

// Get returns one saved report.
func (s *Service) Get(ctx context.Context, id string) (*store.Report, error) {
	return s.reports.Load(ctx, id)
}

// Delete removes a saved report.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Report deleted: %s", id)
	return nil
}

func truncatePersona(p string) string {
	r := []rune(p)
	if len(r) <= personaLimit {
		return p
	}
	return string(r[:personaLimit]) + "..."
}

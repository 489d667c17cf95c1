// Package postgres provides a PostgreSQL-backed report store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// uniqueViolation is the SQLSTATE for a duplicate primary key.
const uniqueViolation = "23505"

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresReportStore implements store.ReportStore using PostgreSQL
type PostgresReportStore struct {
	pool      DBPool
	tableName string
}

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	TableName  string // Default "reports"
}

// NewPostgresReportStore creates a new Postgres report store
func NewPostgresReportStore(ctx context.Context, opts PostgresOptions) (*PostgresReportStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPostgresReportStoreWithPool(pool, opts.TableName), nil
}

// NewPostgresReportStoreWithPool creates a new Postgres report store with an existing pool
// Useful for testing with mocks
func NewPostgresReportStoreWithPool(pool DBPool, tableName string) *PostgresReportStore {
	if tableName == "" {
		tableName = "reports"
	}
	return &PostgresReportStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *PostgresReportStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			title TEXT NOT NULL,
			markdown TEXT NOT NULL,
			persona TEXT NOT NULL,
			queries JSONB NOT NULL,
			word_count INTEGER NOT NULL,
			char_count INTEGER NOT NULL,
			result_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at DESC);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresReportStore) Close() {
	s.pool.Close()
}

// Save inserts a report. The primary key makes it write-once.
func (s *PostgresReportStore) Save(ctx context.Context, report *store.Report) error {
	queriesJSON, err := json.Marshal(report.Queries)
	if err != nil {
		return fmt.Errorf("failed to marshal queries: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, query, title, markdown, persona, queries, word_count, char_count, result_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		report.ID,
		report.Query,
		report.Title,
		report.Markdown,
		report.Persona,
		queriesJSON,
		report.WordCount,
		report.CharCount,
		report.ResultCount,
		report.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrExists
		}
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

func scanReport(row pgx.Row) (*store.Report, error) {
	var r store.Report
	var queriesJSON []byte

	err := row.Scan(
		&r.ID,
		&r.Query,
		&r.Title,
		&r.Markdown,
		&r.Persona,
		&queriesJSON,
		&r.WordCount,
		&r.CharCount,
		&r.ResultCount,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(queriesJSON) > 0 {
		if err := json.Unmarshal(queriesJSON, &r.Queries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal queries: %w", err)
		}
	}
	return &r, nil
}

// Load retrieves a report by id
func (s *PostgresReportStore) Load(ctx context.Context, id string) (*store.Report, error) {
	query := fmt.Sprintf(`
		SELECT id, query, title, markdown, persona, queries, word_count, char_count, result_count, created_at
		FROM %s
		WHERE id = $1
	`, s.tableName)

	r, err := scanReport(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return r, nil
}

// List returns all reports, newest first
func (s *PostgresReportStore) List(ctx context.Context) ([]*store.Report, error) {
	query := fmt.Sprintf(`
		SELECT id, query, title, markdown, persona, queries, word_count, char_count, result_count, created_at
		FROM %s
		ORDER BY created_at DESC, id ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*store.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}

	return reports, nil
}

// Delete removes a report
func (s *PostgresReportStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

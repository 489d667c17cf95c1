// Package sqlite provides a SQLite-backed report store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/mahmoud-mohsen97/Chat-Agents/store"
)

// SqliteReportStore implements store.ReportStore using SQLite
type SqliteReportStore struct {
	db        *sql.DB
	tableName string
}

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path      string
	TableName string // Default "reports"
}

// NewSqliteReportStore opens the database and creates the table
func NewSqliteReportStore(opts SqliteOptions) (*SqliteReportStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "reports"
	}

	s := &SqliteReportStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *SqliteReportStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			title TEXT NOT NULL,
			markdown TEXT NOT NULL,
			persona TEXT NOT NULL,
			queries TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			char_count INTEGER NOT NULL,
			result_count INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s (created_at);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteReportStore) Close() error {
	return s.db.Close()
}

// Save inserts a report. The primary key makes it write-once.
func (s *SqliteReportStore) Save(ctx context.Context, report *store.Report) error {
	queriesJSON, err := json.Marshal(report.Queries)
	if err != nil {
		return fmt.Errorf("failed to marshal queries: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, query, title, markdown, persona, queries, word_count, char_count, result_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		report.ID,
		report.Query,
		report.Title,
		report.Markdown,
		report.Persona,
		string(queriesJSON),
		report.WordCount,
		report.CharCount,
		report.ResultCount,
		report.CreatedAt.UnixNano(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return store.ErrExists
		}
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

const selectColumns = "id, query, title, markdown, persona, queries, word_count, char_count, result_count, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*store.Report, error) {
	var r store.Report
	var queriesJSON string
	var createdAt int64

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
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(queriesJSON), &r.Queries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queries: %w", err)
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

// Load retrieves a report by id
func (s *SqliteReportStore) Load(ctx context.Context, id string) (*store.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns, s.tableName)

	r, err := scanReport(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return r, nil
}

// List returns all reports, newest first
func (s *SqliteReportStore) List(ctx context.Context) ([]*store.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id ASC", selectColumns, s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
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
func (s *SqliteReportStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

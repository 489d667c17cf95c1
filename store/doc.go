// Package store defines how research reports are persisted.
//
// A report is written once and never updated: Save fails with ErrExists when
// the id is already taken, and Load and Delete fail with ErrNotFound for an
// unknown id. List always returns reports newest first.
//
// # Available Implementations
//
//   - store/memory: process-local map, the default for tests
//   - store/file: one JSON file per report in a directory
//   - store/redis: Redis keys plus a sorted-set index
//   - store/sqlite: a single SQLite table
//   - store/postgres: a PostgreSQL table through a pgx pool
//
// Example:
//
//	import "github.com/mahmoud-mohsen97/Chat-Agents/store/sqlite"
//
//	reports, err := sqlite.NewSqliteReportStore(sqlite.SqliteOptions{
//	    Path: "./reports.db",
//	})
//	if err != nil {
//	    return err
//	}
//	defer reports.Close()
//
// The sqlite and postgres stores create their table with InitSchema; the
// sqlite store does so when it is opened.
package store

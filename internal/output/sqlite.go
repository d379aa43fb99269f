// internal/output/sqlite.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/leadgrep/leadgrep/internal/pipeline"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	finished_at   TEXT NOT NULL,
	elapsed_ms    INTEGER NOT NULL,
	total_urls    INTEGER NOT NULL,
	successful    INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	total_emails  INTEGER NOT NULL,
	unique_emails INTEGER NOT NULL,
	success_rate  REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	url         TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	source_type TEXT NOT NULL,
	status      TEXT NOT NULL,
	method      TEXT NOT NULL,
	platform    TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	fetched_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_email ON results(email);
`

// Store persists batch runs to a local SQLite database. Each run gets one
// row in runs and one row in results per output row.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the SQLite database at path.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun inserts the summary and all of its result rows in one transaction,
// returning the new run's id.
func (s *Store) SaveRun(ctx context.Context, summary *pipeline.Summary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (finished_at, elapsed_ms, total_urls, successful, failed, total_emails, unique_emails, success_rate)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.FinishedAt.UTC().Format("2006-01-02T15:04:05Z"),
		summary.Elapsed.Milliseconds(),
		summary.TotalURLs,
		summary.SuccessfulURLs,
		summary.FailedURLs,
		summary.TotalEmails,
		summary.UniqueEmails,
		summary.SuccessRate,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, url, email, source_type, status, method, platform, error, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range summary.Records {
		emails := rec.Emails
		if len(emails) == 0 {
			emails = []string{""}
		}
		for _, email := range emails {
			if _, err := stmt.ExecContext(ctx,
				runID, rec.URL, email, string(rec.SourceType), string(rec.Status),
				string(rec.Method), rec.Platform, rec.Error,
				rec.FetchedAt.UTC().Format("2006-01-02T15:04:05Z"),
			); err != nil {
				return 0, fmt.Errorf("failed to insert result: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return runID, nil
}

// RunCount reports how many runs the store holds.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

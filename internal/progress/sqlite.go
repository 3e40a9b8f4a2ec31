// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// SQLiteStore persists events in an append-only job_events table so that
// the status of a run survives the process.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the progress database at path and its schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating progress directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Workers publish concurrently; one connection serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS job_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			source TEXT,
			status TEXT NOT NULL,
			output TEXT,
			error TEXT,
			time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_job_events_run ON job_events(run_id, job_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Publish implements Store.
func (s *SQLiteStore) Publish(ctx context.Context, runID string, ev types.JobEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_events (run_id, job_id, source, status, output, error, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, ev.JobID, ev.Source, string(ev.Status), ev.Output, ev.Error,
		ev.Time.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording event for %s: %w", ev.JobID, err)
	}
	return nil
}

// Snapshot implements Store.
func (s *SQLiteStore) Snapshot(ctx context.Context, runID string) ([]types.JobEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.job_id, e.source, e.status, e.output, e.error, e.time
		FROM job_events e
		JOIN (
			SELECT job_id, MIN(id) AS first_id, MAX(id) AS last_id
			FROM job_events WHERE run_id = ? GROUP BY job_id
		) m ON e.id = m.last_id
		ORDER BY m.first_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying job events: %w", err)
	}
	defer rows.Close()

	out := []types.JobEvent{}
	for rows.Next() {
		var (
			ev                    types.JobEvent
			status, ts            string
			source, output, errSt sql.NullString
		)
		if err := rows.Scan(&ev.JobID, &source, &status, &output, &errSt, &ts); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ev.Source = source.String
		ev.Status = types.JobStatus(status)
		ev.Output = output.String
		ev.Error = errSt.String
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.Time = t
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LatestRun implements Store.
func (s *SQLiteStore) LatestRun(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM job_events ORDER BY id DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return runID, nil
}

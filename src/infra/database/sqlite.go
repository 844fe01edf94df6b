package database

import (
	"context"
	"database/sql"
	"time"

	"discmerge/src/features/history"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory is a SQLite implementation of the history.Store interface.
type SqliteHistory struct {
	db *sql.DB
}

// NewSqliteHistory creates a new SqliteHistory.
func NewSqliteHistory(path string) (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteHistory{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS merge_results (
			id TEXT PRIMARY KEY,
			job_id TEXT,
			unit_name TEXT NOT NULL,
			directory TEXT NOT NULL,
			cue_file TEXT NOT NULL,
			tracks INTEGER NOT NULL,
			state TEXT NOT NULL,
			reason TEXT,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_merge_results_created_at
			ON merge_results(created_at);
	`)
	return err
}

// Add inserts one unit outcome.
func (s *SqliteHistory) Add(ctx context.Context, entry history.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merge_results
			(id, job_id, unit_name, directory, cue_file, tracks, state, reason, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.JobID, entry.UnitName, entry.Directory, entry.CueFile,
		entry.Tracks, entry.State, entry.Reason, entry.Duration.Milliseconds(),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// List returns the most recent entries, newest first.
func (s *SqliteHistory) List(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, unit_name, directory, cue_file, tracks, state, reason, duration_ms, created_at
		FROM merge_results
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var entry history.Entry
		var durationMs int64
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.JobID, &entry.UnitName, &entry.Directory,
			&entry.CueFile, &entry.Tracks, &entry.State, &entry.Reason, &durationMs, &createdAt); err != nil {
			return nil, err
		}
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = t
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Summarize aggregates recorded outcomes by terminal state.
func (s *SqliteHistory) Summarize(ctx context.Context) (history.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM merge_results GROUP BY state`)
	if err != nil {
		return history.Summary{}, err
	}
	defer rows.Close()

	var summary history.Summary
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return history.Summary{}, err
		}
		summary.Total += count
		switch state {
		case "committed":
			summary.Committed = count
		case "rolled_back":
			summary.RolledBack = count
		case "skipped_conflict":
			summary.Skipped = count
		}
	}
	return summary, rows.Err()
}

// Clear deletes all recorded outcomes.
func (s *SqliteHistory) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM merge_results`)
	return err
}

// Close closes the underlying database handle.
func (s *SqliteHistory) Close() error {
	return s.db.Close()
}

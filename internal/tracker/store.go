package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one finished game.
type Run struct {
	ID         uuid.UUID
	Elapsed    time.Duration
	Points     int
	FinishedAt time.Time
}

// Store persists finished runs.
type Store interface {
	SaveTime(ctx context.Context, r Run) error
	BestTimes(ctx context.Context, limit int) ([]Run, error)
}

// SQLiteStore keeps runs in a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("tracker: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			elapsed_ms INTEGER NOT NULL,
			points INTEGER NOT NULL,
			finished_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_elapsed ON runs(elapsed_ms);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("tracker: init: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// SaveTime inserts r.
func (s *SQLiteStore) SaveTime(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, elapsed_ms, points, finished_at) VALUES (?, ?, ?, ?)`,
		r.ID.String(), r.Elapsed.Milliseconds(), r.Points, r.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("tracker: save run: %w", err)
	}
	return nil
}

// BestTimes returns up to limit runs, fastest first.
func (s *SQLiteStore) BestTimes(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, elapsed_ms, points, finished_at FROM runs ORDER BY elapsed_ms ASC, finished_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("tracker: best times: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			id, finished string
			ms           int64
			r            Run
		)
		if err := rows.Scan(&id, &ms, &r.Points, &finished); err != nil {
			return nil, fmt.Errorf("tracker: best times: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("tracker: bad run id %q: %w", id, err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("tracker: bad finish time %q: %w", finished, err)
		}
		r.Elapsed = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

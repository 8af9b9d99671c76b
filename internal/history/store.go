package history

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

// Record is one run of a command job, real or dry.
type Record struct {
	ID          string
	Label       string
	Command     string
	ExitCode    int
	DryRun      bool
	Fingerprint string
	StartedAt   time.Time
	Duration    time.Duration
}

// Store persists run records in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the history database at path and
// ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(pctx, `CREATE TABLE IF NOT EXISTS run_log (
  id          TEXT PRIMARY KEY,
  label       TEXT NOT NULL,
  command     TEXT NOT NULL,
  exit_code   INTEGER NOT NULL,
  dry_run     INTEGER NOT NULL DEFAULT 0,
  fingerprint TEXT,
  started_at  TEXT NOT NULL,
  duration_ms INTEGER NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create run_log table: %w", err)
	}
	if _, err := db.ExecContext(pctx,
		`CREATE INDEX IF NOT EXISTS idx_run_log_started ON run_log(started_at);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create run_log index: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one record. A missing ID is filled in.
func (s *Store) Append(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	dry := 0
	if rec.DryRun {
		dry = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_log (id, label, command, exit_code, dry_run, fingerprint, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Label, rec.Command, rec.ExitCode, dry, rec.Fingerprint,
		rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.Duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("insert run record: %w", err)
	}
	return rec.ID, nil
}

// Recent returns the newest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, command, exit_code, dry_run, fingerprint, started_at, duration_ms
		 FROM run_log ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			dry        int
			started    string
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.Command, &rec.ExitCode,
			&dry, &rec.Fingerprint, &started, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.DryRun = dry != 0
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			rec.StartedAt = ts
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DefaultPath places the history database next to the resolved config
// document, under a .crun directory.
func DefaultPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ".crun", "history.db")
}

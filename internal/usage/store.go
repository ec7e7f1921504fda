// Package usage persists launch history and per-item launch-mode
// preferences in SQLite. Records are created on first launch and updated
// on every subsequent one; they are never deleted, so a renamed or
// removed item simply orphans its row.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Mode is how an item was (or should be) launched.
type Mode string

const (
	// ModeDirect executes the app's command directly.
	ModeDirect Mode = "direct"
	// ModeTerminal wraps the command in a terminal emulator.
	ModeTerminal Mode = "terminal"
)

// Valid reports whether m is a known launch mode.
func (m Mode) Valid() bool {
	return m == ModeDirect || m == ModeTerminal
}

// Record is the durable usage state for one launchable item. Key is
// AppRef.ID for applications and the absolute path for files.
type Record struct {
	Key            string
	LaunchCount    int
	LastLaunchMode Mode // empty when never set
	LastUsedAt     int64
}

// nowFn is a test seam for timestamps.
var nowFn = func() int64 { return time.Now().Unix() }

// Store is the SQLite-backed usage store. Every write commits in its own
// transaction, so a crash loses at most the in-flight update.
type Store struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Open opens (or creates) the usage database at dbPath.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles concurrency better with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close checkpoints the WAL into the main database file and closes the
// connection. Safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}

// Get returns the record for key, or nil when the item has never been
// launched.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, launch_count, last_launch_mode, last_used_at
		FROM usage_records WHERE key = ?
	`, key)

	var rec Record
	var mode sql.NullString
	if err := row.Scan(&rec.Key, &rec.LaunchCount, &mode, &rec.LastUsedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read usage record: %w", err)
	}
	if mode.Valid {
		rec.LastLaunchMode = Mode(mode.String)
	}
	return &rec, nil
}

// All returns every record keyed by item identity, for batch ranking.
func (s *Store) All(ctx context.Context) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, launch_count, last_launch_mode, last_used_at
		FROM usage_records
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]Record)
	for rows.Next() {
		var rec Record
		var mode sql.NullString
		if err := rows.Scan(&rec.Key, &rec.LaunchCount, &mode, &rec.LastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		if mode.Valid {
			rec.LastLaunchMode = Mode(mode.String)
		}
		records[rec.Key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage records: %w", err)
	}
	return records, nil
}

// RecordLaunch creates or updates the record for key: increments the
// launch count, remembers the mode, and refreshes the timestamp. It also
// appends an immutable row to the launch_events audit log.
func (s *Store) RecordLaunch(ctx context.Context, key string, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid launch mode %q", mode)
	}
	now := nowFn()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO usage_records (key, launch_count, last_launch_mode, last_used_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			launch_count = launch_count + 1,
			last_launch_mode = excluded.last_launch_mode,
			last_used_at = excluded.last_used_at
	`, key, string(mode), now)
	if err != nil {
		return fmt.Errorf("failed to record launch: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO launch_events (event_id, key, mode, launched_at)
		VALUES (?, ?, ?, ?)
	`, uuid.NewString(), key, string(mode), now)
	if err != nil {
		return fmt.Errorf("failed to record launch event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit launch record: %w", err)
	}
	return nil
}

// SetPreferredMode overrides the remembered launch mode for key without
// counting a launch.
func (s *Store) SetPreferredMode(ctx context.Context, key string, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("invalid launch mode %q", mode)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (key, launch_count, last_launch_mode, last_used_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			last_launch_mode = excluded.last_launch_mode
	`, key, string(mode), nowFn())
	if err != nil {
		return fmt.Errorf("failed to set preferred mode: %w", err)
	}
	return nil
}

// EventCount returns the number of recorded launch events, for the stats
// command.
func (s *Store) EventCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launch_events`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count launch events: %w", err)
	}
	return n, nil
}

// migrate brings the schema up to date, tracking versions in schema_meta.
func (s *Store) migrate(ctx context.Context) error {
	currentVersion := 0
	row := s.db.QueryRowContext(ctx, `
		SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1
	`)
	if err := row.Scan(&currentVersion); err != nil {
		if err == sql.ErrNoRows || isTableNotFoundError(err) {
			currentVersion = 0
		} else {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms)
			VALUES (?, ?)
		`, m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// isTableNotFoundError checks if the error indicates a missing table.
func isTableNotFoundError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

const migrationV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

-- One row per launchable item ever launched
CREATE TABLE IF NOT EXISTS usage_records (
  key TEXT PRIMARY KEY,
  launch_count INTEGER NOT NULL DEFAULT 0,
  last_launch_mode TEXT,
  last_used_at INTEGER NOT NULL DEFAULT 0
);

-- Append-only launch audit log
CREATE TABLE IF NOT EXISTS launch_events (
  event_id TEXT PRIMARY KEY,
  key TEXT NOT NULL,
  mode TEXT NOT NULL,
  launched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_launch_events_key ON launch_events(key, launched_at DESC);
`

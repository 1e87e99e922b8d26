// Package store is the local cache repository: an embedded SQLite
// database holding issues, work logs, timers, and the authenticated
// user. The connection pool is capped at one connection, so statements
// from concurrent callers serialize here, and the cross-restart
// invariants (foreign keys, the single-active-timer rule) are enforced
// by the database itself rather than by application-level checks.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store wraps the SQLite connection to the local work-log cache.
type Store struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the cache database at path. Pass ":memory:"
// for an ephemeral database, used by tests. A nil logger falls back to
// the process default.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// One connection: repository operations serialize here, and an
	// in-memory database keeps its contents across statements.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database at %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	return &Store{conn: conn, path: path, logger: logger}, nil
}

// schema creates all tables and indexes. Statements are idempotent so
// InitSchema can run on every startup.
//
// The partial unique index on timer is the single-active-timer
// invariant: every row with an unset end maps to the same index key, so
// the database itself rejects a second active timer, atomically, no
// matter how many callers race.
const schema = `
CREATE TABLE IF NOT EXISTS issue (
    key     TEXT PRIMARY KEY,
    id      TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS worklog (
    id                 TEXT PRIMARY KEY,
    issue_key          TEXT NOT NULL REFERENCES issue(key),
    issue_id           TEXT NOT NULL DEFAULT '',
    author             TEXT NOT NULL DEFAULT '',
    created            TEXT,
    updated            TEXT,
    started            TEXT NOT NULL,
    time_spent         TEXT NOT NULL DEFAULT '',
    time_spent_seconds INTEGER NOT NULL DEFAULT 0,
    comment            TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_worklog_issue_key ON worklog(issue_key);
CREATE INDEX IF NOT EXISTS idx_worklog_started ON worklog(started);

CREATE TABLE IF NOT EXISTS component (
    id   TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issue_component (
    issue_key    TEXT NOT NULL REFERENCES issue(key),
    component_id TEXT NOT NULL REFERENCES component(id),
    UNIQUE(issue_key, component_id)
);

CREATE TABLE IF NOT EXISTS timer (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_key TEXT NOT NULL,
    created   TEXT NOT NULL,
    started   TEXT NOT NULL,
    "end"     TEXT,
    synced    INTEGER NOT NULL DEFAULT 0,
    comment   TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_single_active_timer
    ON timer (("end" IS NULL)) WHERE "end" IS NULL;

CREATE TABLE IF NOT EXISTS user (
    account_id   TEXT PRIMARY KEY,
    email        TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    timezone     TEXT NOT NULL DEFAULT ''
);
`

// InitSchema creates the schema if it does not exist yet.
func (s *Store) InitSchema() error {
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection. Safe to call more than once.
func (s *Store) Close() error {
	return s.conn.Close()
}

// storeTimeLayout is the fixed-width UTC timestamp format used in every
// table, chosen so lexicographic string comparison matches time order.
const storeTimeLayout = "2006-01-02 15:04:05.000"

func timeToString(t time.Time) string {
	return t.UTC().Format(storeTimeLayout)
}

func timeToNullString(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: timeToString(*t), Valid: true}
}

func stringToTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(storeTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t.Local(), nil
}

func nullStringToTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := stringToTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

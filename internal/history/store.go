// Package history persists run outcomes to a local SQLite database.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run kinds.
const (
	KindSetup    = "setup"
	KindPlay     = "play"
	KindPlaybook = "playbook"
)

// Run is one recorded run.
type Run struct {
	ID        string
	Kind      string
	Target    string
	Success   bool
	Events    int
	Duration  time.Duration
	Error     string
	CreatedAt time.Time
}

// Store manages the SQLite run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens or creates the history database at dbPath. A dbPath of
// ":memory:" skips directory creation.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set busy_timeout FIRST so subsequent operations wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on
// lock errors.
func execWithRetry(db *sql.DB, sqlText string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(sqlText)
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		delay := baseDelay * time.Duration(1<<attempt)
		time.Sleep(delay)
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts one run row. A non-nil runErr is stored as its message.
func (s *Store) RecordRun(kind, target string, success bool, events int, duration time.Duration, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}

	query := `INSERT INTO runs (id, kind, target, success, events, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		uuid.New().String(),
		kind,
		target,
		success,
		events,
		duration.Milliseconds(),
		errText,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the newest runs, up to limit.
func (s *Store) Recent(limit int) ([]Run, error) {
	query := `SELECT id, kind, target, success, events, duration_ms, error, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`
	return s.queryRuns(query, limit)
}

// ByKind returns the newest runs of one kind, up to limit.
func (s *Store) ByKind(kind string, limit int) ([]Run, error) {
	query := `SELECT id, kind, target, success, events, duration_ms, error, created_at
		FROM runs WHERE kind = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`
	return s.queryRuns(query, kind, limit)
}

// Prune deletes runs older than the given age and returns how many rows
// were removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return n, nil
}

func (s *Store) queryRuns(query string, args ...interface{}) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Kind, &r.Target, &r.Success, &r.Events, &durationMS, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

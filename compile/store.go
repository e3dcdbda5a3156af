package compile

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ---------------------------------------------------------------------------
// Durable compile log
// ---------------------------------------------------------------------------

// CompileStatus is the outcome of one compilation attempt.
type CompileStatus string

const (
	StatusOK      CompileStatus = "ok"
	StatusBailout CompileStatus = "bailout"
)

// CompileRecord is one row of the compile log.
type CompileRecord struct {
	Method    string
	Status    CompileStatus
	Message   string // bailout message, empty on success
	NodeCount int
	Duration  time.Duration
	When      time.Time
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS compilations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	method      TEXT NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	node_count  INTEGER NOT NULL DEFAULT 0,
	duration_ns INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_compilations_method ON compilations(method);
`

// Store is the SQLite-backed compile log. Long-running embedders use it to
// answer "what compiled, what bailed out, and how long did it take" after
// the fact.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens the compile log at the given path. WAL mode
// keeps readers cheap while the driver writes; SQLite allows one writer, so
// the pool is capped at a single connection.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("compile: open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("compile: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("compile: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordCompile appends one compilation attempt to the log.
func (s *Store) RecordCompile(rec CompileRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO compilations (method, status, message, node_count, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Method, string(rec.Status), rec.Message, rec.NodeCount,
		rec.Duration.Nanoseconds(), rec.When.Unix(),
	)
	if err != nil {
		return fmt.Errorf("compile: record: %w", err)
	}
	return nil
}

// Recent returns the most recent compilation records, newest first.
func (s *Store) Recent(limit int) ([]CompileRecord, error) {
	rows, err := s.db.Query(
		`SELECT method, status, message, node_count, duration_ns, created_at
		 FROM compilations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("compile: query: %w", err)
	}
	defer rows.Close()

	var out []CompileRecord
	for rows.Next() {
		var rec CompileRecord
		var status string
		var durationNS, createdAt int64
		if err := rows.Scan(&rec.Method, &status, &rec.Message, &rec.NodeCount, &durationNS, &createdAt); err != nil {
			return nil, fmt.Errorf("compile: scan: %w", err)
		}
		rec.Status = CompileStatus(status)
		rec.Duration = time.Duration(durationNS)
		rec.When = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Bailouts returns the recorded bailout rows for a method, newest first.
func (s *Store) Bailouts(method string) ([]CompileRecord, error) {
	rows, err := s.db.Query(
		`SELECT method, status, message, node_count, duration_ns, created_at
		 FROM compilations WHERE method = ? AND status = ? ORDER BY id DESC`,
		method, string(StatusBailout))
	if err != nil {
		return nil, fmt.Errorf("compile: query: %w", err)
	}
	defer rows.Close()

	var out []CompileRecord
	for rows.Next() {
		var rec CompileRecord
		var status string
		var durationNS, createdAt int64
		if err := rows.Scan(&rec.Method, &status, &rec.Message, &rec.NodeCount, &durationNS, &createdAt); err != nil {
			return nil, fmt.Errorf("compile: scan: %w", err)
		}
		rec.Status = CompileStatus(status)
		rec.Duration = time.Duration(durationNS)
		rec.When = time.Unix(createdAt, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

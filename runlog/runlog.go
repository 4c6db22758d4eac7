// Package runlog journals dashboard edit runs to SQLite.
//
// One row per run: operation, JSON parameters, JSON result, status, error
// message and duration. A failed run keeps its partial result, since the
// dashboard is not rolled back. A nil *Journal is valid and records nothing.
//
// Usage:
//
//	import _ "modernc.org/sqlite"
//	j, err := runlog.Open("dashclone.db")
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Schema is the DDL of the runs table.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id      TEXT PRIMARY KEY,
    started_at  INTEGER NOT NULL,
    operation   TEXT NOT NULL,
    parameters  TEXT NOT NULL DEFAULT '{}',
    result      TEXT,
    status      TEXT NOT NULL,
    error       TEXT,
    duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_operation ON runs(operation, started_at DESC);
`

// Run statuses.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusTimeout   = "timeout"
	StatusCancelled = "cancelled"
)

// Entry is one journaled run.
type Entry struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Operation  string    `json:"operation"`
	Parameters string    `json:"parameters"`
	Result     string    `json:"result,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Journal writes and reads run entries.
type Journal struct {
	db     *sql.DB
	newID  func() string
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator sets the run ID generator. Default: "run_" + UUIDv7.
func WithIDGenerator(gen func() string) Option {
	return func(j *Journal) { j.newID = gen }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// Open opens (or creates) the journal database at path and applies the
// schema. The caller must blank-import modernc.org/sqlite.
func Open(path string, opts ...Option) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("runlog: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("runlog: %s: %w", p, err)
		}
	}
	j, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// New wraps an open database and applies the schema.
func New(db *sql.DB, opts ...Option) (*Journal, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("runlog: apply schema: %w", err)
	}
	j := &Journal{
		db:     db,
		newID:  func() string { return "run_" + uuid.Must(uuid.NewV7()).String() },
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(j)
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

// Track runs fn and records it under operation. The result and error of
// fn are returned unchanged. Journal write failures are logged, never
// returned: a broken journal must not fail an edit.
func (j *Journal) Track(ctx context.Context, operation string, params any, fn func(context.Context) (any, error)) (any, error) {
	start := time.Now()
	result, err := fn(ctx)
	if j == nil {
		return result, err
	}

	e := &Entry{
		RunID:      j.newID(),
		StartedAt:  start,
		Operation:  operation,
		Parameters: "{}",
		Status:     statusOf(err),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if params != nil {
		if b, merr := json.Marshal(params); merr == nil {
			e.Parameters = string(b)
		}
	}
	if result != nil {
		if b, merr := json.Marshal(result); merr == nil && string(b) != "null" {
			e.Result = string(b)
		}
	}
	if err != nil {
		e.Error = err.Error()
	}

	// Record even when ctx was cancelled mid-run.
	if werr := j.insert(context.WithoutCancel(ctx), e); werr != nil {
		j.logger.Error("runlog: record run failed", "operation", operation, "error", werr)
	} else {
		j.logger.Debug("runlog: recorded run", "run_id", e.RunID, "operation", operation, "status", e.Status)
	}
	return result, err
}

// Recent returns the latest runs, newest first. An empty operation
// matches every operation. limit <= 0 means 20.
func (j *Journal) Recent(ctx context.Context, operation string, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT run_id, started_at, operation, parameters, result, status, error, duration_ms
		FROM runs`
	var args []any
	if operation != "" {
		q += " WHERE operation = ?"
		args = append(args, operation)
	}
	q += " ORDER BY started_at DESC, run_id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("runlog: query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var startedMs int64
		var result, errMsg sql.NullString
		if err := rows.Scan(&e.RunID, &startedMs, &e.Operation, &e.Parameters,
			&result, &e.Status, &errMsg, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("runlog: scan run: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMs)
		e.Result = result.String
		e.Error = errMsg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) insert(ctx context.Context, e *Entry) error {
	var result, errMsg sql.NullString
	if e.Result != "" {
		result = sql.NullString{String: e.Result, Valid: true}
	}
	if e.Error != "" {
		errMsg = sql.NullString{String: e.Error, Valid: true}
	}
	_, err := j.db.ExecContext(ctx, `INSERT INTO runs
		(run_id, started_at, operation, parameters, result, status, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		e.RunID, e.StartedAt.UnixMilli(), e.Operation, e.Parameters,
		result, e.Status, errMsg, e.DurationMs)
	return err
}

type timeoutError interface{ Timeout() bool }

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	}
	var te timeoutError
	if errors.As(err, &te) && te.Timeout() {
		return StatusTimeout
	}
	return StatusError
}

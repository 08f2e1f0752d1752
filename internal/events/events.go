// Package events records the history of export, import and backfill runs.
package events

import (
	"context"
	"database/sql"
	"fmt"
)

// Kind of a recorded run.
type Kind string

const (
	KindExport   Kind = "export"
	KindImport   Kind = "import"
	KindBackfill Kind = "backfill"
)

// Run is one row of the migration_runs table.
type Run struct {
	ID        int64  `json:"id" yaml:"id"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Kind      Kind   `json:"kind" yaml:"kind"`
	Success   bool   `json:"success" yaml:"success"`
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	Records   int    `json:"records" yaml:"records"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Writer handles writing runs to the history table
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new run writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogRun records a run and returns its id.
func (w *Writer) LogRun(ctx context.Context, run Run) (int64, error) {
	res, err := w.db.ExecContext(ctx, `
		INSERT INTO migration_runs (kind, success, file, records, message)
		VALUES (?, ?, ?, ?, ?)
	`, string(run.Kind), run.Success, nullable(run.File), run.Records, nullable(run.Message))
	if err != nil {
		return 0, fmt.Errorf("failed to write run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A kind of "" lists
// every kind; limit <= 0 means no limit.
func (w *Writer) ListRuns(ctx context.Context, kind Kind, limit int) ([]Run, error) {
	query := `SELECT id, timestamp, kind, success, COALESCE(file, ''), records, COALESCE(message, '')
		FROM migration_runs`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var kind string
		if err := rows.Scan(&r.ID, &r.Timestamp, &kind, &r.Success, &r.File, &r.Records, &r.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Kind = Kind(kind)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

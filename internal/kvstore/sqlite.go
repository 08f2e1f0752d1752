package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lherron/habitus/internal/db"
)

// SQLite implements Store on the kv_entries table.
type SQLite struct {
	db *db.DB
}

var (
	_ Store   = (*SQLite)(nil)
	_ Batcher = (*SQLite)(nil)
)

// NewSQLite creates a store over a migrated database.
func NewSQLite(database *db.DB) *SQLite {
	return &SQLite{db: database}
}

const upsertEntry = `
	INSERT INTO kv_entries (key, value, updated_at)
	VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
`

// Get retrieves a value by key.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores a value by key.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertEntry, key, value); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Remove deletes a key.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}

// Apply executes all writes in one transaction.
func (s *SQLite) Apply(ctx context.Context, writes []Write) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.PrepareContext(ctx, upsertEntry)
	if err != nil {
		return err
	}
	defer upsert.Close()

	for _, w := range writes {
		if w.Remove {
			if _, err := tx.ExecContext(ctx, "DELETE FROM kv_entries WHERE key = ?", w.Key); err != nil {
				return &WriteError{Key: w.Key, Err: err}
			}
			continue
		}
		if _, err := upsert.ExecContext(ctx, w.Key, w.Value); err != nil {
			return &WriteError{Key: w.Key, Err: err}
		}
	}

	return tx.Commit()
}

// Keys returns all stored keys in sorted order.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv_entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

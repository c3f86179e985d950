package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SnapshotNamespace keeps snapshots apart from user-facing settings.
const SnapshotNamespace = "snapshots"

var ErrInvalidValue = errors.New("storage: value is not valid JSON")

// KV is a namespaced key-value store.
type KV interface {
	// Get returns the stored values for keys. Missing keys are absent from
	// the result. With no keys, every item in the namespace is returned.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)
	// Set writes all items at once.
	Set(ctx context.Context, items map[string][]byte) error
	// Remove deletes keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
}

// SQLiteKV implements KV on the kv table of a database opened with Open.
type SQLiteKV struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteKV creates a KV scoped to namespace.
func NewSQLiteKV(db *sql.DB, namespace string) *SQLiteKV {
	return &SQLiteKV{db: db, namespace: namespace}
}

// Get implements KV.
func (s *SQLiteKV) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	items := make(map[string][]byte)

	if len(keys) == 0 {
		rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE namespace = ?`, s.namespace)
		if err != nil {
			return nil, fmt.Errorf("query kv: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			var value []byte
			if err := rows.Scan(&key, &value); err != nil {
				return nil, err
			}
			items[key] = value
		}
		return items, rows.Err()
	}

	for _, key := range keys {
		var value []byte
		err := s.db.QueryRowContext(ctx,
			`SELECT value FROM kv WHERE namespace = ? AND key = ?`, s.namespace, key,
		).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		items[key] = value
	}
	return items, nil
}

// Set implements KV. All items are written in one transaction.
func (s *SQLiteKV) Set(ctx context.Context, items map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range items {
		if _, err := stmt.ExecContext(ctx, s.namespace, key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Remove implements KV.
func (s *SQLiteKV) Remove(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ? AND key = ?`, s.namespace, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}

	return tx.Commit()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS ragserve_kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// EnsureKV creates the key-value table used by the embedding cache.
// Safe to call more than once.
func (s *Store) EnsureKV(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, kvSchema); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// GetCached reads a cached value. The second return value reports whether
// the key was present.
func (s *Store) GetCached(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM ragserve_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get kv %q: %w", key, err)
	}
	return value, true, nil
}

// PutCached upserts a cached value.
func (s *Store) PutCached(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO ragserve_kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("put kv %q: %w", key, err)
	}
	return nil
}

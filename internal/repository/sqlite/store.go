// Package sqlite implements the row source over a SQLite file database,
// plus a small key-value table reused by the embedding cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	// Register the sqlite3 driver for database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/alrashid-cloud/ragserve/internal/domain"
)

// Store wraps a SQLite database handle.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database at path. The file must already exist:
// this service only reads prepared source tables and never creates the
// database itself.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: database path is empty", domain.ErrInvalidInput)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: database file %s", domain.ErrNotFound, path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite database: %w", err)
	}
	return nil
}

// Ping verifies database availability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite database: %w", err)
	}
	return nil
}

// Ingest executes a read-only query and materializes all result rows into
// a Table, preserving result order. Non-text values are stored in their
// string form; NULL becomes the empty string.
func (s *Store) Ingest(ctx context.Context, query string) (domain.Table, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Table{}, fmt.Errorf("%w: source query is empty", domain.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read columns: %v", domain.ErrQuery, err)
	}

	table := domain.Table{Columns: columns}
	values := make([]sql.NullString, len(columns))
	dests := make([]any, len(columns))
	for i := range values {
		dests[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dests...); err != nil {
			return domain.Table{}, fmt.Errorf("%w: scan row: %v", domain.ErrQuery, err)
		}
		row := make(domain.Row, len(columns))
		for i, c := range columns {
			row[c] = values[i].String
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrQuery, err)
	}

	return table, nil
}

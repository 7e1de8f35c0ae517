package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alrashid-cloud/ragserve/internal/domain"
)

// newTestStore creates a throwaway database with the two source tables
// the service reads in production.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "restaurant.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	seed := []string{
		`CREATE TABLE faqs (question TEXT, answer TEXT)`,
		`INSERT INTO faqs VALUES
			('What are your opening hours?', '10:00 to 23:00 daily'),
			('Do you deliver?', 'Within the city only'),
			('Do you deliver?', 'Within the city only')`,
		`CREATE TABLE menu_items (name TEXT, description TEXT, ingredients TEXT, allergens TEXT, price REAL)`,
		`INSERT INTO menu_items VALUES
			('Kabsa', 'Spiced rice with chicken', 'rice, chicken, spices', 'none', 38.5)`,
	}
	for _, stmt := range seed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed fixture db: %v", err)
		}
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngest_MaterializesRowsInOrder(t *testing.T) {
	store := newTestStore(t)

	table, err := store.Ingest(context.Background(), "SELECT question, answer FROM faqs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "question" {
		t.Errorf("unexpected columns: %v", table.Columns)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}
	if table.Rows[0]["question"] != "What are your opening hours?" {
		t.Errorf("row order not preserved: %v", table.Rows[0])
	}
}

func TestIngest_NonTextColumnsAsStrings(t *testing.T) {
	store := newTestStore(t)

	table, err := store.Ingest(context.Background(), "SELECT name, price FROM menu_items")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0]["price"] != "38.5" {
		t.Errorf("expected price as string, got %q", table.Rows[0]["price"])
	}
}

func TestIngest_MalformedQuery(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Ingest(context.Background(), "SELECT FROM nowhere")
	if !errors.Is(err, domain.ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
}

func TestIngest_EmptyQuery(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Ingest(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestKV_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureKV(ctx); err != nil {
		t.Fatalf("ensure kv: %v", err)
	}

	if _, ok, err := store.GetCached(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := store.PutCached(ctx, "k", []byte{1, 2, 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.GetCached(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("unexpected value: %v", got)
	}

	// Upsert overwrites.
	if err := store.PutCached(ctx, "k", []byte{9}); err != nil {
		t.Fatalf("put overwrite: %v", err)
	}
	got, _, _ = store.GetCached(ctx, "k")
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("expected overwritten value, got %v", got)
	}
}

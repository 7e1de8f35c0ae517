package pipeline

import (
	"context"

	"github.com/alrashid-cloud/ragserve/internal/domain"
	"github.com/alrashid-cloud/ragserve/internal/index"
)

// RowSource materializes the rows of a source query.
type RowSource interface {
	Ingest(ctx context.Context, query string) (domain.Table, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// SourceConfig describes one tabular source: the query that produces it
// and the columns whose space-joined values become the embedding input.
type SourceConfig struct {
	Name           string
	Query          string
	CombineColumns []string
}

// Corpus is one immutable (table, index) pair. Index is nil when the
// source produced no rows; retrieval then returns an empty list for it.
type Corpus struct {
	Table domain.Table
	Index *index.Flat
}

package retrieval

import (
	"context"

	"github.com/alrashid-cloud/ragserve/internal/domain"
	"github.com/alrashid-cloud/ragserve/internal/index"
)

// Embedder vectorizes the query text. It must be the same embedding
// function (up to the query instruction prefix) that built the indices.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher answers k-nearest-neighbor queries over one corpus.
type Searcher interface {
	Search(query []float32, k int) ([]index.Match, error)
	Len() int
}

// Source pairs a searchable index with the table it was built from.
// Index may be nil for an empty table.
type Source struct {
	Table domain.Table
	Index Searcher
}

// Package pipeline builds the in-memory retrieval state at startup:
// ingest rows, de-duplicate, combine columns, embed in row order, and
// index. The result is immutable and shared by all request handlers.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alrashid-cloud/ragserve/internal/domain"
	"github.com/alrashid-cloud/ragserve/internal/index"
)

// Pipeline holds the two read-only corpora built once per process.
type Pipeline struct {
	FAQs      Corpus
	MenuItems Corpus
}

// Service runs the startup ingestion pipeline.
type Service struct {
	source RowSource
	embed  Embedder
	logger *zap.Logger
}

// New creates a pipeline service.
func New(source RowSource, embed Embedder, logger *zap.Logger) *Service {
	return &Service{source: source, embed: embed, logger: logger}
}

// Build ingests and indexes both sources. The sequence per source is
// strictly ingest -> de-duplicate -> combine -> embed -> index, so that
// row order is frozen before any embedding is produced.
func (s *Service) Build(ctx context.Context, faqs, menuItems SourceConfig) (*Pipeline, error) {
	faqCorpus, err := s.buildCorpus(ctx, faqs)
	if err != nil {
		return nil, fmt.Errorf("build %s corpus: %w", faqs.Name, err)
	}
	menuCorpus, err := s.buildCorpus(ctx, menuItems)
	if err != nil {
		return nil, fmt.Errorf("build %s corpus: %w", menuItems.Name, err)
	}
	return &Pipeline{FAQs: faqCorpus, MenuItems: menuCorpus}, nil
}

func (s *Service) buildCorpus(ctx context.Context, cfg SourceConfig) (Corpus, error) {
	start := time.Now()

	table, err := s.source.Ingest(ctx, cfg.Query)
	if err != nil {
		return Corpus{}, fmt.Errorf("ingest: %w", err)
	}
	ingested := table.Len()

	table = table.Deduplicate()
	table, err = table.Combine(cfg.CombineColumns)
	if err != nil {
		return Corpus{}, fmt.Errorf("combine columns: %w", err)
	}

	if table.Len() == 0 {
		s.logger.Warn("Source produced no rows", zap.String("source", cfg.Name))
		return Corpus{Table: table}, nil
	}

	matrix, err := s.embedTable(ctx, table, domain.CombinedColumn)
	if err != nil {
		return Corpus{}, fmt.Errorf("embed rows: %w", err)
	}

	idx, err := index.New(matrix)
	if err != nil {
		return Corpus{}, fmt.Errorf("%w: %v", domain.ErrIndexBuild, err)
	}

	s.logger.Info("Corpus built",
		zap.String("source", cfg.Name),
		zap.Int("rows_ingested", ingested),
		zap.Int("rows_indexed", table.Len()),
		zap.Int("dimensions", idx.Dim()),
		zap.Duration("duration", time.Since(start)),
	)
	return Corpus{Table: table, Index: idx}, nil
}

// embedTable vectorizes one text column row by row, producing a matrix
// whose row i corresponds exactly to table row i. This is the
// cross-reference invariant the retriever depends on.
func (s *Service) embedTable(ctx context.Context, table domain.Table, column string) ([][]float32, error) {
	texts, err := table.ColumnValues(column)
	if err != nil {
		return nil, err
	}

	var res domain.BatchEmbeddingResult
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, s.embed, texts)
	}
	if err != nil {
		return nil, err
	}

	if len(res.Embeddings) != table.Len() {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d rows",
			domain.ErrIndexBuild, len(res.Embeddings), table.Len())
	}
	return res.Embeddings, nil
}

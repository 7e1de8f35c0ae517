// Package retrieval implements the per-query core algorithm: encode the
// query once, search both corpora, and project neighbor positions back
// onto full table rows, nearest first.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alrashid-cloud/ragserve/internal/domain"
	"github.com/alrashid-cloud/ragserve/internal/metrics"
)

// DefaultTopK is the number of neighbors retrieved per source when the
// caller does not override it.
const DefaultTopK = 3

// Service retrieves grounding rows for a query from two read-only sources.
type Service struct {
	embed       Embedder
	faqs        Source
	menuItems   Source
	defaultTopK int
}

// New creates a retrieval service over the two corpora built at startup.
func New(embed Embedder, faqs, menuItems Source, defaultTopK int) *Service {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Service{embed: embed, faqs: faqs, menuItems: menuItems, defaultTopK: defaultTopK}
}

// DefaultK exposes the configured per-source neighbor count so that
// callers without an explicit top_k can resolve it before Retrieve.
func (s *Service) DefaultK() int { return s.defaultTopK }

// Retrieve returns the top-k nearest rows from each source for the query,
// all-or-nothing: any failure aborts the whole call with ErrRetrieval and
// no partial result. topK must be strictly positive; callers resolve
// "not supplied" to DefaultK before calling. When topK exceeds a
// source's row count, all available rows are returned.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) (domain.Retrieval, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Retrieval{}, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return domain.Retrieval{}, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	start := time.Now()
	ret, err := s.retrieve(ctx, query, topK)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(status).Inc()
	metrics.RetrievalDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return ret, err
}

func (s *Service) retrieve(ctx context.Context, query string, topK int) (domain.Retrieval, error) {
	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.Retrieval{}, fmt.Errorf("%w: vectorize query: %w", domain.ErrRetrieval, err)
	}

	faqRows, err := lookup(s.faqs, res.Embedding, topK)
	if err != nil {
		return domain.Retrieval{}, fmt.Errorf("%w: search faqs: %w", domain.ErrRetrieval, err)
	}
	menuRows, err := lookup(s.menuItems, res.Embedding, topK)
	if err != nil {
		return domain.Retrieval{}, fmt.Errorf("%w: search menu items: %w", domain.ErrRetrieval, err)
	}

	return domain.Retrieval{Query: query, FAQs: faqRows, MenuItems: menuRows}, nil
}

// lookup searches one source and projects neighbor positions back onto
// its rows, preserving the nearest-first ordering.
func lookup(src Source, vector []float32, topK int) ([]domain.Row, error) {
	if src.Index == nil || src.Table.Len() == 0 {
		return nil, nil
	}

	matches, err := src.Index.Search(vector, topK)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, len(matches))
	for i, m := range matches {
		if m.Position < 0 || m.Position >= src.Table.Len() {
			return nil, fmt.Errorf("neighbor position %d outside table of %d rows", m.Position, src.Table.Len())
		}
		rows[i] = src.Table.Rows[m.Position]
	}
	return rows, nil
}

package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/alrashid-cloud/ragserve/internal/domain"
)

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	s.calls++
	return domain.EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 3}, s.err
}

type stubBatchEmbedder struct {
	batches [][]string
}

func (s *stubBatchEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	s.batches = append(s.batches, texts)
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts)), TotalTokens: len(texts)}
	for i := range texts {
		out.Embeddings[i] = []float32{float32(i)}
	}
	return out, nil
}

func TestInstrumented_EmbedPassesThrough(t *testing.T) {
	inner := &stubEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	res, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 2 || res.TotalTokens != 3 {
		t.Errorf("result not passed through: %+v", res)
	}
}

func TestInstrumented_EmbedWrapsError(t *testing.T) {
	innerErr := errors.New("boom")
	emb := NewInstrumentedEmbedder(&stubEmbedder{err: innerErr}, "test", "m", zap.NewNop())

	if _, err := emb.Embed(context.Background(), "x"); !errors.Is(err, innerErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestInstrumented_BatchEmbedSplitsLargeBatches(t *testing.T) {
	inner := &stubBatchEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop())

	texts := make([]string, DefaultMaxAPIBatchSize+10)
	for i := range texts {
		texts[i] = fmt.Sprintf("row %d", i)
	}

	res, err := emb.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.batches) != 2 {
		t.Fatalf("expected 2 sub-batches, got %d", len(inner.batches))
	}
	if len(inner.batches[0]) != DefaultMaxAPIBatchSize || len(inner.batches[1]) != 10 {
		t.Errorf("unexpected split sizes: %d, %d", len(inner.batches[0]), len(inner.batches[1]))
	}
	if len(res.Embeddings) != len(texts) {
		t.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}
}

func TestInstrumented_BatchEmbedEmpty(t *testing.T) {
	emb := NewInstrumentedEmbedder(&stubEmbedder{}, "test", "m", zap.NewNop())
	res, err := emb.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 0 {
		t.Errorf("expected no embeddings, got %d", len(res.Embeddings))
	}
}

func TestInstrumented_BatchEmbedFallbackWithoutBatchSupport(t *testing.T) {
	inner := &stubEmbedder{}
	emb := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop())

	res, err := emb.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 single embeds, got %d", inner.calls)
	}
	if len(res.Embeddings) != 3 {
		t.Errorf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
}

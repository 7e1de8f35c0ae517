// Package answer assembles the grounding prompt from a retrieval result
// and invokes the generation capability, returning the final answer.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alrashid-cloud/ragserve/internal/domain"
)

// controlTokens are special tokens some generation backends embed in
// their output. They are stripped from the final answer.
var controlTokens = []string{"<pad>", "</s>", "<s>", "<unk>"}

// Service turns a retrieval result into a generated answer.
type Service struct {
	gen    domain.Generator
	params domain.GenParams
	logger *zap.Logger
}

// New creates an answer service with fixed generation parameters.
func New(gen domain.Generator, params domain.GenParams, logger *zap.Logger) *Service {
	return &Service{gen: gen, params: params, logger: logger}
}

// Answer builds the grounding prompt and makes a single generation
// attempt. Failures surface immediately as ErrGeneration; there is no
// retry and no degraded answer.
func (s *Service) Answer(ctx context.Context, ret domain.Retrieval) (string, error) {
	prompt := BuildPrompt(ret)

	start := time.Now()
	text, err := s.gen.Generate(ctx, prompt, s.params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	s.logger.Debug("Answer generated",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("faq_rows", len(ret.FAQs)),
		zap.Int("menu_rows", len(ret.MenuItems)),
		zap.Duration("duration", time.Since(start)),
	)
	return trimControlTokens(text), nil
}

// Params returns the configured generation parameters.
func (s *Service) Params() domain.GenParams { return s.params }

func trimControlTokens(text string) string {
	for _, tok := range controlTokens {
		text = strings.ReplaceAll(text, tok, "")
	}
	return strings.TrimSpace(text)
}

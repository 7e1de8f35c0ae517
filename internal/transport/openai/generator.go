package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alrashid-cloud/ragserve/internal/domain"
	"github.com/alrashid-cloud/ragserve/internal/metrics"
)

// Generator produces answers via the chat completions endpoint of an
// OpenAI-compatible API.
type Generator struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Generate implements domain.Generator. Sampling knobs map onto the
// chat API: MaxLength becomes MaxTokens, and DoSample=false forces
// greedy decoding with temperature zero. TopK has no chat API
// equivalent and is ignored.
func (g *Generator) Generate(ctx context.Context, prompt string, p domain.GenParams) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		N:     1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if p.MaxLength > 0 {
		req.MaxTokens = p.MaxLength
	}
	if p.DoSample {
		req.Temperature = p.Temperature
		req.TopP = p.TopP
	} else {
		// go-openai omits zero temperature, send the smallest value
		// the encoder keeps.
		req.Temperature = 1e-8
	}
	if p.TopK > 0 && g.logger != nil {
		g.logger.Debug("top_k is not supported by the chat API, ignoring",
			zap.Int("top_k", p.TopK))
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError(err, domain.ErrGenerationProvider)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrGenerationProvider)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

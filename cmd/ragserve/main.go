package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/alrashid-cloud/ragserve/internal/config"
	"github.com/alrashid-cloud/ragserve/internal/domain"
	logpkg "github.com/alrashid-cloud/ragserve/internal/logger"
	"github.com/alrashid-cloud/ragserve/internal/metrics"
	"github.com/alrashid-cloud/ragserve/internal/repository/embcache"
	"github.com/alrashid-cloud/ragserve/internal/repository/sqlite"
	chiTransport "github.com/alrashid-cloud/ragserve/internal/transport/chi"
	openaiTransport "github.com/alrashid-cloud/ragserve/internal/transport/openai"
	answeruc "github.com/alrashid-cloud/ragserve/internal/usecase/answer"
	embeddinguc "github.com/alrashid-cloud/ragserve/internal/usecase/embedding"
	healthuc "github.com/alrashid-cloud/ragserve/internal/usecase/health"
	pipelineuc "github.com/alrashid-cloud/ragserve/internal/usecase/pipeline"
	retrievaluc "github.com/alrashid-cloud/ragserve/internal/usecase/retrieval"
	"github.com/alrashid-cloud/ragserve/internal/version"
)

func main() {
	// .env is optional, real deployments set variables directly
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragserve API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
	)

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	if cfg.Embedding.CacheEnabled {
		if err := store.EnsureKV(ctx); err != nil {
			logger.Fatal("Failed to prepare embedding cache", zap.Error(err))
		}
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	// Base providers (with transport metrics built-in)
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:   cfg.Generation.APIKey,
		BaseURL:  cfg.Generation.BaseURL,
		Model:    cfg.Generation.Model,
		Provider: cfg.Generation.Provider,
		Logger:   logger,
	})

	docEmbedder := buildEmbedder(cfg, baseEmbedder, cfg.Embedding.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(cfg, baseEmbedder, cfg.Embedding.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Ingest both sources and build the in-memory indices
	pipe, err := pipelineuc.New(store, docEmbedder, logger).Build(ctx,
		pipelineuc.SourceConfig{
			Name:           "faqs",
			Query:          cfg.Database.FAQsQuery,
			CombineColumns: cfg.Database.FAQsColumns,
		},
		pipelineuc.SourceConfig{
			Name:           "menu_items",
			Query:          cfg.Database.MenuItemsQuery,
			CombineColumns: cfg.Database.MenuItemsColumns,
		},
	)
	if err != nil {
		logger.Fatal("Failed to build retrieval pipeline", zap.Error(err))
	}

	retrievalSvc := retrievaluc.New(
		queryEmbedder,
		corpusToSource(pipe.FAQs),
		corpusToSource(pipe.MenuItems),
		cfg.Retrieval.TopKResults,
	)

	answerSvc := answeruc.New(generator, domain.GenParams{
		MaxLength:   cfg.Generation.MaxLength,
		DoSample:    *cfg.Generation.DoSample,
		Temperature: cfg.Generation.Temperature,
		TopP:        cfg.Generation.TopP,
		TopK:        cfg.Generation.TopK,
	}, logger)

	healthSvc := healthuc.New(store, baseEmbedder, generator)

	server := chiTransport.NewServer(retrievalSvc, answerSvc, healthSvc, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// corpusToSource adapts a built corpus for the retrieval service.
// An empty corpus carries a nil index; pass the nil interface directly
// to avoid the typed-nil-pointer-in-interface gotcha.
func corpusToSource(c pipelineuc.Corpus) retrievaluc.Source {
	src := retrievaluc.Source{Table: c.Table}
	if c.Index != nil {
		src.Index = c.Index
	}
	return src
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg config.Config,
	base *openaiTransport.Embedder,
	instruction string,
	store *sqlite.Store,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = base

	if cfg.Embedding.CacheEnabled {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	// Instruction prefix (outermost — cache key includes instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

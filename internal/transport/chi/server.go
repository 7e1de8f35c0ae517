// Package chi exposes the assistant over HTTP: a small browser UI,
// a JSON API, health and metrics endpoints.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alrashid-cloud/ragserve/internal/domain"
	"github.com/alrashid-cloud/ragserve/internal/metrics"
	healthuc "github.com/alrashid-cloud/ragserve/internal/usecase/health"
)

// Retriever finds grounding rows for a query. DefaultK is the
// configured neighbor count used when a request carries no top_k.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) (domain.Retrieval, error)
	DefaultK() int
}

// Answerer turns a retrieval into a generated answer.
type Answerer interface {
	Answer(ctx context.Context, ret domain.Retrieval) (string, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	retriever     Retriever
	answerer      Answerer
	health        HealthChecker
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retriever Retriever,
	answerer Answerer,
	health HealthChecker,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retriever: retriever,
		answerer:  answerer,
		health:    health,
		apiKeys:   apiKeys,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, "generation_provider_error"),
		sentinelHandler(domain.ErrRetrieval, http.StatusInternalServerError, "retrieval_failed"),
		sentinelHandler(domain.ErrGeneration, http.StatusInternalServerError, "generation_failed"),
	}
	return s
}

// Router assembles the chi router with middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(jsonRecoverer(s.logger))
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/", s.Index)
	r.Post("/chat", s.ChatForm)
	r.Post("/v1/chat", s.Chat)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	return r
}

// chatRequest is the JSON API request body. TopK is a pointer so that
// an absent field (use the configured default) is distinguishable from
// an explicit zero (invalid).
type chatRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// chatResponse is the JSON API response body.
type chatResponse struct {
	Query     string       `json:"query"`
	Answer    string       `json:"answer"`
	FAQs      []domain.Row `json:"faqs"`
	MenuItems []domain.Row `json:"menu_items"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "Query is required")
		return
	}
	topK := s.retriever.DefaultK()
	if req.TopK != nil {
		if *req.TopK <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_input", "top_k must be positive")
			return
		}
		topK = *req.TopK
	}

	ret, err := s.retriever.Retrieve(r.Context(), req.Query, topK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	answer, err := s.answerer.Answer(r.Context(), ret)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Query:     ret.Query,
		Answer:    answer,
		FAQs:      emptyIfNil(ret.FAQs),
		MenuItems: emptyIfNil(ret.MenuItems),
	})
}

// Index handles GET / with the query form.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(w, s.logger, pageData{})
}

// ChatForm handles POST /chat from the browser form.
func (s *Server) ChatForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(r.PostFormValue("query"))
	if query == "" {
		renderPage(w, s.logger, pageData{Error: "Please enter a question."})
		return
	}

	ret, err := s.retriever.Retrieve(r.Context(), query, s.retriever.DefaultK())
	if err != nil {
		s.logger.Warn("form retrieval failed", zap.Error(err))
		renderPage(w, s.logger, pageData{Query: query, Error: "Something went wrong, please try again."})
		return
	}

	answer, err := s.answerer.Answer(r.Context(), ret)
	if err != nil {
		s.logger.Warn("form generation failed", zap.Error(err))
		renderPage(w, s.logger, pageData{Query: query, Error: "Something went wrong, please try again."})
		return
	}

	renderPage(w, s.logger, pageData{Query: query, Answer: answer})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func emptyIfNil(rows []domain.Row) []domain.Row {
	if rows == nil {
		return []domain.Row{}
	}
	return rows
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrNotFound,
		domain.ErrEmbeddingProvider,
		domain.ErrGenerationProvider,
		domain.ErrRetrieval,
		domain.ErrGeneration,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

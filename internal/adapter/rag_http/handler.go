// Package rag_http exposes the news agent over HTTP with echo.
package rag_http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"news-rag/internal/domain"
	"news-rag/internal/usecase"
)

// QueryRunner is the slice of the conversation graph the handler needs.
type QueryRunner interface {
	RunQuery(ctx context.Context, input usecase.QueryInput) *domain.AgentResponse
	ConversationSources(ctx context.Context, conversationID string) ([]domain.SourceReference, error)
	ClearConversation(ctx context.Context, conversationID string) (int, error)
}

// PipelineRunner runs the one-shot summarize pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, query string, opts usecase.PipelineOptions) domain.NewsState
}

// ArticleFetcher, ArticleSummarizer and SummaryVerifier are the pieces the
// /summarize endpoint composes directly, mirroring the pipeline but with
// per-step error reporting in the response.
type ArticleFetcher interface {
	Retrieve(ctx context.Context, topic, timeRange string, maxResults int) ([]domain.Article, error)
}

type ArticleSummarizer interface {
	Summarize(ctx context.Context, topic string, articles []domain.Article) (*domain.NewsSummary, error)
}

type SummaryVerifier interface {
	Verify(ctx context.Context, summary *domain.NewsSummary, articles []domain.Article) (map[string]any, error)
}

type Handler struct {
	graph      QueryRunner
	pipeline   PipelineRunner
	fetcher    ArticleFetcher
	summarizer ArticleSummarizer
	verifier   SummaryVerifier
	store      domain.ChunkStore
}

func NewHandler(
	graph QueryRunner,
	pipeline PipelineRunner,
	fetcher ArticleFetcher,
	summarizer ArticleSummarizer,
	verifier SummaryVerifier,
	store domain.ChunkStore,
) *Handler {
	return &Handler{
		graph:      graph,
		pipeline:   pipeline,
		fetcher:    fetcher,
		summarizer: summarizer,
		verifier:   verifier,
		store:      store,
	}
}

// Register mounts all routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/summarize", h.Summarize)
	e.POST("/rag/query", h.RagQuery)
	e.GET("/rag/conversation/:id/sources", h.ConversationSources)
	e.DELETE("/rag/conversation/:id", h.ClearConversation)
	e.GET("/rag/stats", h.Stats)
	e.POST("/debug/run-graph", h.DebugRunGraph)
}

func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type summarizeRequest struct {
	Query        string `json:"query"`
	TimeRange    string `json:"time_range"`
	Verification *bool  `json:"verification"`
	MaxArticles  int    `json:"max_articles"`
}

// Summarize retrieves and summarizes articles for a query. Summarizer
// failures are reported inside the payload rather than as an HTTP error so
// callers always get the article list they paid a search call for.
func (h *Handler) Summarize(ctx echo.Context) error {
	req := summarizeRequest{TimeRange: "7d", MaxArticles: 10}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	verification := true
	if req.Verification != nil {
		verification = *req.Verification
	}

	slog.Info("summarize_request",
		"query", req.Query,
		"time_range", req.TimeRange,
		"verification", verification,
		"max_articles", req.MaxArticles)

	reqCtx := ctx.Request().Context()
	queryType := usecase.ClassifyQuery(req.Query)

	articles, err := h.fetcher.Retrieve(reqCtx, req.Query, req.TimeRange, req.MaxArticles)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	summary, err := h.summarizer.Summarize(reqCtx, req.Query, articles)
	if err != nil {
		slog.Warn("summarize_error", "error", err)
		return ctx.JSON(http.StatusOK, domain.NewsSummary{
			Topic:       req.Query,
			SummaryText: "",
			Sentences:   []domain.SummarySentence{},
			Sources:     articles,
			Meta: map[string]any{
				"query_type":   queryType,
				"time_range":   req.TimeRange,
				"verification": verification,
				"error":        err.Error(),
			},
		})
	}

	var verificationResult map[string]any
	if verification {
		verificationResult, err = h.verifier.Verify(reqCtx, summary, articles)
		if err != nil {
			slog.Warn("verification_error", "error", err)
			verificationResult = map[string]any{"error": err.Error()}
		}
	}

	meta := make(map[string]any, len(summary.Meta)+4)
	for k, v := range summary.Meta {
		meta[k] = v
	}
	meta["query_type"] = queryType
	meta["time_range"] = req.TimeRange
	meta["verification"] = verification
	meta["verification_result"] = verificationResult
	summary.Meta = meta

	slog.Info("summarize_response",
		"query", req.Query,
		"articles_count", len(articles))
	return ctx.JSON(http.StatusOK, summary)
}

type ragQueryRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	TimeRange      string `json:"time_range"`
	MaxArticles    int    `json:"max_articles"`
	MaxChunks      int    `json:"max_chunks"`
	IncludeDebug   bool   `json:"include_debug"`
}

func (h *Handler) RagQuery(ctx echo.Context) error {
	var req ragQueryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Message == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	resp := h.graph.RunQuery(ctx.Request().Context(), usecase.QueryInput{
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Message:        req.Message,
		TimeRange:      req.TimeRange,
		MaxArticles:    req.MaxArticles,
		MaxChunks:      req.MaxChunks,
		IncludeDebug:   req.IncludeDebug,
	})
	return ctx.JSON(http.StatusOK, resp)
}

func (h *Handler) ConversationSources(ctx echo.Context) error {
	conversationID := ctx.Param("id")

	sources, err := h.graph.ConversationSources(ctx.Request().Context(), conversationID)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"sources":         sources,
		"count":           len(sources),
	})
}

func (h *Handler) ClearConversation(ctx echo.Context) error {
	conversationID := ctx.Param("id")

	deleted, err := h.graph.ClearConversation(ctx.Request().Context(), conversationID)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"chunks_deleted":  deleted,
		"status":          "deleted",
	})
}

func (h *Handler) Stats(ctx echo.Context) error {
	stats, err := h.store.Stats(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"vector_store": stats,
		"status":       "ok",
	})
}

type debugRunGraphRequest struct {
	Query             string `json:"query"`
	TimeRange         string `json:"time_range"`
	Verification      *bool  `json:"verification"`
	MaxArticles       int    `json:"max_articles"`
	MaxSearchAttempts int    `json:"max_search_attempts"`
}

// DebugRunGraph executes the legacy pipeline and returns its final state
// verbatim. Development aid, not part of the stable API.
func (h *Handler) DebugRunGraph(ctx echo.Context) error {
	req := debugRunGraphRequest{TimeRange: "7d", MaxArticles: 10, MaxSearchAttempts: 3}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	verification := true
	if req.Verification != nil {
		verification = *req.Verification
	}

	state := h.pipeline.Run(ctx.Request().Context(), req.Query, usecase.PipelineOptions{
		TimeRange:         req.TimeRange,
		Verification:      verification,
		MaxArticles:       req.MaxArticles,
		MaxSearchAttempts: req.MaxSearchAttempts,
	})

	slog.Info("debug_run_graph_response",
		"query", req.Query,
		"status", state.Status,
		"search_attempts", state.SearchAttempts)
	return ctx.JSON(http.StatusOK, state)
}

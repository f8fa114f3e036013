package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"news-rag/internal/adapter/llm"
	"news-rag/internal/adapter/newsapi"
	"news-rag/internal/adapter/rag_http"
	"news-rag/internal/adapter/vectorstore"
	"news-rag/internal/domain"
	"news-rag/internal/infra"
	"news-rag/internal/infra/config"
	"news-rag/internal/infra/logger"
	"news-rag/internal/usecase"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New()
	slog.SetDefault(log)

	// 3. Initialize DB
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	dbPool, err := infra.NewPostgresDB(context.Background(), dsn)
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Initialize Adapters
	embedder := llm.NewGeminiEmbedder(cfg.GoogleAPIKey, cfg.EmbeddingModel)
	generator := llm.NewGeminiGenerator(cfg.GoogleAPIKey, cfg.ModelName)
	tavily := newsapi.NewTavilyClient(cfg.TavilyAPIKey)
	gnews := newsapi.NewGNewsClient(cfg.GNewsAPIKey)

	store := vectorstore.New(dbPool, embedder)
	if err := store.EnsureSchema(context.Background(), cfg.EmbeddingDim); err != nil {
		log.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// 5. Initialize Usecases
	splitter := domain.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	retriever := usecase.NewArticleRetriever(tavily, gnews)
	ingestor := usecase.NewArticleIngestor(store, splitter)
	chunkRetriever := usecase.NewChunkRetriever(store)
	sufficiency := usecase.NewSufficiencyChecker(generator, false)
	answers := usecase.NewAnswerGenerator(generator)
	summarizer := usecase.NewSummarizer(generator)
	verifier := usecase.NewVerifier(generator)

	graph := usecase.NewGraph(retriever, ingestor, chunkRetriever, sufficiency, answers, store, cfg.SimilarityThreshold)
	pipeline := usecase.NewNewsPipeline(retriever, summarizer, verifier)

	// 6. Initialize Echo
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// 7. Register Handlers
	handler := rag_http.NewHandler(graph, pipeline, retriever, summarizer, verifier, store)
	handler.Register(e)

	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	// 8. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

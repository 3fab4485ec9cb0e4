package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/repomind-ai/repomind/internal/adapter/ai"
	"github.com/repomind-ai/repomind/internal/adapter/store"
	"github.com/repomind-ai/repomind/internal/adapter/vcshost"
	"github.com/repomind-ai/repomind/internal/handler"
	"github.com/repomind-ai/repomind/internal/pipeline"
	"github.com/repomind-ai/repomind/internal/service"
	"github.com/repomind-ai/repomind/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting RepoMind",
		"port", cfg.Port,
		"github", cfg.GitHubBaseURL,
		"ollama_embed", cfg.OllamaEmbedURL,
		"ollama_chat", cfg.OllamaChatURL,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)
	ledger := store.NewCreditLedger(pgStore)

	// ── Adapters ─────────────────────────────────────────────────────────
	github := vcshost.NewGitHubClient(cfg.GitHubBaseURL, cfg.GitHubToken)

	ollamaAI := ai.NewOllamaProvider(
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaEmbedURL,
			Model:   cfg.OllamaEmbedModel,
			Token:   cfg.OllamaEmbedToken,
		},
		ai.OllamaEndpointConfig{
			BaseURL: cfg.OllamaChatURL,
			Model:   cfg.OllamaChatModel,
			Token:   cfg.OllamaChatToken,
		},
	)

	// ── Pipeline ─────────────────────────────────────────────────────────
	summarizer := pipeline.NewSummarizer(ollamaAI,
		pipeline.RetryConfig{MaxRetries: cfg.DiffRetries, BaseDelay: cfg.DiffRetryBase, MaxJitter: pipeline.DefaultMaxJitter},
		pipeline.RetryConfig{MaxRetries: cfg.FileRetries, BaseDelay: cfg.FileRetryBase, MaxJitter: pipeline.DefaultMaxJitter},
	)
	embedder := pipeline.NewEmbedder(ollamaAI, cfg.EmbeddingDimension)
	loader := pipeline.NewSnapshotLoader(github, cfg.MaxFileBytes)

	indexer := pipeline.NewFileIndexer(vectorStore, ledger, summarizer, embedder, pipeline.IndexerConfig{
		BatchSize:  cfg.FileBatchSize,
		BatchDelay: cfg.FileBatchDelay,
	})

	poller := pipeline.NewCommitPoller(github, pgStore, summarizer, ledger, pipeline.NewThrottle(cfg.CommitDelay), pipeline.PollerConfig{
		PageSize:     cfg.CommitPageSize,
		Window:       cfg.CommitWindow,
		MaxPerCycle:  cfg.CommitsPerCycle,
		MinDiffChars: cfg.MinDiffChars,
	})

	// ── Services ─────────────────────────────────────────────────────────
	projectService := service.NewProjectService(pgStore, pgStore, loader, indexer, poller, cfg.InitialCredits)
	askService := service.NewAskService(embedder, vectorStore, ollamaAI, cfg.SearchLimit, cfg.SimilarityThreshold)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	// Health check
	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	api := app.Group("/api/v1")

	projectHandler := handler.NewProjectHandler(projectService)
	projectHandler.Register(api)

	askHandler := handler.NewAskHandler(askService)
	askHandler.Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

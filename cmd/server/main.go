package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"llex-backend/config"
	"llex-backend/handlers"
	"llex-backend/llm"
	"llex-backend/metrics"
	"llex-backend/repository"
	"llex-backend/search"
	"llex-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	ctx := context.Background()

	// Initialize database connection
	db, err := initPostgres(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	// Initialize repositories
	lawChunkRepo := repository.NewLawChunkRepository(db)
	historyRepo := repository.NewChatHistoryRepository(db)

	// Initialize LLM provider
	provider, err := llm.NewProviderFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize LLM provider:", err)
	}
	slog.Info("LLM provider initialized", "provider", provider.Name())

	// Initialize web search
	searcher := search.NewClient(cfg)

	// Initialize tools
	webSearchTool := service.NewWebSearchTool(searcher, provider, cfg.SearchTimeout)
	lawRAGTool := service.NewLawRAGTool(lawChunkRepo, provider, webSearchTool, cfg.SearchTopK, cfg.RelevanceThreshold)
	newsTool := service.NewNewsTool(searcher, provider, cfg.SearchTimeout)
	blogTool := service.NewBlogTool(searcher, provider, cfg.SearchTimeout)
	dbQueryTool := service.NewDBQueryTool(historyRepo, lawChunkRepo)
	generalTool := service.NewGeneralTool(provider)

	registry := service.NewRegistry(generalTool,
		lawRAGTool, newsTool, blogTool, webSearchTool, dbQueryTool)

	// Initialize metrics
	collector := metrics.NewCollector()

	// Initialize services
	chatService := service.NewChatService(
		service.ChatWithRouter(service.NewQuestionRouter()),
		service.ChatWithRegistry(registry),
		service.ChatWithHistoryStore(historyRepo),
		service.ChatWithMetrics(collector),
		service.ChatWithDefaults(cfg.DefaultUserID, cfg.DefaultSessionID),
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, cfg.HistoryLimit)
	metricsHandler := handlers.NewMetricsHandler(collector)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Version,
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/ask", chatHandler.Ask)
		api.GET("/history", chatHandler.History)
		api.GET("/history/stats", chatHandler.Stats)
		api.GET("/metrics", metricsHandler.Metrics)
		api.GET("/metrics/summary", metricsHandler.Summary)
	}

	slog.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		slog.Warn("failed to create pgvector extension, it may already be installed", "error", err)
	} else {
		slog.Info("pgvector extension enabled")
	}

	slog.Info("Postgres connection established")
	return pool, nil
}

package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/handler"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/mcp"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/service"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/setup"
	"github.com/arturoeanton/go-transcript-rag-qdrant/pkg/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting Amstat RAG API",
		"port", cfg.Port,
		"ai_provider", cfg.AIProvider,
		"vector_backend", cfg.VectorBackend,
		"collection", cfg.Collection,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Adapters ─────────────────────────────────────────────────────────
	aiProvider, err := setup.AIProvider(cfg)
	if err != nil {
		slog.Error("failed to build AI provider", "error", err)
		os.Exit(1)
	}

	vectorStore, closer, err := setup.VectorStore(cfg)
	if err != nil {
		slog.Error("failed to connect to vector store", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	// ── Services ─────────────────────────────────────────────────────────
	ragService := service.NewRAGService(aiProvider, vectorStore, cfg.Collection, cfg.TopK)

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // chat turns can hold the connection for a while
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api")

	chatHandler := handler.NewChatHandler(ragService)
	chatHandler.Register(api)

	compatHandler := handler.NewCompatHandler(ragService)
	compatHandler.Register(app)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(ragService, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/service"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/setup"
	"github.com/arturoeanton/go-transcript-rag-qdrant/pkg/config"
	"github.com/joho/godotenv"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting vector pusher",
		"output_dir", cfg.OutputDir,
		"collection", cfg.Collection,
		"vector_backend", cfg.VectorBackend,
		"batch_size", cfg.PushBatchSize,
		"start_id", cfg.PushStartID,
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

	// ── Run ──────────────────────────────────────────────────────────────
	pusher := service.NewPushService(aiProvider, vectorStore, cfg.Collection, cfg.PushBatchSize)

	startID := cfg.PushStartID
	if startID < 0 {
		startID = 0
	}

	stats, err := pusher.PushDir(context.Background(), cfg.OutputDir, uint64(startID))
	if err != nil {
		slog.Error("push run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("✅ Push complete",
		"files", stats.Files,
		"chunks", stats.Chunks,
		"pushed", stats.Pushed,
	)
}

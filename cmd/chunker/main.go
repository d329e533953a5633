package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/adapter/artifact"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/adapter/chunker"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
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

	slog.Info("🚀 Starting transcript chunker",
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap,
	)

	// ── Chunking strategies ──────────────────────────────────────────────
	var semantic port.Chunker
	if aiProvider, err := setup.AIProvider(cfg); err != nil {
		slog.Warn("semantic chunking disabled", "reason", err)
	} else {
		semantic = chunker.NewAIChunker(aiProvider, cfg.ChunkSize, cfg.SlugNamespace)
	}
	fallback := chunker.NewWindowChunker(cfg.ChunkSize, cfg.ChunkOverlap, cfg.SlugNamespace)

	writer := artifact.NewWriter(cfg.OutputDir)

	// ── Run ──────────────────────────────────────────────────────────────
	ingest := service.NewIngestService(semantic, fallback, writer, cfg.ChunkSize, cfg.ChunkOverlap)

	processed, failed, err := ingest.ProcessDir(context.Background(), cfg.InputDir)
	if err != nil {
		slog.Error("chunking run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("✅ Chunking complete", "processed", processed, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

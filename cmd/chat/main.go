package main

import (
	"log/slog"
	"os"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/service"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/setup"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/tui"
	"github.com/arturoeanton/go-transcript-rag-qdrant/pkg/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

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

	ragService := service.NewRAGService(aiProvider, vectorStore, cfg.Collection, cfg.TopK)

	// ── TUI ──────────────────────────────────────────────────────────────
	label, addr := setup.StoreDescription(cfg)
	model := tui.New(ragService, tui.Info{
		Model:      aiProvider.ModelName(),
		Collection: cfg.Collection,
		StoreLabel: label,
		StoreURL:   addr,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		slog.Error("chat UI failed", "error", err)
		os.Exit(1)
	}
}

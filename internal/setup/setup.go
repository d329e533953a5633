// Package setup builds configured adapters shared by the command binaries.
package setup

import (
	"errors"
	"fmt"
	"io"

	_ "github.com/lib/pq" // postgres driver for the pgvector backend

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/adapter/ai"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/adapter/store"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
	"github.com/arturoeanton/go-transcript-rag-qdrant/pkg/config"
)

// AIProvider builds the embedding/chat provider selected by AI_PROVIDER.
func AIProvider(cfg *config.Config) (port.AIProvider, error) {
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
		return ai.NewOpenAIProvider(ai.OpenAIConfig{
			BaseURL:    cfg.OpenAIBaseURL,
			APIKey:     cfg.OpenAIAPIKey,
			EmbedModel: cfg.EmbedModel,
			ChatModel:  cfg.ChatModel,
		}), nil

	case "ollama":
		return ai.NewOllamaProvider(
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
		), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

// VectorStore builds the vector backend selected by VECTOR_BACKEND. The
// returned closer is non-nil for backends that hold a connection pool.
func VectorStore(cfg *config.Config) (port.VectorStore, io.Closer, error) {
	switch cfg.VectorBackend {
	case "qdrant":
		return store.NewQdrantStore(cfg.QdrantURL), nil, nil

	case "pgvector":
		pg, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPgVectorStore(pg), pg, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}

// StoreDescription returns a label and address describing the configured
// vector backend, for banners and logs.
func StoreDescription(cfg *config.Config) (label, addr string) {
	if cfg.VectorBackend == "pgvector" {
		return "Postgres", cfg.DatabaseURL
	}
	return "Qdrant", cfg.QdrantURL
}

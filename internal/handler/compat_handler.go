package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/service"
)

// CompatHandler mirrors the legacy chat API shape at the server root, kept
// for clients that predate the /api prefix. Chat failures are reported in
// the body of a 200 response, never via HTTP status.
type CompatHandler struct {
	rag *service.RAGService
}

// NewCompatHandler creates a new legacy-surface handler.
func NewCompatHandler(rag *service.RAGService) *CompatHandler {
	return &CompatHandler{rag: rag}
}

// Register sets up the legacy routes on the server root.
func (h *CompatHandler) Register(router fiber.Router) {
	router.Get("/", h.Root)
	router.Get("/health", h.Health)
	router.Post("/chat", h.Chat)
	router.Post("/search", h.Search)
}

// Root identifies the service.
func (h *CompatHandler) Root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Amstat RAG Chat API", "status": "running"})
}

// Health reports whether the vector store behind the chat is reachable.
func (h *CompatHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.rag.CollectionInfo(ctx); err != nil {
		return c.JSON(fiber.Map{"status": "error", "message": "vector store unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "message": "API is healthy"})
}

// Chat answers one message, always including sources. The legacy clients
// send conversation_history too; it is accepted but retrieval never reads it.
func (h *CompatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Message string           `json:"message"`
		History []map[string]any `json:"conversation_history"`
	}
	if err := c.Bind().JSON(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		return c.JSON(chatFailure("message is required"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), chatTimeout)
	defer cancel()

	answer, err := h.rag.Answer(ctx, body.Message, 0, true)
	if err != nil {
		return c.JSON(chatFailure(err.Error()))
	}

	return c.JSON(fiber.Map{
		"response": answer.Response,
		"sources":  answer.Sources,
		"success":  true,
	})
}

// Search runs retrieval without the completion step.
func (h *CompatHandler) Search(c fiber.Ctx) error {
	var body struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := c.Bind().JSON(&body); err != nil || strings.TrimSpace(body.Query) == "" {
		return c.JSON(searchFailure("query is required"))
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	results, err := h.rag.Search(ctx, body.Query, body.TopK)
	if err != nil {
		return c.JSON(searchFailure(err.Error()))
	}

	return c.JSON(fiber.Map{
		"results": results,
		"success": true,
	})
}

func chatFailure(msg string) fiber.Map {
	return fiber.Map{
		"response": "",
		"sources":  []domain.SearchResult{},
		"success":  false,
		"error":    msg,
	}
}

func searchFailure(msg string) fiber.Map {
	return fiber.Map{
		"results": []domain.SearchResult{},
		"success": false,
		"error":   msg,
	}
}

package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/service"
)

// chatTimeout bounds one retrieval-augmented completion, embedding included.
const chatTimeout = 2 * time.Minute

// ChatHandler serves the JSON API consumed by the web chat UI.
type ChatHandler struct {
	rag *service.RAGService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(rag *service.RAGService) *ChatHandler {
	return &ChatHandler{rag: rag}
}

// Register sets up the chat API routes.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Post("/chat", h.Chat)
	router.Post("/search", h.Search)
}

// Health reports liveness plus collection stats when the store is reachable.
func (h *ChatHandler) Health(c fiber.Ctx) error {
	resp := fiber.Map{"status": "ok", "message": "API is running"}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()
	if info, err := h.rag.CollectionInfo(ctx); err == nil {
		resp["collection"] = fiber.Map{
			"points_count": info.PointsCount,
			"vector_size":  info.VectorSize,
			"distance":     info.Distance,
		}
	}
	return c.JSON(resp)
}

// Chat answers one user message with retrieval-augmented generation.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Message     string `json:"message"`
		ShowSources *bool  `json:"show_sources"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "status": "error"})
	}
	if strings.TrimSpace(body.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing message field", "status": "error"})
	}
	showSources := true
	if body.ShowSources != nil {
		showSources = *body.ShowSources
	}

	ctx, cancel := context.WithTimeout(c.Context(), chatTimeout)
	defer cancel()

	answer, err := h.rag.Answer(ctx, body.Message, 0, showSources)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "status": "error"})
	}

	return c.JSON(fiber.Map{
		"response": answer.Response,
		"sources":  answer.Sources,
		"status":   "success",
	})
}

// Search runs vector search without generating a chat response.
func (h *ChatHandler) Search(c fiber.Ctx) error {
	var body struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "status": "error"})
	}
	if strings.TrimSpace(body.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing query field", "status": "error"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	results, err := h.rag.Search(ctx, body.Query, body.TopK)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "status": "error"})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"status":  "success",
	})
}

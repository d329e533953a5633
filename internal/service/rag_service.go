package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// noResultsResponse is returned when retrieval finds nothing; the chat model
// is not called in that case.
const noResultsResponse = "I couldn't find any relevant information in the database."

const chatSystemPrompt = `You are a helpful assistant for Amstat, an aircraft data and analytics platform.
You answer questions based on the provided video transcripts and documentation.

Guidelines:
- Answer ONLY what is asked - be direct and focused
- Do not provide extra information beyond what was asked
- Be concise and to the point
- Use the exact terminology from the transcripts
- If the information is not in the context, say so clearly
- Do not include source citations in the main answer unless specifically asked`

// RAGService handles retrieval-augmented generation over transcript chunks.
type RAGService struct {
	ai         port.AIProvider
	store      port.VectorStore
	collection string
	topK       int
}

// NewRAGService creates a new RAG service. topK is the default result count
// used when a query does not specify its own.
func NewRAGService(ai port.AIProvider, store port.VectorStore, collection string, topK int) *RAGService {
	if topK <= 0 {
		topK = 5
	}
	return &RAGService{ai: ai, store: store, collection: collection, topK: topK}
}

// Search embeds the query and returns the most similar chunks.
func (s *RAGService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, port.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = s.topK
	}

	queryVector, err := s.ai.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, s.collection, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("search collection: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// Answer runs one retrieval-augmented chat turn: search, build context,
// generate. Sources are included in the answer only when showSources is set.
func (s *RAGService) Answer(ctx context.Context, query string, topK int, showSources bool) (domain.Answer, error) {
	slog.Info("RAG query", "query", query, "top_k", topK)

	// 1. Retrieve similar chunks
	results, err := s.Search(ctx, query, topK)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(results) == 0 {
		return domain.Answer{Response: noResultsResponse, Sources: []domain.SearchResult{}}, nil
	}

	// 2. Build context from retrieved chunks
	userPrompt := fmt.Sprintf(`Based on the following context from Amstat video transcripts, answer ONLY the user's specific question.
Do not provide additional information beyond what was asked. Be direct and concise.

CONTEXT:
%s

USER QUESTION: %s

Provide a focused answer that directly addresses the question. If the information is not available in the context, say so clearly.`, formatContext(results), query)

	// 3. Generate AI response with context
	response, err := s.ai.Chat(ctx, port.ChatRequest{
		System:      chatSystemPrompt,
		User:        userPrompt,
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("chat: %w", err)
	}

	sources := []domain.SearchResult{}
	if showSources {
		sources = results
	}
	return domain.Answer{Response: response, Sources: sources}, nil
}

// CollectionInfo reports on the collection backing this service.
func (s *RAGService) CollectionInfo(ctx context.Context) (domain.CollectionInfo, error) {
	return s.store.CollectionInfo(ctx, s.collection)
}

// formatContext renders retrieved chunks as numbered source blocks for the
// chat prompt.
func formatContext(results []domain.SearchResult) string {
	contextParts := make([]string, len(results))
	for i, r := range results {
		contextParts[i] = fmt.Sprintf(`
[Source %d]
Title: %s
Topic: %s
Source: %s
Timestamp: %s - %s
Relevance Score: %.3f

Content:
%s
`, i+1, orNA(r.Title), orNA(r.Topic), orNA(r.Source), r.TimestampStart, r.TimestampEnd, r.Score, r.ChunkText)
	}
	return strings.Join(contextParts, "\n")
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// OpenAIConfig holds the connection settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL    string // e.g. https://api.openai.com
	APIKey     string // Bearer token (empty = no auth header)
	EmbedModel string // e.g. text-embedding-3-small
	ChatModel  string // e.g. gpt-4.1-mini
}

// OpenAIProvider implements port.AIProvider against an OpenAI-compatible REST API.
// Works with api.openai.com as well as any server exposing the same /v1 surface.
type OpenAIProvider struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI-backed AI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAIProvider{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// ModelName returns the chat model identifier.
func (o *OpenAIProvider) ModelName() string {
	return o.cfg.ChatModel
}

// Embed generates a vector embedding for the given text.
func (o *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model": o.cfg.EmbedModel,
		"input": text,
	}

	body, err := o.post(ctx, "/v1/embeddings", payload)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	var resp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai embed decode: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embed: empty response")
	}

	return resp.Data[0].Embedding, nil
}

// Chat sends one completion request and returns the response text.
func (o *OpenAIProvider) Chat(ctx context.Context, req port.ChatRequest) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": req.System},
		{"role": "user", "content": req.User},
	}

	payload := map[string]interface{}{
		"model":    o.cfg.ChatModel,
		"messages": messages,
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}
	if req.JSONResponse {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	body, err := o.post(ctx, "/v1/chat/completions", payload)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("openai chat decode: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}

	return resp.Choices[0].Message.Content, nil
}

// post is a helper for POST requests to the endpoint (with bearer auth).
func (o *OpenAIProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		// OpenAI wraps failures in {"error": {"message": ...}}; fall back to the raw body.
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openai API error (%d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

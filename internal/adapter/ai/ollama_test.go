package ai

import (
	"context"
	"net/http"
	"testing"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

func newTestOllama(rt roundTripFunc) *OllamaProvider {
	p := NewOllamaProvider(
		OllamaEndpointConfig{BaseURL: "http://embed.test", Model: "bge-m3"},
		OllamaEndpointConfig{BaseURL: "http://chat.test", Model: "qwen3", Token: "tok-123"},
	)
	p.httpClient = &http.Client{Transport: rt}
	return p
}

func TestOllamaEmbed(t *testing.T) {
	var captured *http.Request
	p := newTestOllama(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"embeddings":[[1,2,3]]}`), nil
	})

	vec, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Errorf("vec = %v", vec)
	}

	if captured.URL.Host != "embed.test" || captured.URL.Path != "/api/embed" {
		t.Errorf("request url = %v", captured.URL)
	}
	if got := captured.Header.Get("Authorization"); got != "" {
		t.Errorf("embed endpoint has no token, auth header = %q", got)
	}
	body := decodeBody(t, captured)
	if body["model"] != "bge-m3" || body["input"] != "hello" {
		t.Errorf("body = %v", body)
	}
}

func TestOllamaChat(t *testing.T) {
	var captured *http.Request
	p := newTestOllama(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"message":{"content":"pong"}}`), nil
	})

	out, err := p.Chat(context.Background(), port.ChatRequest{
		System:       "sys",
		User:         "ping",
		Temperature:  0.3,
		MaxTokens:    500,
		JSONResponse: true,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "pong" {
		t.Errorf("out = %q", out)
	}

	if captured.URL.Host != "chat.test" || captured.URL.Path != "/api/chat" {
		t.Errorf("request url = %v", captured.URL)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("auth header = %q", got)
	}
	body := decodeBody(t, captured)
	if body["stream"] != false {
		t.Errorf("stream = %v", body["stream"])
	}
	if body["format"] != "json" {
		t.Errorf("format = %v", body["format"])
	}
	opts, ok := body["options"].(map[string]interface{})
	if !ok || opts["temperature"] != 0.3 || opts["num_predict"] != float64(500) {
		t.Errorf("options = %v", body["options"])
	}
}

func TestOllamaChatPlain(t *testing.T) {
	var captured *http.Request
	p := newTestOllama(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"message":{"content":"hi"}}`), nil
	})

	if _, err := p.Chat(context.Background(), port.ChatRequest{System: "s", User: "u"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	body := decodeBody(t, captured)
	if _, ok := body["format"]; ok {
		t.Error("format should be omitted without JSONResponse")
	}
	if _, ok := body["options"]; ok {
		t.Error("options should be omitted when unset")
	}
}

func TestOllamaAPIError(t *testing.T) {
	p := newTestOllama(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, `{"error":"model not found"}`), nil
	})

	if _, err := p.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

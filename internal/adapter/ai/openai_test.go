package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// roundTripFunc lets tests stub HTTP responses without a live server.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestOpenAI(rt roundTripFunc) *OpenAIProvider {
	p := NewOpenAIProvider(OpenAIConfig{
		BaseURL:    "http://ai.test",
		APIKey:     "sk-test",
		EmbedModel: "text-embedding-3-small",
		ChatModel:  "gpt-4.1-mini",
	})
	p.httpClient = &http.Client{Transport: rt}
	return p
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func decodeBody(t *testing.T, req *http.Request) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return m
}

func TestOpenAIEmbed(t *testing.T) {
	var captured *http.Request
	p := newTestOpenAI(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"data":[{"embedding":[0.1,0.2,0.3]}]}`), nil
	})

	vec, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("vec = %v", vec)
	}

	if captured.Method != http.MethodPost || captured.URL.Path != "/v1/embeddings" {
		t.Errorf("request = %s %s", captured.Method, captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("auth header = %q", got)
	}
	body := decodeBody(t, captured)
	if body["model"] != "text-embedding-3-small" || body["input"] != "hello" {
		t.Errorf("body = %v", body)
	}
}

func TestOpenAIChatJSONMode(t *testing.T) {
	var captured *http.Request
	p := newTestOpenAI(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"choices":[{"message":{"content":"{\"chunks\":[]}"}}]}`), nil
	})

	out, err := p.Chat(context.Background(), port.ChatRequest{
		System:       "you are a chunker",
		User:         "chunk this",
		Temperature:  0.3,
		MaxTokens:    500,
		JSONResponse: true,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != `{"chunks":[]}` {
		t.Errorf("out = %q", out)
	}

	if captured.URL.Path != "/v1/chat/completions" {
		t.Errorf("path = %q", captured.URL.Path)
	}
	body := decodeBody(t, captured)
	if body["temperature"] != 0.3 {
		t.Errorf("temperature = %v", body["temperature"])
	}
	if body["max_tokens"] != float64(500) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	rf, ok := body["response_format"].(map[string]interface{})
	if !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v", body["response_format"])
	}
	msgs, ok := body["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}
	first := msgs[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "you are a chunker" {
		t.Errorf("system message = %v", first)
	}
}

func TestOpenAIChatOmitsUnsetOptions(t *testing.T) {
	var captured *http.Request
	p := newTestOpenAI(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"choices":[{"message":{"content":"hi"}}]}`), nil
	})

	if _, err := p.Chat(context.Background(), port.ChatRequest{System: "s", User: "u"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	body := decodeBody(t, captured)
	for _, key := range []string{"temperature", "max_tokens", "response_format"} {
		if _, ok := body[key]; ok {
			t.Errorf("body unexpectedly contains %q", key)
		}
	}
}

func TestOpenAIAPIError(t *testing.T) {
	p := newTestOpenAI(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"error":{"message":"Incorrect API key provided"}}`), nil
	})

	_, err := p.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Errorf("err = %v", err)
	}
}

func TestOpenAIEmbedEmptyResponse(t *testing.T) {
	p := newTestOpenAI(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"data":[]}`), nil
	})

	if _, err := p.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/service"
)

type fakeAI struct {
	response string
	chatErr  error
}

func (f *fakeAI) ModelName() string { return "test-model" }

func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (f *fakeAI) Chat(ctx context.Context, req port.ChatRequest) (string, error) {
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.response, nil
}

type fakeStore struct {
	results   []domain.SearchResult
	lastLimit int
}

func (f *fakeStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, points []domain.Point) error {
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.SearchResult, error) {
	f.lastLimit = limit
	return f.results, nil
}

func (f *fakeStore) CollectionInfo(ctx context.Context, collection string) (domain.CollectionInfo, error) {
	return domain.CollectionInfo{}, errors.New("not implemented")
}

func newTestServer(store *fakeStore, ai *fakeAI) *Server {
	rag := service.NewRAGService(ai, store, "amstat_transcripts", 5)
	return NewServer(rag, "5001")
}

func callRPC(t *testing.T, s *Server, body string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleRPC(rec, req)

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func resultOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	if errObj, ok := resp["error"]; ok {
		t.Fatalf("rpc error: %v", errObj)
	}
	result, ok := resp["result"].(map[string]any)
	if !ok {
		t.Fatalf("result: %v", resp["result"])
	}
	return result
}

func contentText(t *testing.T, result map[string]any) string {
	t.Helper()
	content, ok := result["content"].([]any)
	if !ok || len(content) == 0 {
		t.Fatalf("content: %v", result["content"])
	}
	first, ok := content[0].(map[string]any)
	if !ok || first["type"] != "text" {
		t.Fatalf("content[0]: %v", content[0])
	}
	text, _ := first["text"].(string)
	return text
}

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{{
		ID:             "amstat-alert-setup-7",
		Score:          0.87,
		ChunkText:      "Fleet alerts are configured per tail number.",
		Title:          "Alert Setup",
		TimestampStart: "00:01:00",
		TimestampEnd:   "00:01:30",
	}}
}

func TestInitialize(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	resp := callRPC(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	result := resultOf(t, resp)
	info, ok := result["serverInfo"].(map[string]any)
	if !ok || info["name"] != "transcript-rag" {
		t.Fatalf("serverInfo: %v", result["serverInfo"])
	}
}

func TestToolsList(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	result := resultOf(t, callRPC(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	tools, ok := result["tools"].([]any)
	if !ok || len(tools) != 2 {
		t.Fatalf("tools: %v", result["tools"])
	}
	names := make([]string, len(tools))
	for i, tl := range tools {
		names[i], _ = tl.(map[string]any)["name"].(string)
	}
	if names[0] != "search_transcripts" || names[1] != "ask_transcripts" {
		t.Fatalf("tool names: %v", names)
	}
}

func TestCallSearchTranscripts(t *testing.T) {
	store := &fakeStore{results: sampleResults()}
	s := newTestServer(store, &fakeAI{})

	body := `{"jsonrpc":"2.0","id":2,"method":"tools/call",` +
		`"params":{"name":"search_transcripts","arguments":{"query":"alerts","top_k":2}}}`
	result := resultOf(t, callRPC(t, s, body))

	text := contentText(t, result)
	if !strings.Contains(text, "Found 1 matching chunks") || !strings.Contains(text, "Alert Setup") {
		t.Fatalf("text: %q", text)
	}
	sources, ok := result["sources"].([]any)
	if !ok || len(sources) != 1 {
		t.Fatalf("sources: %v", result["sources"])
	}
	if store.lastLimit != 2 {
		t.Fatalf("top_k: want=2 got=%d", store.lastLimit)
	}
}

func TestCallSearchTranscriptsNoResults(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	body := `{"jsonrpc":"2.0","id":2,"method":"tools/call",` +
		`"params":{"name":"search_transcripts","arguments":{"query":"anything"}}}`
	result := resultOf(t, callRPC(t, s, body))

	if text := contentText(t, result); text != "No matching transcript chunks found." {
		t.Fatalf("text: %q", text)
	}
}

func TestCallAskTranscripts(t *testing.T) {
	s := newTestServer(&fakeStore{results: sampleResults()}, &fakeAI{response: "Per tail number."})

	body := `{"jsonrpc":"2.0","id":3,"method":"tools/call",` +
		`"params":{"name":"ask_transcripts","arguments":{"question":"How are alerts configured?"}}}`
	result := resultOf(t, callRPC(t, s, body))

	if text := contentText(t, result); text != "Per tail number." {
		t.Fatalf("text: %q", text)
	}
	sources, ok := result["sources"].([]any)
	if !ok || len(sources) != 1 {
		t.Fatalf("sources: %v", result["sources"])
	}
}

func TestCallAskTranscriptsHideSources(t *testing.T) {
	s := newTestServer(&fakeStore{results: sampleResults()}, &fakeAI{response: "ok"})

	body := `{"jsonrpc":"2.0","id":3,"method":"tools/call",` +
		`"params":{"name":"ask_transcripts","arguments":{"question":"q","show_sources":false}}}`
	result := resultOf(t, callRPC(t, s, body))

	sources, ok := result["sources"].([]any)
	if !ok || len(sources) != 0 {
		t.Fatalf("sources: %v", result["sources"])
	}
}

func TestCallUnknownTool(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	resp := callRPC(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`)
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatalf("want error, got %v", resp)
	}
	if errObj["code"] != float64(-32603) {
		t.Fatalf("code: %v", errObj["code"])
	}
	if msg, _ := errObj["message"].(string); !strings.Contains(msg, "unknown tool") {
		t.Fatalf("message: %v", errObj["message"])
	}
}

func TestMethodNotFound(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	resp := callRPC(t, s, `{"jsonrpc":"2.0","id":5,"method":"resources/list"}`)
	errObj, ok := resp["error"].(map[string]any)
	if !ok || errObj["code"] != float64(-32601) {
		t.Fatalf("want method not found, got %v", resp)
	}
}

func TestParseError(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	resp := callRPC(t, s, `{not json`)
	errObj, ok := resp["error"].(map[string]any)
	if !ok || errObj["code"] != float64(-32700) {
		t.Fatalf("want parse error, got %v", resp)
	}
}

func TestRPCRejectsGet(t *testing.T) {
	s := newTestServer(&fakeStore{}, &fakeAI{})

	rec := httptest.NewRecorder()
	s.handleRPC(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestSSEAnnouncesEndpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/mcp/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		newTestServer(&fakeStore{}, &fakeAI{}).handleSSE(rec, req)
		close(done)
	}()
	cancel()
	<-done

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type: %q", got)
	}
	if !strings.Contains(rec.Body.String(), "event: endpoint") {
		t.Fatalf("body: %q", rec.Body.String())
	}
}

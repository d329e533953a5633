package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// QdrantStore implements port.VectorStore against the Qdrant REST API.
type QdrantStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewQdrantStore creates a Qdrant-backed vector store for the given base URL
// (e.g. http://localhost:6333).
func NewQdrantStore(baseURL string) *QdrantStore {
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// qdrantEnvelope is the {result, status, time} wrapper Qdrant puts around
// every response body.
type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

// apiError is a non-2xx response from Qdrant.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("qdrant API error (%d): %s", e.status, e.body)
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet. Safe to call repeatedly.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	var listing struct {
		Collections []struct {
			Name string `json:"name"`
		} `json:"collections"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/collections", nil, &listing); err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, c := range listing.Collections {
		if c.Name == collection {
			slog.Info("collection already exists", "collection", collection)
			return nil
		}
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut, "/collections/"+collection, body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	slog.Info("collection created", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert writes points and waits until they are persisted.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]interface{}{"points": points}
	if err := s.doJSON(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body, nil); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search runs a similarity query and maps payloads back to search results.
func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.SearchResult, error) {
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}

	var items []struct {
		ID      json.RawMessage     `json:"id"`
		Score   float64             `json:"score"`
		Payload domain.PointPayload `json:"payload"`
	}
	if err := s.doJSON(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body, &items); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, domain.SearchResult{
			ID:             item.Payload.ChunkID,
			Score:          item.Score,
			ChunkText:      item.Payload.ChunkText,
			Title:          item.Payload.Title,
			Source:         item.Payload.Source,
			Topic:          item.Payload.Topic,
			TimestampStart: item.Payload.TimestampStart,
			TimestampEnd:   item.Payload.TimestampEnd,
		})
	}
	return results, nil
}

// CollectionInfo returns point count, vector size, and distance metric.
func (s *QdrantStore) CollectionInfo(ctx context.Context, collection string) (domain.CollectionInfo, error) {
	var info struct {
		PointsCount uint64 `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	}
	if err := s.doJSON(ctx, http.MethodGet, "/collections/"+collection, nil, &info); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound {
			return domain.CollectionInfo{}, fmt.Errorf("%s: %w", collection, port.ErrCollectionNotFound)
		}
		return domain.CollectionInfo{}, fmt.Errorf("collection info: %w", err)
	}

	return domain.CollectionInfo{
		PointsCount: info.PointsCount,
		VectorSize:  info.Config.Params.Vectors.Size,
		Distance:    info.Config.Params.Vectors.Distance,
	}, nil
}

// doJSON sends one request and decodes the envelope result into out (when
// out is non-nil).
func (s *QdrantStore) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: truncate(raw, 1024)}
	}

	var envelope qdrantEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if msg := envelopeStatusError(envelope.Status); msg != "" {
		return fmt.Errorf("qdrant: %s", msg)
	}

	if out == nil || len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// envelopeStatusError returns a message when the envelope status is not
// "ok". The status field is either a string or an {"error": ...} object.
func envelopeStatusError(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}

	var statusString string
	if err := json.Unmarshal(raw, &statusString); err == nil {
		if strings.EqualFold(statusString, "ok") {
			return ""
		}
		return fmt.Sprintf("status %q", statusString)
	}

	var statusObject struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &statusObject); err == nil && strings.TrimSpace(statusObject.Error) != "" {
		return strings.TrimSpace(statusObject.Error)
	}
	return "status " + status
}

func truncate(raw []byte, max int) string {
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/adapter/artifact"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// PushService embeds chunk artifacts and uploads them to the vector store.
type PushService struct {
	ai         port.AIProvider
	store      port.VectorStore
	collection string
	batchSize  int
}

// PushStats summarizes a directory push.
type PushStats struct {
	Files  int // files whose chunks were loaded
	Chunks int // chunks loaded across those files
	Pushed int // points actually upserted
}

// NewPushService creates a push service uploading in batches of batchSize.
func NewPushService(ai port.AIProvider, store port.VectorStore, collection string, batchSize int) *PushService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &PushService{ai: ai, store: store, collection: collection, batchSize: batchSize}
}

// DetectVectorSize probes the embedding model to learn its dimensionality.
func (s *PushService) DetectVectorSize(ctx context.Context) (int, error) {
	vector, err := s.ai.Embed(ctx, "test")
	if err != nil {
		return 0, fmt.Errorf("probe embedding: %w", err)
	}
	return len(vector), nil
}

// EnsureCollection makes sure the target collection exists with the given
// vector size.
func (s *PushService) EnsureCollection(ctx context.Context, vectorSize int) error {
	return s.store.EnsureCollection(ctx, s.collection, vectorSize)
}

// Push embeds the chunks and upserts them in batches. Point ids are assigned
// as startID plus the chunk's position, so rerunning over the same ids
// overwrites instead of duplicating. Empty chunks and chunks whose embedding
// fails are skipped; their id slots stay unused. Returns the number of points
// uploaded, which on a batch error is the count from the batches before it.
func (s *PushService) Push(ctx context.Context, chunks []domain.Chunk, startID uint64) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	slog.Info("preparing chunks", "count", len(chunks), "collection", s.collection)

	now := time.Now().Format(time.RFC3339)
	points := make([]domain.Point, 0, len(chunks))
	for idx, c := range chunks {
		if strings.TrimSpace(c.ChunkText) == "" {
			slog.Warn("skipping empty chunk", "index", idx, "id", c.ID)
			continue
		}
		vector, err := s.ai.Embed(ctx, c.ChunkText)
		if err != nil {
			slog.Warn("embedding failed, skipping chunk", "index", idx, "id", c.ID, "error", err)
			continue
		}

		chunkID := c.ID
		if chunkID == "" {
			chunkID = fmt.Sprintf("chunk_%d", startID+uint64(idx))
		}
		points = append(points, domain.Point{
			ID:     startID + uint64(idx),
			Vector: vector,
			Payload: domain.PointPayload{
				ChunkID:        chunkID,
				Title:          c.Title,
				Source:         c.Source,
				ChunkText:      c.ChunkText,
				Metadata:       c.Metadata,
				TimestampStart: c.Metadata.TimestampStart,
				TimestampEnd:   c.Metadata.TimestampEnd,
				Topic:          c.Metadata.Topic,
				ProcessedDate:  now,
			},
		})
	}
	if len(points) == 0 {
		slog.Warn("no valid points to upload")
		return 0, nil
	}

	uploaded := 0
	for i := 0; i < len(points); i += s.batchSize {
		end := i + s.batchSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.store.Upsert(ctx, s.collection, points[i:end]); err != nil {
			return uploaded, fmt.Errorf("upload batch %d: %w", i/s.batchSize+1, err)
		}
		uploaded += end - i
		slog.Info("uploaded points", "uploaded", uploaded, "total", len(points))
	}
	return uploaded, nil
}

// PushDir finds every chunks.jsonl under root and pushes them all into the
// collection, probing the embedding size first. Point ids are file-position
// based: each file's block starts where the previous file's chunk count
// ended. The cursor advances only after a clean push, so a failed file
// leaves its id range to the next one.
func (s *PushService) PushDir(ctx context.Context, root string, startID uint64) (PushStats, error) {
	var stats PushStats

	files, err := artifact.FindChunkFiles(root)
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		slog.Warn("no chunk files found", "dir", root)
		return stats, nil
	}
	slog.Info("found chunk files", "dir", root, "count", len(files))

	vectorSize, err := s.DetectVectorSize(ctx)
	if err != nil {
		return stats, err
	}
	slog.Info("detected embedding vector size", "size", vectorSize)
	if err := s.EnsureCollection(ctx, vectorSize); err != nil {
		return stats, fmt.Errorf("ensure collection: %w", err)
	}

	currentID := startID
	for _, path := range files {
		chunks, err := artifact.ReadChunks(path)
		if err != nil {
			slog.Error("loading chunks failed", "file", path, "error", err)
			continue
		}
		if len(chunks) == 0 {
			continue
		}
		stats.Files++
		stats.Chunks += len(chunks)

		pushed, err := s.Push(ctx, chunks, currentID)
		stats.Pushed += pushed
		if err != nil {
			slog.Error("push failed", "file", path, "error", err)
			continue
		}
		currentID += uint64(len(chunks))
	}

	if info, err := s.store.CollectionInfo(ctx, s.collection); err == nil {
		slog.Info("collection status",
			"collection", s.collection,
			"points", info.PointsCount,
			"vector_size", info.VectorSize,
			"distance", info.Distance)
	}
	return stats, nil
}

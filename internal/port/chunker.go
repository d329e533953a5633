package port

import (
	"context"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
)

// Chunker is a pluggable strategy that splits a parsed transcript into
// retrieval chunks. Strategies are tried in order by the ingest service;
// an error from one strategy hands the document to the next.
type Chunker interface {
	// Name identifies the strategy in logs and artifacts.
	Name() string

	// Chunk splits the document into ordered chunks. It must either return
	// at least one chunk or an error, never an empty slice and nil.
	Chunk(ctx context.Context, doc domain.TranscriptDocument) ([]domain.Chunk, error)
}

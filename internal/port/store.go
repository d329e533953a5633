package port

import (
	"context"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
)

// VectorStore abstracts the vector database used for semantic search.
// Collections are addressed by name on every call so one store can serve
// several corpora.
type VectorStore interface {
	// EnsureCollection creates the collection with cosine distance if it
	// does not exist yet. Calling it on an existing collection is a no-op.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// Upsert writes the points into the collection, replacing any points
	// that already carry the same IDs.
	Upsert(ctx context.Context, collection string, points []domain.Point) error

	// Search returns the closest points to the query vector, best first.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.SearchResult, error)

	// CollectionInfo reports point count and vector configuration.
	CollectionInfo(ctx context.Context, collection string) (domain.CollectionInfo, error)
}

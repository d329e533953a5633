package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// PgVectorStore implements port.VectorStore on Postgres with the pgvector
// extension. Each collection is one table plus a row in vector_collections;
// cosine similarity is computed as 1 - (vector <=> query).
type PgVectorStore struct {
	store *PostgresStore
}

// NewPgVectorStore creates a vector store backed by the given Postgres store.
func NewPgVectorStore(store *PostgresStore) *PgVectorStore {
	return &PgVectorStore{store: store}
}

const collectionsDDL = `CREATE TABLE IF NOT EXISTS vector_collections (
	name TEXT PRIMARY KEY,
	vector_size INT NOT NULL,
	distance TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureCollection creates the collection table and registers it if it does
// not exist yet. Safe to call repeatedly.
func (v *PgVectorStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	if _, err := v.store.db.ExecContext(ctx, collectionsDDL); err != nil {
		return fmt.Errorf("ensure collections table: %w", err)
	}

	var existing int
	err := v.store.db.QueryRowContext(ctx,
		`SELECT vector_size FROM vector_collections WHERE name = $1`, collection,
	).Scan(&existing)
	if err == nil {
		slog.Info("collection already exists", "collection", collection, "vector_size", existing)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check collection: %w", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT PRIMARY KEY,
		vector vector(%d) NOT NULL,
		payload JSONB NOT NULL
	)`, tableName(collection), vectorSize)
	if _, err := v.store.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create collection table: %w", err)
	}

	if _, err := v.store.db.ExecContext(ctx,
		`INSERT INTO vector_collections (name, vector_size, distance)
		 VALUES ($1, $2, 'Cosine')
		 ON CONFLICT (name) DO NOTHING`, collection, vectorSize,
	); err != nil {
		return fmt.Errorf("register collection: %w", err)
	}

	slog.Info("collection created", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert writes points in one transaction. Existing ids are overwritten.
func (v *PgVectorStore) Upsert(ctx context.Context, collection string, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO %s (id, vector, payload)
		 VALUES ($1, $2::vector, $3::jsonb)
		 ON CONFLICT (id) DO UPDATE SET
			vector = EXCLUDED.vector,
			payload = EXCLUDED.payload`, tableName(collection))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		payload, err := json.Marshal(p.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload %d: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, int64(p.ID), vectorToString(p.Vector), payload); err != nil {
			return fmt.Errorf("insert point %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Search performs a cosine similarity search and maps payloads back to
// search results.
func (v *PgVectorStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.SearchResult, error) {
	query := fmt.Sprintf(`SELECT payload, 1 - (vector <=> $1::vector) AS similarity
	          FROM %s
	          ORDER BY vector <=> $1::vector
	          LIMIT $2`, tableName(collection))

	rows, err := v.store.db.QueryContext(ctx, query, vectorToString(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var raw []byte
		var score float64
		if err := rows.Scan(&raw, &score); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		var payload domain.PointPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		results = append(results, domain.SearchResult{
			ID:             payload.ChunkID,
			Score:          score,
			ChunkText:      payload.ChunkText,
			Title:          payload.Title,
			Source:         payload.Source,
			Topic:          payload.Topic,
			TimestampStart: payload.TimestampStart,
			TimestampEnd:   payload.TimestampEnd,
		})
	}
	return results, nil
}

// CollectionInfo returns point count, vector size, and distance metric.
func (v *PgVectorStore) CollectionInfo(ctx context.Context, collection string) (domain.CollectionInfo, error) {
	var info domain.CollectionInfo
	err := v.store.db.QueryRowContext(ctx,
		`SELECT vector_size, distance FROM vector_collections WHERE name = $1`, collection,
	).Scan(&info.VectorSize, &info.Distance)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CollectionInfo{}, fmt.Errorf("%s: %w", collection, port.ErrCollectionNotFound)
	}
	if err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("collection info: %w", err)
	}

	count := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableName(collection))
	if err := v.store.db.QueryRowContext(ctx, count).Scan(&info.PointsCount); err != nil {
		return domain.CollectionInfo{}, fmt.Errorf("count points: %w", err)
	}
	return info, nil
}

// tableName maps a collection name to a safe SQL identifier: lowercase
// alphanumerics and underscores only.
func tableName(collection string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(collection) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "c_" + name
	}
	return name
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

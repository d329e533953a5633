package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/transcript"
)

// Writer persists the chunk artifacts of processed documents under a base
// directory, one folder per document.
type Writer struct {
	baseDir string
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Write stores three artifacts for the document under a folder named after
// its title: chunks_array.json (the bare array, indented), chunks.jsonl
// (one chunk per line, the pusher's input), and chunks.json (the enriched
// document). Returns the folder path.
func (w *Writer) Write(doc domain.ChunkDocument) (string, error) {
	dir := filepath.Join(w.baseDir, transcript.SafeName(doc.Title))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, "chunks_array.json"), doc.Chunks); err != nil {
		return "", err
	}
	if err := writeJSONL(filepath.Join(dir, "chunks.jsonl"), doc.Chunks); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "chunks.json"), doc); err != nil {
		return "", err
	}
	return dir, nil
}

// writeJSON writes v indented, without HTML escaping so transcript text
// stays readable on disk.
func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSONL writes one compact JSON object per line.
func writeJSONL(path string, chunks []domain.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
)

func sampleDoc() domain.ChunkDocument {
	return domain.ChunkDocument{
		SourceFile:    "tactiq-free-transcript-demo.txt",
		Title:         "Hello & Demo",
		URL:           "https://example.com/demo?a=1&b=2",
		TotalChunks:   2,
		ChunkSize:     1000,
		ChunkOverlap:  200,
		ProcessedDate: "2026-08-25T10:00:00Z",
		Chunks: []domain.Chunk{
			{
				ID:        "amstat-hello-demo-1",
				Title:     "Hello & Demo",
				Source:    "https://example.com/demo?a=1&b=2",
				ChunkText: "first chunk <with> special & characters",
				Metadata:  domain.ChunkMetadata{TimestampStart: "00:00:01", TimestampEnd: "00:00:05", Topic: "Intro"},
			},
			{
				ID:        "amstat-hello-demo-2",
				Title:     "Hello & Demo",
				Source:    "https://example.com/demo?a=1&b=2",
				ChunkText: "second chunk",
				Metadata:  domain.ChunkMetadata{TimestampStart: "00:00:05", TimestampEnd: "00:00:09", Topic: "Detail"},
			},
		},
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := t.TempDir()
	doc := sampleDoc()

	dir, err := NewWriter(base).Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(dir) != "Hello__Demo" {
		t.Errorf("folder = %q", filepath.Base(dir))
	}

	// chunks_array.json holds the bare chunk array.
	var arr []domain.Chunk
	data, err := os.ReadFile(filepath.Join(dir, "chunks_array.json"))
	if err != nil {
		t.Fatalf("read chunks_array.json: %v", err)
	}
	if err := json.Unmarshal(data, &arr); err != nil {
		t.Fatalf("parse chunks_array.json: %v", err)
	}
	if !reflect.DeepEqual(arr, doc.Chunks) {
		t.Error("chunks_array.json does not round-trip the chunks")
	}
	if strings.Contains(string(data), `<`) {
		t.Error("chunks_array.json HTML-escapes text")
	}

	// chunks.jsonl has one object per line.
	data, err = os.ReadFile(filepath.Join(dir, "chunks.jsonl"))
	if err != nil {
		t.Fatalf("read chunks.jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("chunks.jsonl has %d lines, want 2", len(lines))
	}
	var first domain.Chunk
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parse jsonl line: %v", err)
	}
	if first.ID != "amstat-hello-demo-1" {
		t.Errorf("first jsonl id = %q", first.ID)
	}

	// chunks.json is the enriched document.
	var enriched domain.ChunkDocument
	data, err = os.ReadFile(filepath.Join(dir, "chunks.json"))
	if err != nil {
		t.Fatalf("read chunks.json: %v", err)
	}
	if err := json.Unmarshal(data, &enriched); err != nil {
		t.Fatalf("parse chunks.json: %v", err)
	}
	if !reflect.DeepEqual(enriched, doc) {
		t.Error("chunks.json does not round-trip the document")
	}
}

func TestReadChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.jsonl")
	content := `{"id":"a-1","title":"A","source":"s","chunk_text":"hello","metadata":{"timestamp_start":"00:00:01","timestamp_end":"00:00:02","topic":"T"}}

{"id":"a-2","title":"A","source":"s","text":"via text key","metadata":{"timestamp_start":"00:00:02","timestamp_end":"00:00:03","topic":"T"}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	chunks, err := ReadChunks(path)
	if err != nil {
		t.Fatalf("ReadChunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("len(chunks) = %d, want 2 (blank line skipped)", len(chunks))
	}
	if chunks[0].ChunkText != "hello" {
		t.Errorf("chunk 0 text = %q", chunks[0].ChunkText)
	}
	if chunks[1].ChunkText != "via text key" {
		t.Errorf("chunk 1 text = %q, want text-key fallback", chunks[1].ChunkText)
	}
}

func TestReadChunksBadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadChunks(path); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestFindChunkFiles(t *testing.T) {
	root := t.TempDir()
	for _, sub := range []string{"Doc_A", "Doc_B"} {
		dir := filepath.Join(root, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "chunks.jsonl"), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		// Sibling artifacts must not match.
		if err := os.WriteFile(filepath.Join(dir, "chunks.json"), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindChunkFiles(root)
	if err != nil {
		t.Fatalf("FindChunkFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %v", len(files), files)
	}
	if filepath.Base(filepath.Dir(files[0])) != "Doc_A" || filepath.Base(filepath.Dir(files[1])) != "Doc_B" {
		t.Errorf("files out of order: %v", files)
	}
}

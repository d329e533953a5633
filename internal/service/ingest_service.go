package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/adapter/artifact"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/htmldoc"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/transcript"
)

// IngestService turns raw transcript and HTML files into chunk artifacts on
// disk. Semantic chunking is used for transcripts when an AI chunker is
// configured; any failure there falls back to the window strategy.
type IngestService struct {
	semantic     port.Chunker // nil disables semantic chunking
	fallback     port.Chunker
	writer       *artifact.Writer
	chunkSize    int
	chunkOverlap int
}

// NewIngestService creates an ingest service. semantic may be nil.
func NewIngestService(semantic, fallback port.Chunker, writer *artifact.Writer, chunkSize, chunkOverlap int) *IngestService {
	return &IngestService{
		semantic:     semantic,
		fallback:     fallback,
		writer:       writer,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// ProcessFile parses one source file, chunks it and writes the three chunk
// artifacts next to each other under the writer's base directory.
func (s *IngestService) ProcessFile(ctx context.Context, path string) (domain.ChunkDocument, error) {
	var (
		doc domain.TranscriptDocument
		err error
	)
	html := isHTMLPath(path)
	if html {
		doc, err = htmldoc.ParseFile(path)
	} else {
		doc, err = transcript.ParseFile(path)
	}
	if err != nil {
		return domain.ChunkDocument{}, err
	}
	doc.Metadata.ProcessedDate = time.Now().Format(time.RFC3339)

	chunks, strategy, err := s.chunk(ctx, doc, html)
	if err != nil {
		return domain.ChunkDocument{}, err
	}
	slog.Info("document chunked",
		"file", doc.Metadata.SourceFile,
		"strategy", strategy,
		"chunks", len(chunks))

	out := domain.ChunkDocument{
		SourceFile:    doc.Metadata.SourceFile,
		Title:         doc.Metadata.Title,
		URL:           doc.Metadata.URL,
		TotalChunks:   len(chunks),
		ChunkSize:     s.chunkSize,
		ChunkOverlap:  s.chunkOverlap,
		ProcessedDate: doc.Metadata.ProcessedDate,
		Chunks:        chunks,
	}
	dir, err := s.writer.Write(out)
	if err != nil {
		return domain.ChunkDocument{}, fmt.Errorf("write artifacts: %w", err)
	}
	slog.Info("artifacts written", "dir", dir)
	return out, nil
}

// chunk picks the strategy for one document. HTML pages have no timestamps
// for the model to anchor on, so they always take the window path.
func (s *IngestService) chunk(ctx context.Context, doc domain.TranscriptDocument, html bool) ([]domain.Chunk, string, error) {
	if !html && s.semantic != nil {
		chunks, err := s.semantic.Chunk(ctx, doc)
		if err == nil {
			return chunks, s.semantic.Name(), nil
		}
		slog.Warn("semantic chunking failed, using fallback",
			"file", doc.Metadata.SourceFile,
			"error", err)
	}
	chunks, err := s.fallback.Chunk(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("fallback chunking: %w", err)
	}
	return chunks, s.fallback.Name(), nil
}

// ProcessDir processes every transcript and HTML file found directly in dir.
// A file that fails is logged and skipped; the counts of processed and failed
// files are returned.
func (s *IngestService) ProcessDir(ctx context.Context, dir string) (processed, failed int, err error) {
	files, err := listInputFiles(dir)
	if err != nil {
		return 0, 0, err
	}
	if len(files) == 0 {
		slog.Warn("no input files found", "dir", dir)
		return 0, 0, nil
	}
	slog.Info("found input files", "dir", dir, "count", len(files))

	for _, path := range files {
		if _, err := s.ProcessFile(ctx, path); err != nil {
			slog.Error("processing failed", "file", filepath.Base(path), "error", err)
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}

// listInputFiles collects transcript exports and HTML pages in dir, sorted by
// name so runs are deterministic.
func listInputFiles(dir string) ([]string, error) {
	patterns := []string{
		filepath.Join(dir, transcript.FilePrefix+"*.txt"),
		filepath.Join(dir, "*.html"),
		filepath.Join(dir, "*.htm"),
	}
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

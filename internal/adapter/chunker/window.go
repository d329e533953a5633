package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

// WindowChunker splits a document into fixed-size rune windows with overlap,
// cutting at word boundaries where possible. It is fully deterministic and
// needs no AI backend, which makes it the fallback strategy when semantic
// chunking is unavailable or fails.
type WindowChunker struct {
	size      int
	overlap   int
	namespace string
}

// NewWindowChunker creates a window chunking strategy.
func NewWindowChunker(size, overlap int, namespace string) *WindowChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	return &WindowChunker{size: size, overlap: overlap, namespace: namespace}
}

func (c *WindowChunker) Name() string { return "window" }

// Chunk walks the joined transcript text with a sliding window. Each window
// keeps the timestamps of the first and last segment it touches.
func (c *WindowChunker) Chunk(ctx context.Context, doc domain.TranscriptDocument) ([]domain.Chunk, error) {
	if len(doc.Segments) == 0 {
		return nil, fmt.Errorf("window chunker: empty document: %w", port.ErrNoChunks)
	}

	full, index := joinSegments(doc.Segments)
	slug := Slug(doc.Metadata.Title, c.namespace)

	defaultStart := doc.Segments[0].Timestamp
	defaultEnd := doc.Segments[len(doc.Segments)-1].Timestamp

	var chunks []domain.Chunk
	start := 0
	for start < len(full) {
		// end may run past the text; the cursor advance below relies on
		// the unclamped value so the final window terminates the walk.
		end := start + c.size
		sliceEnd := end
		if sliceEnd > len(full) {
			sliceEnd = len(full)
		}

		// Cut at the last space unless that would throw away more than
		// half the window.
		if end < len(full) {
			if cut := lastSpaceIndex(full[start:sliceEnd]); cut > c.size/2 {
				end = start + cut
				sliceEnd = end
			}
		}

		text := strings.TrimSpace(string(full[start:sliceEnd]))
		if text != "" {
			tsStart := orDefault(index.firstAt(start), defaultStart)
			tsEnd := orDefault(index.lastAt(end), defaultEnd)
			chunks = append(chunks, domain.Chunk{
				ID:        fmt.Sprintf("%s-%d", slug, len(chunks)+1),
				Title:     doc.Metadata.Title,
				Source:    doc.Metadata.URL,
				ChunkText: text,
				Metadata: domain.ChunkMetadata{
					TimestampStart: tsStart,
					TimestampEnd:   tsEnd,
					Topic:          doc.Metadata.Title,
				},
			})
		}

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("window chunker: %w", port.ErrNoChunks)
	}
	return chunks, nil
}

// timestampIndex maps rune positions of the joined text back to the
// timestamp of the segment each rune came from. Joining spaces between
// segments are not mapped.
type timestampIndex struct {
	pos []int
	ts  []string
}

func joinSegments(segments []domain.Segment) ([]rune, *timestampIndex) {
	index := &timestampIndex{}
	var full []rune
	for i, seg := range segments {
		if i > 0 {
			full = append(full, ' ')
		}
		offset := len(full)
		runes := []rune(seg.Text)
		full = append(full, runes...)
		for j := range runes {
			index.pos = append(index.pos, offset+j)
			index.ts = append(index.ts, seg.Timestamp)
		}
	}
	return full, index
}

// firstAt returns the timestamp of the first mapped position >= start.
func (x *timestampIndex) firstAt(start int) string {
	i := sort.SearchInts(x.pos, start)
	if i < len(x.pos) {
		return x.ts[i]
	}
	return ""
}

// lastAt returns the timestamp of the last mapped position <= end.
func (x *timestampIndex) lastAt(end int) string {
	i := sort.SearchInts(x.pos, end+1) - 1
	if i >= 0 {
		return x.ts[i]
	}
	return ""
}

func lastSpaceIndex(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' {
			return i
		}
	}
	return -1
}

func orDefault(ts, fallback string) string {
	if ts == "" {
		ts = fallback
	}
	if ts == "" {
		ts = "00:00:00"
	}
	return ts
}

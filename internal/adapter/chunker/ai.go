package chunker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/port"
)

const chunkingSystemPrompt = "You are an expert at analyzing video transcripts and creating meaningful, semantic chunks. " +
	"You identify natural topic boundaries and create descriptive topics. " +
	"Always return valid JSON with a 'chunks' array."

// AIChunker asks the chat model to split a transcript at natural topic
// boundaries. The model is instructed to return a JSON object with a
// "chunks" array, but models are inconsistent about the top-level key, so
// a few envelope shapes are accepted.
type AIChunker struct {
	ai        port.AIProvider
	size      int
	namespace string
}

// NewAIChunker creates a semantic chunking strategy backed by an AI provider.
func NewAIChunker(ai port.AIProvider, size int, namespace string) *AIChunker {
	if size <= 0 {
		size = 1000
	}
	return &AIChunker{ai: ai, size: size, namespace: namespace}
}

func (c *AIChunker) Name() string { return "ai" }

// Chunk sends the timestamped transcript to the model and converts the
// returned chunks into domain chunks. It fails if the model response cannot
// be interpreted or yields zero usable chunks; callers are expected to fall
// back to a deterministic strategy.
func (c *AIChunker) Chunk(ctx context.Context, doc domain.TranscriptDocument) ([]domain.Chunk, error) {
	if len(doc.Segments) == 0 {
		return nil, fmt.Errorf("ai chunker: empty document: %w", port.ErrNoChunks)
	}

	response, err := c.ai.Chat(ctx, port.ChatRequest{
		System:       chunkingSystemPrompt,
		User:         c.buildPrompt(doc),
		Temperature:  0.3,
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ai chunker: %w", err)
	}

	raw, err := parseChunkEnvelope([]byte(response))
	if err != nil {
		return nil, fmt.Errorf("ai chunker: %w", err)
	}

	chunks := c.assemble(doc, raw)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ai chunker: %w", port.ErrNoChunks)
	}
	return chunks, nil
}

func (c *AIChunker) buildPrompt(doc domain.TranscriptDocument) string {
	lines := make([]string, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", seg.Timestamp, seg.Text))
	}

	url := doc.Metadata.URL
	if url == "" {
		url = "N/A"
	}

	return fmt.Sprintf(`Analyze the following video transcript and break it into meaningful semantic chunks. Each chunk should:
1. Represent a complete thought, topic, or concept
2. Have a clear, descriptive topic name (NOT the video title - be specific, e.g., "Client Share Portal Overview", "Managing Licenses", "Aircraft Valuation Tool Features")
3. Include accurate start and end timestamps from the transcript
4. Be comprehensive but focused (aim for %d characters per chunk, but prioritize meaning over length)

Video Title: %s
Source URL: %s

TRANSCRIPT (format: [timestamp] text):
%s

Return a JSON object with a "chunks" array. Each chunk in the array should have this exact structure:
{
  "chunk_text": "The cleaned, well-formatted text content. Remove filler words like 'um', 'uh', 'like' where appropriate. Fix grammar and make it readable.",
  "timestamp_start": "HH:MM:SS",
  "timestamp_end": "HH:MM:SS",
  "topic": "A specific, descriptive topic name for this chunk (e.g., 'Client Share Portal Overview', 'Managing and Increasing Licenses', NOT the video title)"
}

CRITICAL REQUIREMENTS:
- Create meaningful breaks at natural topic boundaries (when the speaker moves to a new topic)
- Each topic must be specific and descriptive (e.g., "Aircraft Valuation Tool Features" NOT "Premier Plus Overview")
- Clean up the text: remove excessive filler words, fix grammar, make it professional
- Use timestamps from the transcript - start timestamp should match the first segment in the chunk, end timestamp should match the last segment
- Break at natural pauses or topic changes, not arbitrary character limits
- Ensure timestamps are accurate and sequential
- Return ONLY valid JSON with a "chunks" array

Return your response as a JSON object with a "chunks" key containing the array:`,
		c.size, doc.Metadata.Title, url, strings.Join(lines, "\n"))
}

// aiChunk is one chunk as the model returns it. Some models answer with a
// "text" key instead of the requested "chunk_text".
type aiChunk struct {
	ChunkText      string `json:"chunk_text"`
	Text           string `json:"text"`
	TimestampStart string `json:"timestamp_start"`
	TimestampEnd   string `json:"timestamp_end"`
	Topic          string `json:"topic"`
}

// envelopeKeys are the accepted top-level keys, tried in order, when the
// model wraps the array in an object.
var envelopeKeys = []string{"chunks", "items", "data", "results"}

func parseChunkEnvelope(raw []byte) ([]aiChunk, error) {
	var list []aiChunk
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: not an array or object", port.ErrBadChunkEnvelope)
	}
	for _, key := range envelopeKeys {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &list); err == nil {
			return list, nil
		}
	}
	return nil, fmt.Errorf("%w: no array under %s", port.ErrBadChunkEnvelope, strings.Join(envelopeKeys, "/"))
}

// assemble turns model chunks into domain chunks. Empty chunks are skipped
// but keep their position in the id sequence.
func (c *AIChunker) assemble(doc domain.TranscriptDocument, raw []aiChunk) []domain.Chunk {
	slug := Slug(doc.Metadata.Title, c.namespace)

	chunks := make([]domain.Chunk, 0, len(raw))
	for i, rc := range raw {
		text := strings.TrimSpace(rc.ChunkText)
		if text == "" {
			text = strings.TrimSpace(rc.Text)
		}
		if text == "" {
			continue
		}

		topic := strings.TrimSpace(rc.Topic)
		if topic == "" {
			topic = doc.Metadata.Title
		}

		chunks = append(chunks, domain.Chunk{
			ID:        fmt.Sprintf("%s-%d", slug, i+1),
			Title:     doc.Metadata.Title,
			Source:    doc.Metadata.URL,
			ChunkText: text,
			Metadata: domain.ChunkMetadata{
				TimestampStart: normalizeTimestamp(rc.TimestampStart),
				TimestampEnd:   normalizeTimestamp(rc.TimestampEnd),
				Topic:          topic,
			},
		})
	}
	return chunks
}

// normalizeTimestamp coerces MM:SS timestamps to HH:MM:SS.
func normalizeTimestamp(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "00:00:00"
	}
	if strings.Count(ts, ":") == 1 {
		return "00:" + ts
	}
	return ts
}

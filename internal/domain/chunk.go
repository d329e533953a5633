package domain

// ChunkMetadata carries the timestamp range and topic label of a chunk.
// Timestamps are HH:MM:SS strings; for well-formed values
// TimestampStart <= TimestampEnd under plain string comparison.
type ChunkMetadata struct {
	TimestampStart string `json:"timestamp_start"`
	TimestampEnd   string `json:"timestamp_end"`
	Topic          string `json:"topic"`
}

// Chunk is a contiguous, semantically bounded span of document text.
// ID is "<namespace>-<slug>-<n>" with n starting at 1; ChunkText is never empty.
type Chunk struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Source    string        `json:"source"`
	ChunkText string        `json:"chunk_text"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// ChunkDocument is the enriched on-disk representation written as chunks.json:
// document-level fields alongside the full chunk array.
type ChunkDocument struct {
	SourceFile    string  `json:"source_file"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	TotalChunks   int     `json:"total_chunks"`
	ChunkSize     int     `json:"chunk_size"`
	ChunkOverlap  int     `json:"chunk_overlap"`
	ProcessedDate string  `json:"processed_date"`
	Chunks        []Chunk `json:"chunks"`
}

package domain

// PointPayload is the payload stored with each vector point. It repeats the
// chunk fields and flattens the timestamp range and topic next to the nested
// metadata so search filters can address them as top-level keys.
type PointPayload struct {
	ChunkID        string        `json:"id"`
	Title          string        `json:"title"`
	Source         string        `json:"source"`
	ChunkText      string        `json:"chunk_text"`
	Metadata       ChunkMetadata `json:"metadata"`
	TimestampStart string        `json:"timestamp_start"`
	TimestampEnd   string        `json:"timestamp_end"`
	Topic          string        `json:"topic"`
	ProcessedDate  string        `json:"processed_date"`
}

// Point is a vector-store record. ID is a sequential integer assigned at push
// time, independent of the chunk's own string id (kept in the payload).
type Point struct {
	ID      uint64       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload PointPayload `json:"payload"`
}

// SearchResult is a read-only projection of a point's payload plus the
// similarity score, produced per query and never persisted.
type SearchResult struct {
	ID             string  `json:"id"`
	Score          float64 `json:"score"`
	ChunkText      string  `json:"chunk_text"`
	Title          string  `json:"title"`
	Source         string  `json:"source"`
	Topic          string  `json:"topic"`
	TimestampStart string  `json:"timestamp_start"`
	TimestampEnd   string  `json:"timestamp_end"`
}

// CollectionInfo summarizes a vector collection.
type CollectionInfo struct {
	PointsCount uint64 `json:"points_count"`
	VectorSize  int    `json:"vector_size"`
	Distance    string `json:"distance"`
}

// Answer is the result of one retrieval-augmented chat turn.
type Answer struct {
	Response string         `json:"response"`
	Sources  []SearchResult `json:"sources"`
}

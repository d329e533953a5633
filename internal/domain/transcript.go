package domain

// Segment is a single timestamped line extracted from a transcript.
// Timestamp is the HH:MM:SS prefix of the source line; Text is the spoken text.
type Segment struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// DocumentMetadata describes one ingested source document.
type DocumentMetadata struct {
	SourceFile    string `json:"source_file"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	ProcessedDate string `json:"processed_date"`
}

// TranscriptDocument is the parsed form of a source document: metadata plus
// its ordered segments. Segments keep source order; they are never reordered.
type TranscriptDocument struct {
	Metadata DocumentMetadata
	Segments []Segment
}

// Package transcript parses timestamped video transcript files into documents
// ready for chunking.
package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
)

// FilePrefix is the exporter prefix stripped from transcript file names when
// deriving titles.
const FilePrefix = "tactiq-free-transcript-"

// segmentRe matches one caption line: an HH:MM:SS.mmm timestamp followed by text.
var segmentRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\.\d{3}\s+(.+)$`)

// TitleFromPath derives a human readable title from a transcript file name:
// the extension and exporter prefix are stripped and underscores become spaces.
func TitleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.ReplaceAll(stem, FilePrefix, "")
	return strings.ReplaceAll(stem, "_", " ")
}

// SafeName sanitizes a title for use as a directory name. Characters other
// than letters, digits, underscores and hyphens are dropped and spaces become
// underscores.
func SafeName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// Parse reads a transcript. Lines of the form "# https://..." carry the video
// URL, lines matching segmentRe become segments, anything else is ignored.
func Parse(r io.Reader, title string) (domain.TranscriptDocument, error) {
	doc := domain.TranscriptDocument{
		Metadata: domain.DocumentMetadata{Title: title},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "# https://") {
			doc.Metadata.URL = strings.ReplaceAll(line, "# ", "")
			continue
		}
		if m := segmentRe.FindStringSubmatch(line); m != nil {
			doc.Segments = append(doc.Segments, domain.Segment{
				Timestamp: m[1],
				Text:      strings.TrimSpace(m[2]),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return domain.TranscriptDocument{}, fmt.Errorf("read transcript: %w", err)
	}
	return doc, nil
}

// ParseFile parses the transcript at path, deriving the title from the file name.
func ParseFile(path string) (domain.TranscriptDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.TranscriptDocument{}, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f, TitleFromPath(path))
	if err != nil {
		return domain.TranscriptDocument{}, err
	}
	doc.Metadata.SourceFile = filepath.Base(path)
	return doc, nil
}

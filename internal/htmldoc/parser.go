// Package htmldoc extracts readable text from HTML pages so they can flow
// through the same chunking pipeline as transcripts. HTML carries no timing
// information, so segments are produced without timestamps.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
)

// blockTags delimit text blocks; a flush happens on entry and exit.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true,
	"td": true, "th": true, "br": true, "blockquote": true, "pre": true,
	"header": true, "footer": true, "main": true, "nav": true,
}

// Parse extracts the document title, canonical URL and visible text blocks.
// Each text block becomes one segment with an empty timestamp.
func Parse(r io.Reader, fallbackTitle string) (domain.TranscriptDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return domain.TranscriptDocument{}, fmt.Errorf("parse html: %w", err)
	}

	var (
		title  string
		url    string
		blocks []string
		buf    strings.Builder
	)
	flush := func() {
		text := collapse(buf.String())
		buf.Reset()
		if text != "" {
			blocks = append(blocks, text)
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "title":
				if title == "" {
					title = collapse(textContent(n))
				}
				return
			case "link":
				if attr(n, "rel") == "canonical" && url == "" {
					url = attr(n, "href")
				}
				return
			}
			if blockTags[n.Data] {
				flush()
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			flush()
		}
	}
	walk(root)
	flush()

	if title == "" {
		title = fallbackTitle
	}
	doc := domain.TranscriptDocument{
		Metadata: domain.DocumentMetadata{Title: title, URL: url},
	}
	for _, b := range blocks {
		doc.Segments = append(doc.Segments, domain.Segment{Text: b})
	}
	return doc, nil
}

// ParseFile parses the HTML document at path. The file name serves as the
// title when the document has no <title> element.
func ParseFile(path string) (domain.TranscriptDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.TranscriptDocument{}, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := Parse(f, strings.ReplaceAll(stem, "_", " "))
	if err != nil {
		return domain.TranscriptDocument{}, err
	}
	doc.Metadata.SourceFile = filepath.Base(path)
	return doc, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

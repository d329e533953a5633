package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// slugStopWords are filler words skipped when deriving a slug from a title.
var slugStopWords = map[string]struct{}{
	"how": {}, "many": {}, "can": {}, "i": {}, "share": {}, "a": {}, "an": {},
	"the": {}, "with": {}, "what": {}, "does": {}, "is": {}, "are": {},
	"do": {}, "you": {}, "your": {}, "my": {}, "me": {}, "we": {},
	"to": {}, "for": {}, "of": {}, "in": {}, "on": {}, "at": {}, "by": {},
}

// Slug derives a short identifier from a document title: the first two
// meaningful words, lowercased and hyphenated, prefixed with the namespace.
// Chunk ids are built as "<slug>-<n>".
func Slug(title, namespace string) string {
	lower := strings.ToLower(title)

	var meaningful []string
	for _, w := range splitWords(lower) {
		if _, stop := slugStopWords[w]; stop || utf8.RuneCountInString(w) <= 2 {
			continue
		}
		meaningful = append(meaningful, w)
		if len(meaningful) == 2 {
			break
		}
	}

	slug := strings.Join(meaningful, "-")
	if slug == "" {
		slug = rawSlug(lower)
	}

	if !strings.HasPrefix(slug, namespace+"-") {
		slug = namespace + "-" + slug
	}
	return slug
}

// rawSlug is the fallback for titles with no meaningful words: strip
// punctuation and keep up to the first three tokens.
func rawSlug(lower string) string {
	var b strings.Builder
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "-")
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

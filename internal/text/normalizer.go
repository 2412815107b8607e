package text

import (
	"regexp"
	"strings"
)

// Metadata holds the fields recognized in a document's header block, plus
// the per-chunk bookkeeping filled in during ingestion. Missing header keys
// stay as zero values; absence is never an error.
type Metadata struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Site      string `json:"site"`
	Topic     string `json:"topic"`
	Filename  string `json:"filename"`
	WordCount int    `json:"chunk_length"`
}

// headerPrefixes are the line prefixes stripped from the body. Category: is
// removed but not captured as a metadata field.
var headerPrefixes = []string{"Title:", "Source:", "Site:", "Topic:", "Category:"}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Keep word characters, whitespace and basic punctuation. Note: Go's \w
	// is ASCII-only, so non-Latin scripts (e.g. Arabic) are stripped here.
	// That mirrors the calibrated behavior of the upstream ingest pipeline
	// and is kept for parity rather than fixed.
	specialsRe = regexp.MustCompile(`[^\w\s.,;:!?()\-]`)
)

// ParseHeader scans the first 10 lines for Title:/Source:/Site:/Topic:
// key-value pairs. Prefix match is case-sensitive and exact; unrecognized
// lines are ignored.
func ParseHeader(raw string) Metadata {
	var meta Metadata

	lines := strings.Split(raw, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Title:"):
			meta.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		case strings.HasPrefix(line, "Source:"):
			meta.Source = strings.TrimSpace(strings.TrimPrefix(line, "Source:"))
		case strings.HasPrefix(line, "Site:"):
			meta.Site = strings.TrimSpace(strings.TrimPrefix(line, "Site:"))
		case strings.HasPrefix(line, "Topic:"):
			meta.Topic = strings.TrimSpace(strings.TrimPrefix(line, "Topic:"))
		}
	}

	return meta
}

// StripHeader removes every line carrying a recognized header prefix from
// the document body.
func StripHeader(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		isHeader := false
		for _, prefix := range headerPrefixes {
			if strings.HasPrefix(line, prefix) {
				isHeader = true
				break
			}
		}
		if !isHeader {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

// Clean collapses whitespace runs (including newlines) to single spaces,
// strips characters outside the retained whitelist and trims the result.
func Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Normalize turns a raw document into cleaned passage text plus its parsed
// header metadata.
func Normalize(raw string) (string, Metadata) {
	meta := ParseHeader(raw)
	cleaned := Clean(StripHeader(raw))
	return cleaned, meta
}

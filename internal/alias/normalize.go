package alias

import (
	"regexp"
	"strings"
)

var (
	// Word characters across all scripts; \w alone would strip every
	// non-ASCII letter.
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes free text for alias matching: lowercase, strip
// everything that is not a word character or whitespace, collapse runs of
// whitespace, trim. Blank input yields the empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := strings.ToLower(raw)
	text = nonWordRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

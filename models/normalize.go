package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeLawName canonicalizes a statute name for exact-match lookups:
// NFKC composition, full-width to half-width folding, and removal of spaces
// and interpunct separators. The operation is idempotent, so a stored
// normalized key matches regardless of how the query was formatted.
func NormalizeLawName(name string) string {
	s := width.Fold.String(norm.NFKC.String(strings.TrimSpace(name)))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '·' || r == '・' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeArticleNumber reduces an article reference to its bare digits:
// "제38조" → "38", "３８" → "38", " 38 " → "38".
func NormalizeArticleNumber(article string) string {
	s := width.Fold.String(norm.NFKC.String(article))
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

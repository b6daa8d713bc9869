package security

import (
	"strings"
	"unicode"
)

const (
	// MaxSearchQueryLength defines the maximum number of runes kept from a search query
	MaxSearchQueryLength = 100
)

// NormalizeSearchQuery trims the query, drops control characters and caps its
// length. It never fails: anything left is matched literally.
func NormalizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if unicode.IsControl(r) {
			continue
		}
		if n == MaxSearchQueryLength {
			break
		}
		b.WriteRune(r)
		n++
	}

	return strings.TrimSpace(b.String())
}

// EscapeLike escapes LIKE wildcards so the query matches literally.
// Use with ESCAPE '\'.
func EscapeLike(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}

package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// HashContent returns the hex SHA-256 of content, or "" for empty input.
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// TruncateString shortens s to at most limit runes, marking the cut with "...".
// A limit of zero or less disables truncation.
func TruncateString(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 3 {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-3]) + "..."
}

package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Location pinpoints a position in source text.
type Location struct {
	Source string // File name or other label; may be empty
	Offset int    // Byte offset (0-based)
	Line   int    // Line number (1-based)
	Column int    // Column in runes (1-based)
}

// Locate converts a byte offset in src into a Location. Offsets outside
// the text are clamped.
func Locate(src string, offset int) Location {
	offset = max(0, min(offset, len(src)))

	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1

	return Location{
		Offset: offset,
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
	}
}

// String formats the location as "source:line:column".
func (l Location) String() string {
	source := l.Source
	if source == "" {
		source = "<input>"
	}
	if l.Line == 0 {
		return source
	}
	return fmt.Sprintf("%s:%d:%d", source, l.Line, l.Column)
}

// IsValid returns true if the location has line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}

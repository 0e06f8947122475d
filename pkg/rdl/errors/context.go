package errors

import (
	"fmt"
	"strings"
)

// Snippet extracts up to contextLines lines on either side of loc from src
// and marks the error line and column.
//
//	   1 | (
//	-> 2 |   a 1,
//	     |   ^
//	   3 | )
func Snippet(src string, loc Location, contextLines int) string {
	if !loc.IsValid() {
		return ""
	}

	lines := strings.Split(src, "\n")
	errorLine := loc.Line - 1
	if errorLine >= len(lines) {
		return ""
	}
	start := max(0, errorLine-contextLines)
	end := min(len(lines)-1, errorLine+contextLines)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", end+1))

	for i := start; i <= end; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		fmt.Fprintf(&sb, "%s %*d | %s\n", prefix, width, i+1, lines[i])

		if i == errorLine {
			fmt.Fprintf(&sb, "   %s | %s^\n", strings.Repeat(" ", width), caretPadding(lines[i], loc.Column))
		}
	}

	return sb.String()
}

// caretPadding keeps tabs so the caret lines up under tab-indented text.
func caretPadding(line string, column int) string {
	var sb strings.Builder
	n := 1
	for _, r := range line {
		if n >= column {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		n++
	}
	for ; n < column; n++ {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// WithContext attaches a source snippet around the error location.
func WithContext(err *ParseError, src string, contextLines int) *ParseError {
	if err.Location.IsValid() {
		err.Context = Snippet(src, err.Location, contextLines)
	}
	return err
}

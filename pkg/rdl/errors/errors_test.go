package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestLocate(t *testing.T) {
	src := "(\n  a 1,\n  b \"héllo\" x\n)"

	tests := []struct {
		name   string
		offset int
		line   int
		column int
	}{
		{"start", 0, 1, 1},
		{"second line", 4, 2, 3},
		{"after multibyte rune", strings.Index(src, "x"), 3, 13},
		{"end of input", len(src), 4, 2},
		{"clamped past end", len(src) + 10, 4, 2},
		{"clamped negative", -3, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := Locate(src, tt.offset)
			if loc.Line != tt.line || loc.Column != tt.column {
				t.Errorf("Locate(%d) = %d:%d, want %d:%d", tt.offset, loc.Line, loc.Column, tt.line, tt.column)
			}
		})
	}
}

func TestLocation_String(t *testing.T) {
	loc := Location{Source: "doc.rdl", Offset: 5, Line: 2, Column: 3}
	if got := loc.String(); got != "doc.rdl:2:3" {
		t.Errorf("String() = %q", got)
	}
	if got := (Location{Line: 1, Column: 1}).String(); got != "<input>:1:1" {
		t.Errorf("String() without source = %q", got)
	}
}

func TestParseError_Error(t *testing.T) {
	src := "(a 1,\n a 2)"
	err := New(KindSemantic, ErrDuplicateField, src, 7, "duplicate field %q", "a").WithSource("doc.rdl")
	WithContext(err, src, 1)

	msg := err.Error()
	for _, want := range []string{
		"[semantic] duplicate field \"a\"",
		"--> doc.rdl:2:2",
		"-> 2 |  a 2)",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() missing %q:\n%s", want, msg)
		}
	}

	if got := err.Short(); got != `doc.rdl:2:2: duplicate field "a"` {
		t.Errorf("Short() = %q", got)
	}
}

func TestParseError_Is(t *testing.T) {
	err := New(KindSyntax, ErrTrailingInput, "1 2", 2, "trailing")
	wrapped := fmt.Errorf("loading: %w", err)

	if !stderrors.Is(wrapped, ErrTrailingInput) {
		t.Error("errors.Is did not find the sentinel")
	}
	pe, ok := AsParseError(wrapped)
	if !ok || pe.Location.Offset != 2 {
		t.Errorf("AsParseError = %v, %v", pe, ok)
	}
}

func TestParseError_Shift(t *testing.T) {
	outer := "Default((a 1, a 2))"
	inner := "(a 1, a 2)"
	err := New(KindSemantic, ErrDuplicateField, inner, 6, "dup").WithSource("s.schema")
	err.Shift(outer, 8)

	if err.Location.Offset != 14 || err.Location.Column != 15 || err.Location.Source != "s.schema" {
		t.Errorf("Shift() location = %+v", err.Location)
	}
}

func TestSnippet(t *testing.T) {
	src := "one\n\ttwo x\nthree"
	got := Snippet(src, Locate(src, strings.Index(src, "x")), 1)
	want := "   1 | one\n-> 2 | \ttwo x\n     | \t    ^\n   3 | three\n"
	if got != want {
		t.Errorf("Snippet() =\n%q\nwant\n%q", got, want)
	}
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		unknown    string
		candidates []string
		want       string
	}{
		{"Ture", []string{"True", "False", "None"}, "Did you mean 'True'?"},
		{"close_prise", []string{"close_price", "symbol"}, "Did you mean 'close_price'?"},
		{"Badly", []string{"True", "False", "None"}, "Valid names: True, False, None"},
		{"x", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.unknown, func(t *testing.T) {
			if got := SuggestName(tt.unknown, tt.candidates); got != tt.want {
				t.Errorf("SuggestName(%q) = %q, want %q", tt.unknown, got, tt.want)
			}
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

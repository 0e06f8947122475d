package lexer

import (
	"slices"
	"testing"
)

type tok struct {
	kind TokenKind
	text string
}

func collect(src string) []tok {
	var out []tok
	for t := range Tokens(src) {
		out = append(out, tok{t.Kind, t.Text(src)})
	}
	return out
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{
			name:  "punctuation",
			input: "()[]{},|",
			want: []tok{
				{ParenL, "("}, {ParenR, ")"}, {SquareL, "["}, {SquareR, "]"},
				{CurlyL, "{"}, {CurlyR, "}"}, {Comma, ","}, {Pipe, "|"},
			},
		},
		{
			name:  "object with comment",
			input: "(\n  symbol \"AAPL\", # Apple Inc\n  close_price 100.27,\n)",
			want: []tok{
				{ParenL, "("},
				{Field, "symbol"}, {String, `"AAPL"`}, {Comma, ","}, {Comment, "# Apple Inc"},
				{Field, "close_price"}, {Float, "100.27"}, {Comma, ","},
				{ParenR, ")"},
			},
		},
		{
			name:  "numbers",
			input: "100_000 -5 0.27 -1.5 .5 1_0.0_1",
			want: []tok{
				{Integer, "100_000"}, {Integer, "-5"}, {Float, "0.27"},
				{Float, "-1.5"}, {Float, ".5"}, {Float, "1_0.0_1"},
			},
		},
		{
			name:  "keywords and fields",
			input: "True False None Badly some_field x2",
			want: []tok{
				{Keyword, "True"}, {Keyword, "False"}, {Keyword, "None"},
				{Keyword, "Badly"}, {Field, "some_field"}, {Field, "x2"},
			},
		},
		{
			name:  "string with unicode and hash",
			input: `"AAPL💀 # not a comment"`,
			want:  []tok{{String, `"AAPL💀 # not a comment"`}},
		},
		{
			name:  "unterminated string runs to end",
			input: `("abc`,
			want:  []tok{{ParenL, "("}, {String, `"abc`}},
		},
		{
			name:  "comment at end of input",
			input: "1 # trailing",
			want:  []tok{{Integer, "1"}, {Comment, "# trailing"}},
		},
		{
			name:  "invalid character stops the stream",
			input: "(a $ b c)",
			want:  []tok{{ParenL, "("}, {Field, "a"}, {Invalid, "$"}},
		},
		{
			name:  "two dots is invalid",
			input: "[1.2.3, 4]",
			want:  []tok{{SquareL, "["}, {Invalid, "1.2.3"}},
		},
		{
			name:  "misplaced minus is invalid",
			input: "1-2 3",
			want:  []tok{{Invalid, "1-2"}},
		},
		{
			name:  "lone minus is invalid",
			input: "- 1",
			want:  []tok{{Invalid, "-"}},
		},
		{
			name:  "carriage return is invalid",
			input: "(a 1,\r\n b 2)",
			want:  []tok{{ParenL, "("}, {Field, "a"}, {Integer, "1"}, {Comma, ","}, {Invalid, "\r"}},
		},
		{
			name:  "leading underscore is not a number",
			input: "[_1]",
			want:  []tok{{SquareL, "["}, {Invalid, "_"}},
		},
		{
			name:  "empty input",
			input: " \t\n ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tokens(%q)\n got: %v\nwant: %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLexer_PeekDoesNotConsume(t *testing.T) {
	l := New("(a 1)")

	first := l.Peek()
	if again := l.Peek(); again != first {
		t.Fatalf("Peek() = %v, then %v", first, again)
	}
	if next := l.Next(); next != first {
		t.Fatalf("Next() = %v, want %v", next, first)
	}
	if got := l.Next(); got.Kind != Field || got.Start != 1 || got.End != 2 {
		t.Errorf("second token = %#v, want field at [1,2)", got)
	}
}

func TestLexer_EndOfStreamIsSticky(t *testing.T) {
	l := New("1")
	l.Next()

	for i := 0; i < 3; i++ {
		tok := l.Next()
		if tok.Kind != EndOfStream {
			t.Fatalf("Next() #%d kind = %v, want EndOfStream", i, tok.Kind)
		}
		if tok.Start != 1 || tok.End != 1 {
			t.Errorf("EndOfStream at [%d,%d), want [1,1)", tok.Start, tok.End)
		}
	}
}

func TestLexer_NothingAfterInvalid(t *testing.T) {
	l := New("@ (a 1)")

	if tok := l.Next(); tok.Kind != Invalid || tok.Start != 0 {
		t.Fatalf("first token = %#v, want Invalid at 0", tok)
	}
	if tok := l.Next(); tok.Kind != EndOfStream {
		t.Errorf("token after Invalid = %v, want EndOfStream", tok.Kind)
	}
}

func TestLexer_InvalidMultibyteRune(t *testing.T) {
	src := "é"
	l := New(src)
	tok := l.Next()
	if tok.Kind != Invalid || tok.Text(src) != "é" {
		t.Errorf("token = %#v (%q), want Invalid covering the whole rune", tok, tok.Text(src))
	}
}

func TestSkipComments(t *testing.T) {
	src := "# header\n(a 1, # one\n b 2) # done"
	s := SkipComments(New(src))

	var kinds []TokenKind
	for {
		tok := s.Next()
		if tok.Kind == EndOfStream {
			break
		}
		kinds = append(kinds, tok.Kind)
	}

	want := []TokenKind{ParenL, Field, Integer, Comma, Field, Integer, ParenR}
	if !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestWithoutComments(t *testing.T) {
	src := "[1, # c\n2]"
	var texts []string
	for tok := range WithoutComments(Tokens(src)) {
		texts = append(texts, tok.Text(src))
	}
	want := []string{"[", "1", ",", "2", "]"}
	if !slices.Equal(texts, want) {
		t.Errorf("texts = %v, want %v", texts, want)
	}
}

func TestTokens_StopsEarly(t *testing.T) {
	count := 0
	for range Tokens("[1, 2, 3, 4]") {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestTokensCoverInput(t *testing.T) {
	src := "(a 1,\tb [2.5, \"x\"]) # end"
	prev := 0
	for tok := range Tokens(src) {
		for _, c := range src[prev:tok.Start] {
			if c != ' ' && c != '\t' && c != '\n' {
				t.Fatalf("gap [%d,%d) contains %q", prev, tok.Start, c)
			}
		}
		prev = tok.End
	}
	if prev != len(src) {
		t.Errorf("last token ends at %d, want %d", prev, len(src))
	}
}

func TestTokenKind_String(t *testing.T) {
	for k := ParenL; k <= EndOfStream; k++ {
		if k.String() == "" {
			t.Errorf("TokenKind(%d).String() is empty", k)
		}
	}
}

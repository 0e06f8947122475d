package parser

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/value"
)

func mustParse(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return v
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  value.Value
	}{
		{"100_000", value.Integer(100000)},
		{"100000", value.Integer(100000)},
		{"-42", value.Integer(-42)},
		{"0.27", value.Float(0.27)},
		{"-1_000.5", value.Float(-1000.5)},
		{".5", value.Float(0.5)},
		{"7.", value.Float(7)},
		{"-9223372036854775808", value.Integer(math.MinInt64)},
		{`"AAPL"`, value.String("AAPL")},
		{`""`, value.String("")},
		{`"a # b"`, value.String("a # b")},
		{"True", value.Boolean(true)},
		{"False", value.Boolean(false)},
		{"None", value.None{}},
		{"  # leading comment\n 1 # trailing", value.Integer(1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := mustParse(t, tt.input)
			if !value.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Containers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"[]", "[]"},
		{"()", "()"},
		{"[1, 2, 3,]", "[1, 2, 3]"},
		{"[[1], [], [[2.5]]]", "[[1], [], [[2.5]]]"},
		{"(a 1,)", "(a 1)"},
		{"(a (b (c [None])))", "(a (b (c [None])))"},
		{"(b 1, a 2)", "(a 2, b 1)"},
		{"(zeta 1, alpha 2, mid_name 3)", "(alpha 2, mid_name 3, zeta 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := value.MustFormat(mustParse(t, tt.input))
			if got != tt.want {
				t.Errorf("Parse(%q) formats as %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_FieldOrderIndependent(t *testing.T) {
	a := mustParse(t, "(b 1, a 2)")
	b := mustParse(t, "(a 2, b 1)")
	if !value.Equal(a, b) {
		t.Errorf("(b 1, a 2) = %v, (a 2, b 1) = %v", a, b)
	}
	if names := a.(value.Object).Names(); names[0] != "a" || names[1] != "b" {
		t.Errorf("field order = %v, want [a b]", names)
	}
}

func TestParse_CommentsTransparent(t *testing.T) {
	a := mustParse(t, "(a 1, # comment\n b 2)")
	b := mustParse(t, "(a 1, b 2)")
	if !value.Equal(a, b) {
		t.Errorf("with comment = %v, without = %v", a, b)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sentinel error
		kind     rdlerrors.Kind
		offset   int
		contains string
	}{
		{"duplicate field at second occurrence", "(a 1, a 2)", rdlerrors.ErrDuplicateField, rdlerrors.KindSemantic, 6, `"a"`},
		{"duplicate reported after sorting", "(b 1, a 2, b 3)", rdlerrors.ErrDuplicateField, rdlerrors.KindSemantic, 11, `"b"`},
		{"capitalized field name", "(Abc 1)", rdlerrors.ErrInvalidFieldName, rdlerrors.KindSemantic, 1, `"Abc"`},
		{"digit in field name", "(a 1, x2 2)", rdlerrors.ErrInvalidFieldName, rdlerrors.KindSemantic, 6, `"x2"`},
		{"unknown keyword", "Badly", rdlerrors.ErrUnknownKeyword, rdlerrors.KindSemantic, 0, `"Badly"`},
		{"unknown keyword in list", "[True, Nil]", rdlerrors.ErrUnknownKeyword, rdlerrors.KindSemantic, 7, `"Nil"`},
		{"trailing field", "(a 1) extra", rdlerrors.ErrTrailingInput, rdlerrors.KindSyntax, 6, `"extra"`},
		{"two top-level values", "1 2", rdlerrors.ErrTrailingInput, rdlerrors.KindSyntax, 2, "expected end of input"},
		{"empty input", "", rdlerrors.ErrUnexpectedEOF, rdlerrors.KindSyntax, 0, "expected a value"},
		{"only a comment", "# nothing", rdlerrors.ErrUnexpectedEOF, rdlerrors.KindSyntax, 9, "expected a value"},
		{"unclosed list", "[1, 2", rdlerrors.ErrUnexpectedEOF, rdlerrors.KindSyntax, 5, "',' or ']'"},
		{"unclosed object", "(a 1", rdlerrors.ErrUnexpectedEOF, rdlerrors.KindSyntax, 4, "',' or ')'"},
		{"missing comma", "[1 2]", rdlerrors.ErrUnexpectedToken, rdlerrors.KindSyntax, 3, "',' or ']'"},
		{"missing value", "(a)", rdlerrors.ErrUnexpectedToken, rdlerrors.KindSyntax, 2, "expected a value"},
		{"value in key position", "(1 2)", rdlerrors.ErrUnexpectedToken, rdlerrors.KindSyntax, 1, "field name"},
		{"double comma", "[1,,2]", rdlerrors.ErrUnexpectedToken, rdlerrors.KindSyntax, 3, "expected a value"},
		{"mismatched close", "[1)", rdlerrors.ErrUnexpectedToken, rdlerrors.KindSyntax, 2, "',' or ']'"},
		{"stray pipe", "|", rdlerrors.ErrUnexpectedToken, rdlerrors.KindSyntax, 0, "'|'"},
		{"invalid character", "(a $)", rdlerrors.ErrInvalidToken, rdlerrors.KindLexical, 3, `"$"`},
		{"invalid after value", "1 @", rdlerrors.ErrInvalidToken, rdlerrors.KindLexical, 2, `"@"`},
		{"carriage return", "(a 1,\r\n b 2)\r", rdlerrors.ErrInvalidToken, rdlerrors.KindLexical, 5, `"\r"`},
		{"leading underscore", "_1", rdlerrors.ErrInvalidToken, rdlerrors.KindLexical, 0, `"_"`},
		{"malformed number", "[1.2.3]", rdlerrors.ErrInvalidToken, rdlerrors.KindLexical, 1, "malformed number"},
		{"misplaced minus", "1-2", rdlerrors.ErrInvalidToken, rdlerrors.KindLexical, 0, "malformed number"},
		{"unterminated string", `(a "abc`, rdlerrors.ErrUnterminatedString, rdlerrors.KindLexical, 3, "unterminated"},
		{"lone quote", `"`, rdlerrors.ErrUnterminatedString, rdlerrors.KindLexical, 0, "unterminated"},
		{"integer overflow", "9223372036854775808", rdlerrors.ErrInvalidNumber, rdlerrors.KindSyntax, 0, "64 bits"},
		{"float overflow", "1" + strings.Repeat("0", 400) + ".0", rdlerrors.ErrInvalidNumber, rdlerrors.KindSyntax, 0, "invalid float"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}

			pe, ok := rdlerrors.AsParseError(err)
			if !ok {
				t.Fatalf("error is %T, want *ParseError", err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", pe.Kind, tt.kind)
			}
			if pe.Location.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", pe.Location.Offset, tt.offset)
			}
			if !strings.Contains(pe.Message, tt.contains) {
				t.Errorf("Message = %q, want it to contain %q", pe.Message, tt.contains)
			}
		})
	}
}

func TestParse_Suggestions(t *testing.T) {
	_, err := Parse("[Ture]")
	pe, _ := rdlerrors.AsParseError(err)
	if pe == nil || pe.Suggestion != "Did you mean 'True'?" {
		t.Errorf("Suggestion = %v", pe)
	}

	_, err = Parse("(Close_price 1)")
	pe, _ = rdlerrors.AsParseError(err)
	if pe == nil || pe.Suggestion != "use 'close_price'" {
		t.Errorf("Suggestion = %v", pe)
	}
}

func TestParser_MaxDepth(t *testing.T) {
	deep := strings.Repeat("[", 5) + strings.Repeat("]", 5)

	if _, err := NewParser().WithMaxDepth(5).Parse(deep); err != nil {
		t.Errorf("depth 5 with limit 5 failed: %v", err)
	}

	_, err := NewParser().WithMaxDepth(4).Parse(deep)
	if !errors.Is(err, rdlerrors.ErrMaxDepth) {
		t.Fatalf("error = %v, want ErrMaxDepth", err)
	}
	if pe, _ := rdlerrors.AsParseError(err); pe.Location.Offset != 4 {
		t.Errorf("Offset = %d, want 4", pe.Location.Offset)
	}
}

func TestParser_MaxSize(t *testing.T) {
	_, err := NewParser().WithMaxSize(4).Parse("[1, 2]")
	if !errors.Is(err, rdlerrors.ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}

func TestParser_ErrorContext(t *testing.T) {
	src := "(\n  a 1,\n  a 2,\n)"
	_, err := NewParser().WithSourceName("dup.rdl").Parse(src)
	pe, ok := rdlerrors.AsParseError(err)
	if !ok {
		t.Fatalf("error = %v", err)
	}

	if pe.Location.String() != "dup.rdl:3:3" {
		t.Errorf("Location = %s, want dup.rdl:3:3", pe.Location)
	}
	if !strings.Contains(pe.Context, "-> 3 |   a 2,") {
		t.Errorf("Context = %q", pe.Context)
	}

	_, err = NewParser().WithContextLines(0).Parse(src)
	if pe, _ := rdlerrors.AsParseError(err); pe.Context != "" {
		t.Errorf("Context with 0 lines = %q", pe.Context)
	}
}

func TestParseFile_Valid(t *testing.T) {
	v, err := ParseFile("testdata/valid/stock.rdl")
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	obj, ok := v.(value.Object)
	if !ok {
		t.Fatalf("root is %T, want Object", v)
	}

	want := []string{"address", "close_price", "delisted", "financials", "past_prices", "symbol"}
	names := obj.Names()
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", names, want)
	}

	if sym, _ := obj.Get("symbol"); sym != value.String("AAPL💀💀") {
		t.Errorf("symbol = %#v", sym)
	}
	fin, _ := obj.Get("financials")
	if rev, _ := fin.(value.Object).Get("revenue"); rev != value.Integer(100000) {
		t.Errorf("financials.revenue = %#v", rev)
	}
	prices, _ := obj.Get("past_prices")
	if l := prices.(value.List); len(l) != 3 || l[2] != value.Float(110.17) {
		t.Errorf("past_prices = %#v", prices)
	}

	if _, err := ParseFile("testdata/valid/empty.rdl"); err != nil {
		t.Errorf("empty.rdl failed: %v", err)
	}
}

func TestParseFile_Invalid(t *testing.T) {
	tests := []struct {
		file     string
		sentinel error
		line     int
	}{
		{"testdata/invalid/duplicate.rdl", rdlerrors.ErrDuplicateField, 4},
		{"testdata/invalid/unclosed.rdl", rdlerrors.ErrUnexpectedEOF, 4},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			_, err := ParseFile(tt.file)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("error = %v, want %v", err, tt.sentinel)
			}
			pe, _ := rdlerrors.AsParseError(err)
			if pe.Location.Source != tt.file || pe.Location.Line != tt.line {
				t.Errorf("Location = %s, want %s line %d", pe.Location, tt.file, tt.line)
			}
		})
	}
}

func TestParseFile_IO(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.rdl"))
	pe, ok := rdlerrors.AsParseError(err)
	if !ok || pe.Kind != rdlerrors.KindIO {
		t.Errorf("error = %v, want io ParseError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not wrap os.ErrNotExist: %v", err)
	}

	big := filepath.Join(t.TempDir(), "big.rdl")
	if err := os.WriteFile(big, []byte("[1, 2, 3]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewParser().WithMaxSize(3).ParseFile(big); !errors.Is(err, rdlerrors.ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"(a 1, b [1.5, \"x\", None, True, False], c (d ()), e [])",
		"[-0.25, 100_000, 3.0, \"héllo\"]",
		"(symbol \"AAPL\", close_price 100.27)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v := mustParse(t, input)

			for _, printer := range []func(value.Value) (string, error){
				value.Format,
				func(v value.Value) (string, error) { return value.Indent(v, "\t") },
			} {
				text, err := printer(v)
				if err != nil {
					t.Fatalf("print failed: %v", err)
				}
				back := mustParse(t, text)
				if !value.Equal(v, back) {
					t.Errorf("round trip of %q via %q = %v", input, text, back)
				}
			}
		})
	}
}

package parser

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/lexer"
	"mercator-hq/rdl/pkg/rdl/value"
)

var keywords = []string{"True", "False", "None"}

// decoder holds the state of one parse: the token cursor and the current
// nesting depth. It returns *rdlerrors.ParseError for every failure.
type decoder struct {
	src      string
	toks     lexer.TokenStream
	depth    int
	maxDepth int
}

func newDecoder(src string, maxDepth int) *decoder {
	return &decoder{
		src:      src,
		toks:     lexer.SkipComments(lexer.New(src)),
		maxDepth: maxDepth,
	}
}

// document parses one value and requires the input to end after it.
func (d *decoder) document() (value.Value, error) {
	v, err := d.value()
	if err != nil {
		return nil, err
	}

	tok := d.toks.Next()
	switch tok.Kind {
	case lexer.EndOfStream:
		return v, nil
	case lexer.Invalid:
		return nil, d.invalid(tok)
	default:
		return nil, d.errorf(rdlerrors.KindSyntax, rdlerrors.ErrTrailingInput, tok.Start,
			"expected end of input, found %s %q", tok.Kind, tok.Text(d.src))
	}
}

func (d *decoder) value() (value.Value, error) {
	tok := d.toks.Next()

	switch tok.Kind {
	case lexer.SquareL:
		return d.list(tok)
	case lexer.ParenL:
		return d.object(tok)
	case lexer.Integer:
		return d.intLiteral(tok)
	case lexer.Float:
		return d.floatLiteral(tok)
	case lexer.String:
		return d.stringLiteral(tok)
	case lexer.Keyword:
		return d.keyword(tok)
	default:
		return nil, d.unexpected(tok, "a value")
	}
}

func (d *decoder) list(open lexer.Token) (value.Value, error) {
	if err := d.enter(open); err != nil {
		return nil, err
	}
	defer d.leave()

	items := value.List{}
	for {
		if d.toks.Peek().Kind == lexer.SquareR {
			d.toks.Next()
			return items, nil
		}

		v, err := d.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		sep := d.toks.Next()
		switch sep.Kind {
		case lexer.Comma:
		case lexer.SquareR:
			return items, nil
		default:
			return nil, d.unexpected(sep, "',' or ']'")
		}
	}
}

// entry is an object field as written, before sorting and validation.
type entry struct {
	name  string
	tok   lexer.Token
	value value.Value
}

func (d *decoder) object(open lexer.Token) (value.Value, error) {
	if err := d.enter(open); err != nil {
		return nil, err
	}
	defer d.leave()

	var entries []entry
	for {
		name := d.toks.Next()
		if name.Kind == lexer.ParenR {
			break
		}
		// Keywords are accepted here so that a capitalized name is reported
		// as an invalid field name rather than a misplaced token.
		if name.Kind != lexer.Field && name.Kind != lexer.Keyword {
			return nil, d.unexpected(name, "a field name or ')'")
		}

		v, err := d.value()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: name.Text(d.src), tok: name, value: v})

		sep := d.toks.Next()
		if sep.Kind == lexer.ParenR {
			break
		}
		if sep.Kind != lexer.Comma {
			return nil, d.unexpected(sep, "',' or ')'")
		}
	}

	return d.fields(entries)
}

// fields sorts entries by name and then checks them in sorted order, so
// a duplicate is reported at its later occurrence.
func (d *decoder) fields(entries []entry) (value.Object, error) {
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(a.name, b.name)
	})

	obj := make(value.Object, len(entries))
	for i, e := range entries {
		if !value.IsFieldName(e.name) {
			return nil, d.errorf(rdlerrors.KindSemantic, rdlerrors.ErrInvalidFieldName, e.tok.Start,
				"invalid field name %q: field names may contain only lowercase letters and underscores", e.name).
				WithSuggestion(snakeSuggestion(e.name))
		}
		if i > 0 && entries[i-1].name == e.name {
			return nil, d.errorf(rdlerrors.KindSemantic, rdlerrors.ErrDuplicateField, e.tok.Start,
				"duplicate field %q", e.name)
		}
		obj[i] = value.Field{Name: e.name, Value: e.value}
	}
	return obj, nil
}

func (d *decoder) intLiteral(tok lexer.Token) (value.Value, error) {
	text := tok.Text(d.src)
	n, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 10, 64)
	if err != nil {
		return nil, d.errorf(rdlerrors.KindSyntax, rdlerrors.ErrInvalidNumber, tok.Start,
			"integer literal %s does not fit in 64 bits", text)
	}
	return value.Integer(n), nil
}

func (d *decoder) floatLiteral(tok lexer.Token) (value.Value, error) {
	text := tok.Text(d.src)
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, d.errorf(rdlerrors.KindSyntax, rdlerrors.ErrInvalidNumber, tok.Start,
			"invalid float literal %s", text)
	}
	return value.Float(f), nil
}

func (d *decoder) stringLiteral(tok lexer.Token) (value.Value, error) {
	text := tok.Text(d.src)
	if len(text) < 2 || !strings.HasSuffix(text, `"`) {
		return nil, d.errorf(rdlerrors.KindLexical, rdlerrors.ErrUnterminatedString, tok.Start,
			"unterminated string")
	}
	return value.String(text[1 : len(text)-1]), nil
}

func (d *decoder) keyword(tok lexer.Token) (value.Value, error) {
	switch text := tok.Text(d.src); text {
	case "True":
		return value.Boolean(true), nil
	case "False":
		return value.Boolean(false), nil
	case "None":
		return value.None{}, nil
	default:
		return nil, d.errorf(rdlerrors.KindSemantic, rdlerrors.ErrUnknownKeyword, tok.Start,
			"unknown keyword %q", text).
			WithSuggestion(rdlerrors.SuggestName(text, keywords))
	}
}

func (d *decoder) enter(open lexer.Token) error {
	d.depth++
	if d.depth > d.maxDepth {
		return d.errorf(rdlerrors.KindSyntax, rdlerrors.ErrMaxDepth, open.Start,
			"nesting deeper than %d levels", d.maxDepth)
	}
	return nil
}

func (d *decoder) leave() {
	d.depth--
}

// unexpected reports tok where something else was expected.
func (d *decoder) unexpected(tok lexer.Token, expected string) *rdlerrors.ParseError {
	switch tok.Kind {
	case lexer.Invalid:
		return d.invalid(tok)
	case lexer.EndOfStream:
		return d.errorf(rdlerrors.KindSyntax, rdlerrors.ErrUnexpectedEOF, tok.Start,
			"unexpected end of input, expected %s", expected)
	default:
		return d.errorf(rdlerrors.KindSyntax, rdlerrors.ErrUnexpectedToken, tok.Start,
			"expected %s, found %s %q", expected, tok.Kind, tok.Text(d.src))
	}
}

func (d *decoder) invalid(tok lexer.Token) *rdlerrors.ParseError {
	text := tok.Text(d.src)
	if looksNumeric(text) {
		return d.errorf(rdlerrors.KindLexical, rdlerrors.ErrInvalidToken, tok.Start,
			"malformed number %q", text).
			WithSuggestion("numbers may contain one '.', '_' separators and a leading '-'")
	}
	return d.errorf(rdlerrors.KindLexical, rdlerrors.ErrInvalidToken, tok.Start,
		"unexpected character %q", text)
}

func (d *decoder) errorf(kind rdlerrors.Kind, sentinel error, offset int, format string, args ...any) *rdlerrors.ParseError {
	return rdlerrors.New(kind, sentinel, d.src, offset, format, args...)
}

func looksNumeric(text string) bool {
	return len(text) > 0 && strings.IndexByte("0123456789-.", text[0]) >= 0
}

// snakeSuggestion offers the lowercase spelling of a field name when that
// alone would make it valid.
func snakeSuggestion(name string) string {
	lower := strings.ToLower(name)
	if lower != name && value.IsFieldName(lower) {
		return "use '" + lower + "'"
	}
	return ""
}

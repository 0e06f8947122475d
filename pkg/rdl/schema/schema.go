package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/lexer"
	"mercator-hq/rdl/pkg/rdl/parser"
	"mercator-hq/rdl/pkg/rdl/rules"
	"mercator-hq/rdl/pkg/rdl/value"
)

// simpleRules are rule names that take no arguments.
var simpleRules = map[string]func() rules.Rule{
	"Any":          rules.Any,
	"String":       rules.String,
	"Integer":      rules.Integer,
	"Float":        rules.Float,
	"Boolean":      rules.Boolean,
	"None":         rules.None,
	"Number":       rules.Number,
	"List":         rules.List,
	"AllUppercase": rules.AllUppercase,
	"AllLowercase": rules.AllLowercase,
	"Url":          rules.URL,
}

// callRules are rule names followed by a parenthesized argument.
var callRules = []string{
	"Length", "MinLength", "MaxLength", "Min", "Max", "ListAll", "Default", "OpenObject",
}

// ruleNames lists every rule name, for suggestions.
var ruleNames = func() []string {
	names := []string{
		"Any", "String", "Integer", "Float", "Boolean", "None", "Number", "List",
		"AllUppercase", "AllLowercase", "Url",
	}
	return append(names, callRules...)
}()

// Parser reads schema text into a rules.Rule.
type Parser struct {
	maxDepth   int
	sourceName string
}

// NewParser creates a schema parser with default limits.
func NewParser() *Parser {
	return &Parser{maxDepth: parser.DefaultMaxDepth}
}

// WithMaxDepth sets the maximum nesting depth of the schema.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithSourceName sets the name reported in error locations.
func (p *Parser) WithSourceName(name string) *Parser {
	p.sourceName = name
	return p
}

// Parse parses schema text. Failures are *rdlerrors.ParseError located in src.
func (p *Parser) Parse(src string) (rules.Rule, error) {
	c := &compiler{
		src:      src,
		toks:     lexer.SkipComments(lexer.New(src)),
		maxDepth: p.maxDepth,
	}

	r, err := c.rule()
	if err == nil {
		if tok := c.toks.Next(); tok.Kind != lexer.EndOfStream {
			err = c.unexpected(tok, "end of schema")
		}
	}
	if err != nil {
		pe, ok := rdlerrors.AsParseError(err)
		if !ok {
			return nil, err
		}
		pe.WithSource(p.sourceName)
		return nil, rdlerrors.WithContext(pe, src, parser.DefaultContextLines)
	}
	return r, nil
}

// ParseFile reads and parses the schema at path.
func (p *Parser) ParseFile(path string) (rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &rdlerrors.ParseError{
			Kind:     rdlerrors.KindIO,
			Message:  fmt.Sprintf("failed to read schema: %v", err),
			Location: rdlerrors.Location{Source: path},
			Err:      err,
		}
	}
	return NewParser().WithMaxDepth(p.maxDepth).WithSourceName(path).Parse(string(data))
}

// Parse parses schema text with default settings.
func Parse(src string) (rules.Rule, error) {
	return NewParser().Parse(src)
}

// ParseFile parses the schema file at path with default settings.
func ParseFile(path string) (rules.Rule, error) {
	return NewParser().ParseFile(path)
}

// MustParse is Parse for schemas embedded in code. It panics on error.
func MustParse(src string) rules.Rule {
	r, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return r
}

type compiler struct {
	src      string
	toks     lexer.TokenStream
	depth    int
	maxDepth int
}

// rule := term ('|' term)*
func (c *compiler) rule() (rules.Rule, error) {
	first, err := c.term()
	if err != nil {
		return nil, err
	}
	if c.toks.Peek().Kind != lexer.Pipe {
		return first, nil
	}

	alts := []rules.Rule{first}
	for c.toks.Peek().Kind == lexer.Pipe {
		c.toks.Next()
		alt, err := c.term()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	return rules.Union(alts...), nil
}

func (c *compiler) term() (rules.Rule, error) {
	tok := c.toks.Next()

	switch tok.Kind {
	case lexer.Keyword:
		return c.named(tok)
	case lexer.ParenL:
		fields, err := c.fields(tok)
		if err != nil {
			return nil, err
		}
		return rules.Object(fields), nil
	case lexer.SquareL:
		return c.listAll(tok)
	case lexer.CurlyL:
		return c.all(tok)
	default:
		return nil, c.unexpected(tok, "a rule")
	}
}

func (c *compiler) named(tok lexer.Token) (rules.Rule, error) {
	name := tok.Text(c.src)
	if mk, ok := simpleRules[name]; ok {
		return mk(), nil
	}

	switch name {
	case "Length", "MinLength", "MaxLength":
		n, err := c.lengthArg()
		if err != nil {
			return nil, err
		}
		return map[string]func(int) rules.Rule{
			"Length":    rules.Length,
			"MinLength": rules.MinLength,
			"MaxLength": rules.MaxLength,
		}[name](n), nil

	case "Min", "Max":
		bound, err := c.numberArg()
		if err != nil {
			return nil, err
		}
		op := rules.OpMin
		if name == "Max" {
			op = rules.OpMax
		}
		return rules.RangeRule{Op: op, Bound: bound}, nil

	case "ListAll":
		open, err := c.expect(lexer.ParenL, "'('")
		if err != nil {
			return nil, err
		}
		if err := c.enter(open); err != nil {
			return nil, err
		}
		defer c.leave()
		elem, err := c.rule()
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(lexer.ParenR, "')'"); err != nil {
			return nil, err
		}
		return rules.ListAll(elem), nil

	case "Default":
		v, err := c.valueArg()
		if err != nil {
			return nil, err
		}
		return rules.Default(v), nil

	case "OpenObject":
		open, err := c.expect(lexer.ParenL, "'('")
		if err != nil {
			return nil, err
		}
		fields, err := c.fields(open)
		if err != nil {
			return nil, err
		}
		return rules.OpenObject(fields), nil
	}

	return nil, c.errorf(rdlerrors.KindSemantic, rdlerrors.ErrUnknownKeyword, tok.Start,
		"unknown rule %q", name).
		WithSuggestion(rdlerrors.SuggestName(name, ruleNames))
}

// fields parses the body of an object rule after its '('.
func (c *compiler) fields(open lexer.Token) (rules.Fields, error) {
	if err := c.enter(open); err != nil {
		return nil, err
	}
	defer c.leave()

	fields := rules.Fields{}
	for {
		name := c.toks.Next()
		if name.Kind == lexer.ParenR {
			return fields, nil
		}
		if name.Kind != lexer.Field && name.Kind != lexer.Keyword {
			return nil, c.unexpected(name, "a field name or ')'")
		}

		text := name.Text(c.src)
		if !value.IsFieldName(text) {
			return nil, c.errorf(rdlerrors.KindSemantic, rdlerrors.ErrInvalidFieldName, name.Start,
				"invalid field name %q: field names may contain only lowercase letters and underscores", text)
		}
		if _, dup := fields[text]; dup {
			return nil, c.errorf(rdlerrors.KindSemantic, rdlerrors.ErrDuplicateField, name.Start,
				"duplicate field %q", text)
		}

		r, err := c.rule()
		if err != nil {
			return nil, err
		}
		fields[text] = r

		sep := c.toks.Next()
		if sep.Kind == lexer.ParenR {
			return fields, nil
		}
		if sep.Kind != lexer.Comma {
			return nil, c.unexpected(sep, "',' or ')'")
		}
	}
}

// listAll parses '[' rule ']'.
func (c *compiler) listAll(open lexer.Token) (rules.Rule, error) {
	if err := c.enter(open); err != nil {
		return nil, err
	}
	defer c.leave()

	elem, err := c.rule()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(lexer.SquareR, "']'"); err != nil {
		return nil, err
	}
	return rules.ListAll(elem), nil
}

// all parses '{' rule (',' rule)* ','? '}'.
func (c *compiler) all(open lexer.Token) (rules.Rule, error) {
	if err := c.enter(open); err != nil {
		return nil, err
	}
	defer c.leave()

	var rs []rules.Rule
	for {
		if c.toks.Peek().Kind == lexer.CurlyR && len(rs) > 0 {
			c.toks.Next()
			return rules.All(rs...), nil
		}

		r, err := c.rule()
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)

		sep := c.toks.Next()
		switch sep.Kind {
		case lexer.Comma:
		case lexer.CurlyR:
			return rules.All(rs...), nil
		default:
			return nil, c.unexpected(sep, "',' or '}'")
		}
	}
}

func (c *compiler) lengthArg() (int, error) {
	if _, err := c.expect(lexer.ParenL, "'('"); err != nil {
		return 0, err
	}
	tok, err := c.expect(lexer.Integer, "a length")
	if err != nil {
		return 0, err
	}
	text := tok.Text(c.src)
	n, err := strconv.Atoi(strings.ReplaceAll(text, "_", ""))
	if err != nil || n < 0 {
		return 0, c.errorf(rdlerrors.KindSyntax, rdlerrors.ErrInvalidNumber, tok.Start,
			"invalid length %s", text)
	}
	if _, err := c.expect(lexer.ParenR, "')'"); err != nil {
		return 0, err
	}
	return n, nil
}

// numberArg parses '(' number ')' with the document number syntax.
func (c *compiler) numberArg() (value.Value, error) {
	if _, err := c.expect(lexer.ParenL, "'('"); err != nil {
		return nil, err
	}
	tok := c.toks.Next()
	if tok.Kind != lexer.Integer && tok.Kind != lexer.Float {
		return nil, c.unexpected(tok, "a number")
	}
	v, err := parser.NewParser().WithContextLines(0).Parse(tok.Text(c.src))
	if err != nil {
		return nil, c.shift(err, tok.Start)
	}
	if _, err := c.expect(lexer.ParenR, "')'"); err != nil {
		return nil, err
	}
	return v, nil
}

// valueArg parses '(' value ')', handing the text between the parentheses
// to the document parser.
func (c *compiler) valueArg() (value.Value, error) {
	open, err := c.expect(lexer.ParenL, "'('")
	if err != nil {
		return nil, err
	}

	depth := 0
	for {
		tok := c.toks.Next()
		switch tok.Kind {
		case lexer.ParenL, lexer.SquareL, lexer.CurlyL:
			depth++
		case lexer.SquareR, lexer.CurlyR:
			depth--
		case lexer.ParenR:
			if depth == 0 {
				return c.parseValue(open.End, tok.Start)
			}
			depth--
		case lexer.EndOfStream, lexer.Invalid:
			return nil, c.unexpected(tok, "')'")
		}
	}
}

func (c *compiler) parseValue(start, end int) (value.Value, error) {
	v, err := parser.NewParser().
		WithMaxDepth(c.maxDepth-c.depth).
		WithContextLines(0).
		Parse(c.src[start:end])
	if err != nil {
		return nil, c.shift(err, start)
	}
	return v, nil
}

// shift relocates an error from a fragment parse into the schema text.
func (c *compiler) shift(err error, start int) error {
	pe, ok := rdlerrors.AsParseError(err)
	if !ok {
		return err
	}
	return pe.Shift(c.src, start)
}

func (c *compiler) expect(kind lexer.TokenKind, what string) (lexer.Token, error) {
	tok := c.toks.Next()
	if tok.Kind != kind {
		return tok, c.unexpected(tok, what)
	}
	return tok, nil
}

func (c *compiler) enter(open lexer.Token) error {
	c.depth++
	if c.depth > c.maxDepth {
		return c.errorf(rdlerrors.KindSyntax, rdlerrors.ErrMaxDepth, open.Start,
			"nesting deeper than %d levels", c.maxDepth)
	}
	return nil
}

func (c *compiler) leave() {
	c.depth--
}

func (c *compiler) unexpected(tok lexer.Token, expected string) *rdlerrors.ParseError {
	switch tok.Kind {
	case lexer.Invalid:
		return c.errorf(rdlerrors.KindLexical, rdlerrors.ErrInvalidToken, tok.Start,
			"unexpected character %q", tok.Text(c.src))
	case lexer.EndOfStream:
		return c.errorf(rdlerrors.KindSyntax, rdlerrors.ErrUnexpectedEOF, tok.Start,
			"unexpected end of schema, expected %s", expected)
	default:
		return c.errorf(rdlerrors.KindSyntax, rdlerrors.ErrUnexpectedToken, tok.Start,
			"expected %s, found %s %q", expected, tok.Kind, tok.Text(c.src))
	}
}

func (c *compiler) errorf(kind rdlerrors.Kind, sentinel error, offset int, format string, args ...any) *rdlerrors.ParseError {
	return rdlerrors.New(kind, sentinel, c.src, offset, format, args...)
}

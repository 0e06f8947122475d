package lexer

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// TokenStream is a forward-only token cursor with one token of lookahead.
type TokenStream interface {
	// Peek returns the next token without consuming it.
	Peek() Token
	// Next returns the next token and advances past it.
	Next() Token
}

// Lexer converts source text into tokens on demand. It never fails:
// unrecognized input becomes a single Invalid token, after which only
// EndOfStream tokens are produced.
type Lexer struct {
	src  string
	pos  int
	done bool

	peeked  Token
	hasPeek bool
}

// New creates a lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Source returns the text being tokenized.
func (l *Lexer) Source() string {
	return l.src
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if !l.hasPeek {
		l.peeked = l.scan()
		l.hasPeek = true
	}
	return l.peeked
}

// Next returns the next token and advances past it.
func (l *Lexer) Next() Token {
	tok := l.Peek()
	l.hasPeek = false
	return tok
}

func (l *Lexer) eos() Token {
	return Token{Kind: EndOfStream, Start: len(l.src), End: len(l.src)}
}

func (l *Lexer) emit(kind TokenKind, end int) Token {
	tok := Token{Kind: kind, Start: l.pos, End: end}
	l.pos = end
	return tok
}

func (l *Lexer) scan() Token {
	if l.done {
		return l.eos()
	}

	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		l.done = true
		return l.eos()
	}

	c := l.src[l.pos]
	if kind, ok := punctuation[c]; ok {
		return l.emit(kind, l.pos+1)
	}

	switch {
	case c == '#':
		end := strings.IndexByte(l.src[l.pos:], '\n')
		if end < 0 {
			return l.emit(Comment, len(l.src))
		}
		return l.emit(Comment, l.pos+end)

	case l.atNumber():
		return l.scanNumber()

	case c == '"':
		end := strings.IndexByte(l.src[l.pos+1:], '"')
		if end < 0 {
			return l.emit(String, len(l.src))
		}
		return l.emit(String, l.pos+end+2)

	case isUpper(c):
		return l.emit(Keyword, l.wordEnd())

	case isLower(c):
		return l.emit(Field, l.wordEnd())
	}

	_, width := utf8.DecodeRuneInString(l.src[l.pos:])
	l.done = true
	return l.emit(Invalid, l.pos+width)
}

var punctuation = map[byte]TokenKind{
	'(': ParenL,
	')': ParenR,
	'[': SquareL,
	']': SquareR,
	'{': CurlyL,
	'}': CurlyR,
	',': Comma,
	'|': Pipe,
}

// atNumber reports whether a number run starts at the cursor: a digit, or a
// '-' or '.' that is followed by more number characters.
func (l *Lexer) atNumber() bool {
	c := l.src[l.pos]
	if isDigit(c) {
		return true
	}
	if c != '-' && c != '.' {
		return false
	}
	return l.pos+1 < len(l.src) && isNumberByte(l.src[l.pos+1])
}

func (l *Lexer) scanNumber() Token {
	end := l.pos
	for end < len(l.src) && isNumberByte(l.src[end]) {
		end++
	}

	dots, digits := 0, 0
	valid := true
	for i := l.pos; i < end; i++ {
		switch c := l.src[i]; {
		case c == '-':
			if i != l.pos {
				valid = false
			}
		case c == '.':
			dots++
		case isDigit(c):
			digits++
		}
	}
	if dots > 1 || digits == 0 {
		valid = false
	}

	if !valid {
		l.done = true
		return l.emit(Invalid, end)
	}
	if dots == 1 {
		return l.emit(Float, end)
	}
	return l.emit(Integer, end)
}

func (l *Lexer) wordEnd() int {
	end := l.pos + 1
	for end < len(l.src) && isWordByte(l.src[end]) {
		end++
	}
	return end
}

// CommentFilter is a TokenStream that transparently drops Comment tokens
// from the stream it wraps.
type CommentFilter struct {
	inner TokenStream
}

// SkipComments wraps s so that Comment tokens are never observed.
func SkipComments(s TokenStream) *CommentFilter {
	return &CommentFilter{inner: s}
}

// Peek returns the next non-comment token without consuming it.
func (f *CommentFilter) Peek() Token {
	for {
		tok := f.inner.Peek()
		if tok.Kind != Comment {
			return tok
		}
		f.inner.Next()
	}
}

// Next returns the next non-comment token and advances past it.
func (f *CommentFilter) Next() Token {
	tok := f.Peek()
	f.inner.Next()
	return tok
}

// Tokens iterates over the tokens of src in order. Iteration stops before
// EndOfStream; an Invalid token, if any, is the last token yielded.
func Tokens(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l := New(src)
		for {
			tok := l.Next()
			if tok.Kind == EndOfStream || !yield(tok) {
				return
			}
		}
	}
}

// WithoutComments filters Comment tokens out of seq.
func WithoutComments(seq iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for tok := range seq {
			if tok.Kind == Comment {
				continue
			}
			if !yield(tok) {
				return
			}
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '_' || c == '.' || c == '-'
}

func isWordByte(c byte) bool {
	return isUpper(c) || isLower(c) || isDigit(c) || c == '_'
}

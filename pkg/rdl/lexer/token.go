package lexer

// TokenKind classifies a token produced by the Lexer.
type TokenKind int8

const (
	ParenL TokenKind = iota
	ParenR
	SquareL
	SquareR
	CurlyL
	CurlyR
	Integer
	Float
	Keyword // True, False, None, and rule names in schema text
	String
	Field
	Comma
	Pipe
	Comment
	Invalid
	EndOfStream
)

// String returns the name of the kind as used in error messages.
func (k TokenKind) String() string {
	switch k {
	case ParenL:
		return "'('"
	case ParenR:
		return "')'"
	case SquareL:
		return "'['"
	case SquareR:
		return "']'"
	case CurlyL:
		return "'{'"
	case CurlyR:
		return "'}'"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Keyword:
		return "keyword"
	case String:
		return "string"
	case Field:
		return "field name"
	case Comma:
		return "','"
	case Pipe:
		return "'|'"
	case Comment:
		return "comment"
	case Invalid:
		return "invalid input"
	case EndOfStream:
		return "end of input"
	default:
		panic("unknown TokenKind")
	}
}

// GoString makes kinds readable in %#v output.
func (k TokenKind) GoString() string {
	return k.String()
}

// Token is a classified, half-open byte range [Start, End) of the source.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
}

// Text returns the slice of src covered by the token.
func (t Token) Text(src string) string {
	return src[t.Start:t.End]
}

// Len returns the byte length of the token.
func (t Token) Len() int {
	return t.End - t.Start
}

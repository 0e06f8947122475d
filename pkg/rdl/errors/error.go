package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes a parse failure.
type Kind string

const (
	KindLexical  Kind = "lexical"  // Unrecognized input
	KindSyntax   Kind = "syntax"   // Wrong token for the grammar position
	KindSemantic Kind = "semantic" // Well-formed but meaningless (unknown keyword, bad field name)
	KindIO       Kind = "io"       // Source could not be read
)

// Sentinel errors wrapped by ParseError. Match them with errors.Is.
var (
	ErrInvalidToken       = stderrors.New("invalid token")
	ErrUnexpectedToken    = stderrors.New("unexpected token")
	ErrUnexpectedEOF      = stderrors.New("unexpected end of input")
	ErrUnterminatedString = stderrors.New("unterminated string")
	ErrInvalidNumber      = stderrors.New("invalid number")
	ErrUnknownKeyword     = stderrors.New("unknown keyword")
	ErrInvalidFieldName   = stderrors.New("invalid field name")
	ErrDuplicateField     = stderrors.New("duplicate field")
	ErrTrailingInput      = stderrors.New("trailing input")
	ErrMaxDepth           = stderrors.New("maximum nesting depth exceeded")
	ErrTooLarge           = stderrors.New("input too large")
)

// ParseError is a located failure to turn source text into a value.
type ParseError struct {
	Kind       Kind
	Message    string
	Location   Location
	Context    string // Surrounding source lines, see WithContext
	Suggestion string
	Err        error // Sentinel
}

// New creates a ParseError at the given byte offset of src.
func New(kind Kind, sentinel error, src string, offset int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: Locate(src, offset),
		Err:      sentinel,
	}
}

// Error returns the message with location, context and suggestion, in the
// same layout the CLI prints.
func (e *ParseError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s", e.Kind, e.Message)
	if e.Location.IsValid() {
		fmt.Fprintf(&sb, "\n  --> %s", e.Location)
	}
	if e.Context != "" {
		sb.WriteString("\n  |\n")
		sb.WriteString(strings.TrimSuffix(e.Context, "\n"))
		sb.WriteString("\n  |")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, "\n  = suggestion: %s", e.Suggestion)
	}

	return sb.String()
}

// Short returns a single-line form suitable for logs: "source:line:col: message".
func (e *ParseError) Short() string {
	if !e.Location.IsValid() {
		if e.Location.Source != "" {
			return e.Location.Source + ": " + e.Message
		}
		return e.Message
	}
	return e.Location.String() + ": " + e.Message
}

// Unwrap returns the sentinel error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WithSource sets the source name shown in the location.
func (e *ParseError) WithSource(name string) *ParseError {
	e.Location.Source = name
	return e
}

// WithSuggestion sets the suggestion. An empty suggestion is ignored.
func (e *ParseError) WithSuggestion(s string) *ParseError {
	if s != "" {
		e.Suggestion = s
	}
	return e
}

// Shift moves the error by delta bytes, recomputing line and column
// against src. Used when a fragment was parsed out of a larger text.
func (e *ParseError) Shift(src string, delta int) *ParseError {
	source := e.Location.Source
	e.Location = Locate(src, e.Location.Offset+delta)
	e.Location.Source = source
	return e
}

// AsParseError unwraps err into a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

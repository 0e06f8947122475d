package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"mercator-hq/rdl/pkg/rdl/value"
)

// Sentinel errors wrapped by ValidationError.
var (
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrMissingField    = errors.New("missing field")
	ErrUnexpectedField = errors.New("unexpected field")
	ErrNoAlternative   = errors.New("no alternative matched")
	ErrConstraint      = errors.New("constraint violated")
)

// PathElem is one step from a container to a child: a field name, or a
// list index when Name is empty.
type PathElem struct {
	Name  string
	Index int
}

// Path locates a node in a value tree, starting from the root.
type Path []PathElem

// Field returns p extended by a field step. p is not modified.
func (p Path) Field(name string) Path {
	return append(p[:len(p):len(p)], PathElem{Name: name})
}

// Index returns p extended by a list index step. p is not modified.
func (p Path) Index(i int) Path {
	return append(p[:len(p):len(p)], PathElem{Index: i})
}

// String renders the path as $.field[2].other.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, e := range p {
		if e.Name != "" {
			sb.WriteByte('.')
			sb.WriteString(e.Name)
		} else {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(e.Index))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// ValidationError describes the first violation found while validating.
type ValidationError struct {
	Path       Path
	Expected   string // Rule in schema notation
	Message    string
	Suggestion string
	Err        error // Sentinel
	Cause      error // Last alternative's failure, for unions
}

// Error returns "path: message".
func (e *ValidationError) Error() string {
	msg := e.Path.String() + ": " + e.Message
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// Unwrap exposes the sentinel and, when present, the cause.
func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func mismatch(r Rule, v value.Value, path Path) *ValidationError {
	return &ValidationError{
		Path:     path,
		Expected: r.String(),
		Message:  fmt.Sprintf("expected %s, found %s", r, describe(v)),
		Err:      ErrTypeMismatch,
	}
}

func violation(r Rule, path Path, format string, args ...any) *ValidationError {
	return &ValidationError{
		Path:     path,
		Expected: r.String(),
		Message:  fmt.Sprintf(format, args...),
		Err:      ErrConstraint,
	}
}

const maxDescribe = 40

// describe names a value's kind with a short preview of it.
func describe(v value.Value) string {
	if v == nil {
		return "nothing"
	}
	switch v.(type) {
	case value.None:
		return "None"
	case value.List, value.Object:
		return v.Kind().String()
	}

	s, err := value.Format(v)
	if err != nil {
		return v.Kind().String()
	}
	if utf8.RuneCountInString(s) > maxDescribe {
		s = string([]rune(s)[:maxDescribe]) + "..."
	}
	return v.Kind().String() + " " + s
}

package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnrepresentable is returned when a value has no RDL spelling:
// non-finite floats, strings containing '"', and invalid field names.
var ErrUnrepresentable = errors.New("value cannot be written as RDL")

// Format returns the canonical single-line spelling of v, for example
// (a 1, b [1.5, "x"]). Parsing the result yields a value Equal to v.
func Format(v Value) (string, error) {
	var sb strings.Builder
	if err := write(&sb, v, "", 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Indent is like Format but puts each list element and object field on its
// own line, indented by indent per nesting level, with trailing commas.
func Indent(v Value, indent string) (string, error) {
	var sb strings.Builder
	if err := write(&sb, v, indent, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// MustFormat is Format for values known to be representable. It panics
// otherwise.
func MustFormat(v Value) string {
	s, err := Format(v)
	if err != nil {
		panic(err)
	}
	return s
}

func write(sb *strings.Builder, v Value, indent string, depth int) error {
	switch v := v.(type) {
	case Integer:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		s, err := formatFloat(float64(v))
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case String:
		if strings.ContainsRune(string(v), '"') {
			return fmt.Errorf("%w: string contains a double quote", ErrUnrepresentable)
		}
		sb.WriteByte('"')
		sb.WriteString(string(v))
		sb.WriteByte('"')
	case Boolean:
		if v {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case None:
		sb.WriteString("None")
	case List:
		return writeSeq(sb, '[', ']', len(v), indent, depth, func(i int) error {
			return write(sb, v[i], indent, depth+1)
		})
	case Object:
		return writeSeq(sb, '(', ')', len(v), indent, depth, func(i int) error {
			if !IsFieldName(v[i].Name) {
				return fmt.Errorf("%w: invalid field name %q", ErrUnrepresentable, v[i].Name)
			}
			sb.WriteString(v[i].Name)
			sb.WriteByte(' ')
			return write(sb, v[i].Value, indent, depth+1)
		})
	default:
		return fmt.Errorf("%w: %T", ErrUnrepresentable, v)
	}
	return nil
}

func writeSeq(sb *strings.Builder, open, close byte, n int, indent string, depth int, item func(int) error) error {
	sb.WriteByte(open)
	if n == 0 {
		sb.WriteByte(close)
		return nil
	}

	for i := 0; i < n; i++ {
		if indent != "" {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat(indent, depth+1))
		} else if i > 0 {
			sb.WriteString(", ")
		}
		if err := item(i); err != nil {
			return err
		}
		if indent != "" {
			sb.WriteByte(',')
		}
	}

	if indent != "" {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(indent, depth))
	}
	sb.WriteByte(close)
	return nil
}

// formatFloat always includes a '.' so the literal lexes as a float, and
// never uses exponent notation, which RDL does not have.
func formatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("%w: %v", ErrUnrepresentable, f)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

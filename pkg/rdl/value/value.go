package value

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindBoolean
	KindNone
	KindList
	KindObject
)

// String returns the name of the kind as written in schemas.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindNone:
		return "None"
	case KindList:
		return "List"
	case KindObject:
		return "Object"
	default:
		panic("unknown value kind")
	}
}

// Value is one node of a parsed document. The set of implementations is
// closed; type switches over Value should handle every variant.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	Integer int64
	Float   float64
	String  string
	Boolean bool
	None    struct{}
	List    []Value
	Object  []Field
)

// Field is one named entry of an Object.
type Field struct {
	Name  string
	Value Value
}

func (Integer) Kind() Kind { return KindInteger }
func (Float) Kind() Kind   { return KindFloat }
func (String) Kind() Kind  { return KindString }
func (Boolean) Kind() Kind { return KindBoolean }
func (None) Kind() Kind    { return KindNone }
func (List) Kind() Kind    { return KindList }
func (Object) Kind() Kind  { return KindObject }

func (Integer) isValue() {}
func (Float) isValue()   {}
func (String) isValue()  {}
func (Boolean) isValue() {}
func (None) isValue()    {}
func (List) isValue()    {}
func (Object) isValue()  {}

var (
	ErrInvalidName   = errors.New("invalid field name")
	ErrDuplicateName = errors.New("duplicate field name")
)

// IsFieldName reports whether name is a valid object field name: one or
// more lowercase ASCII letters and underscores.
func IsFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && c != '_' {
			return false
		}
	}
	return true
}

// NewObject builds an Object from fields in any order. It returns an error
// if a name is not snake_case or appears twice.
func NewObject(fields ...Field) (Object, error) {
	obj := slices.Clone(Object(fields))
	slices.SortStableFunc(obj, func(a, b Field) int {
		return cmp.Compare(a.Name, b.Name)
	})

	for i, f := range obj {
		if !IsFieldName(f.Name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, f.Name)
		}
		if i > 0 && obj[i-1].Name == f.Name {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, f.Name)
		}
	}
	return obj, nil
}

// Get returns the value of the named field. The object must be sorted, as
// every Object produced by the parser or NewObject is.
func (o Object) Get(name string) (Value, bool) {
	i, found := slices.BinarySearchFunc(o, name, func(f Field, name string) int {
		return cmp.Compare(f.Name, name)
	})
	if !found {
		return nil, false
	}
	return o[i].Value, true
}

// Has reports whether the named field is present.
func (o Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Names returns the field names in order.
func (o Object) Names() []string {
	names := make([]string, len(o))
	for i, f := range o {
		names[i] = f.Name
	}
	return names
}

// With returns a copy of o with the named field set to v, keeping the
// fields sorted.
func (o Object) With(name string, v Value) Object {
	i, found := slices.BinarySearchFunc(o, name, func(f Field, name string) int {
		return cmp.Compare(f.Name, name)
	})
	out := slices.Clone(o)
	if found {
		out[i].Value = v
		return out
	}
	return slices.Insert(out, i, Field{Name: name, Value: v})
}

// Equal reports whether a and b are the same value. Integer and Float are
// distinct even when numerically equal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Integer, String, Boolean, None:
		return a == b
	case Float:
		b, ok := b.(Float)
		return ok && (a == b || math.IsNaN(float64(a)) && math.IsNaN(float64(b)))
	case List:
		b, ok := b.(List)
		return ok && slices.EqualFunc(a, b, Equal)
	case Object:
		b, ok := b.(Object)
		return ok && slices.EqualFunc(a, b, func(x, y Field) bool {
			return x.Name == y.Name && Equal(x.Value, y.Value)
		})
	default:
		return a == nil && b == nil
	}
}

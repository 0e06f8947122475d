package rules

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"mercator-hq/rdl/pkg/rdl/value"
)

// Rule describes the shape a value must have. The set of implementations
// is closed. Rules are immutable and safe for concurrent use.
type Rule interface {
	// String returns the rule in schema notation.
	String() string

	validate(v value.Value, path Path) (value.Value, error)
}

// AnyRule accepts every value.
type AnyRule struct{}

// TypeRule accepts values of exactly one kind.
type TypeRule struct {
	Kind value.Kind
}

// NumberRule accepts Integer and Float values.
type NumberRule struct{}

// ListAllRule accepts lists whose elements all satisfy Element.
type ListAllRule struct {
	Element Rule
}

// Fields maps object field names to their rules.
type Fields map[string]Rule

// ObjectRule accepts objects whose fields satisfy the named rules. Unless
// Open is set, fields not named in Fields are rejected.
type ObjectRule struct {
	Fields Fields
	Open   bool
}

// UnionRule accepts values satisfying at least one alternative.
type UnionRule struct {
	Alternatives []Rule
}

// AllRule accepts values satisfying every rule in order. Each rule sees
// the value as normalized by the one before it.
type AllRule struct {
	Rules []Rule
}

// CaseRule accepts strings with no lowercase letters (Upper) or no
// uppercase letters.
type CaseRule struct {
	Upper bool
}

// URLRule accepts strings that parse as absolute URLs with a host.
type URLRule struct{}

// Op selects how a bound is compared.
type Op uint8

const (
	OpEq Op = iota
	OpMin
	OpMax
)

// LengthRule bounds the number of characters in a string.
type LengthRule struct {
	Op Op
	N  int
}

// RangeRule bounds a number. Bound is a value.Integer or value.Float.
type RangeRule struct {
	Op    Op
	Bound value.Value
}

// DefaultRule accepts any value and supplies Fallback for an absent
// object field.
type DefaultRule struct {
	Fallback value.Value
}

func Any() Rule          { return AnyRule{} }
func String() Rule       { return TypeRule{Kind: value.KindString} }
func Integer() Rule      { return TypeRule{Kind: value.KindInteger} }
func Float() Rule        { return TypeRule{Kind: value.KindFloat} }
func Boolean() Rule      { return TypeRule{Kind: value.KindBoolean} }
func None() Rule         { return TypeRule{Kind: value.KindNone} }
func List() Rule         { return TypeRule{Kind: value.KindList} }
func Number() Rule       { return NumberRule{} }
func AllUppercase() Rule { return CaseRule{Upper: true} }
func AllLowercase() Rule { return CaseRule{Upper: false} }
func URL() Rule          { return URLRule{} }

// ListAll requires every list element to satisfy element.
func ListAll(element Rule) Rule { return ListAllRule{Element: element} }

// Object requires exactly the given fields.
func Object(fields Fields) Rule { return ObjectRule{Fields: fields} }

// OpenObject requires the given fields and passes any others through.
func OpenObject(fields Fields) Rule { return ObjectRule{Fields: fields, Open: true} }

// Union accepts a value satisfying any of rs, tried in order.
func Union(rs ...Rule) Rule { return UnionRule{Alternatives: rs} }

// All requires a value to satisfy every one of rs.
func All(rs ...Rule) Rule { return AllRule{Rules: rs} }

func Length(n int) Rule    { return LengthRule{Op: OpEq, N: n} }
func MinLength(n int) Rule { return LengthRule{Op: OpMin, N: n} }
func MaxLength(n int) Rule { return LengthRule{Op: OpMax, N: n} }

func Min(n int64) Rule        { return RangeRule{Op: OpMin, Bound: value.Integer(n)} }
func Max(n int64) Rule        { return RangeRule{Op: OpMax, Bound: value.Integer(n)} }
func MinFloat(f float64) Rule { return RangeRule{Op: OpMin, Bound: value.Float(f)} }
func MaxFloat(f float64) Rule { return RangeRule{Op: OpMax, Bound: value.Float(f)} }

// Default makes an object field optional, filling in fallback when absent.
func Default(fallback value.Value) Rule { return DefaultRule{Fallback: fallback} }

// Validate checks v against r and returns v with defaults filled in. The
// error, if any, is a *ValidationError for the first violation found.
func Validate(r Rule, v value.Value) (value.Value, error) {
	return r.validate(v, nil)
}

func (AnyRule) String() string    { return "Any" }
func (r TypeRule) String() string { return r.Kind.String() }
func (NumberRule) String() string { return "Number" }
func (URLRule) String() string    { return "Url" }

func (r ListAllRule) String() string {
	return "[" + r.Element.String() + "]"
}

// Names returns the declared field names in sorted order.
func (r ObjectRule) Names() []string {
	return slices.Sorted(maps.Keys(r.Fields))
}

func (r ObjectRule) String() string {
	parts := make([]string, 0, len(r.Fields))
	for _, name := range r.Names() {
		parts = append(parts, name+" "+r.Fields[name].String())
	}
	body := "(" + strings.Join(parts, ", ") + ")"
	if r.Open {
		return "OpenObject" + body
	}
	return body
}

func (r UnionRule) String() string {
	parts := make([]string, len(r.Alternatives))
	for i, alt := range r.Alternatives {
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

func (r AllRule) String() string {
	parts := make([]string, len(r.Rules))
	for i, rule := range r.Rules {
		parts[i] = rule.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (r CaseRule) String() string {
	if r.Upper {
		return "AllUppercase"
	}
	return "AllLowercase"
}

func (r LengthRule) String() string {
	return [...]string{"Length", "MinLength", "MaxLength"}[r.Op] + "(" + strconv.Itoa(r.N) + ")"
}

func (r RangeRule) String() string {
	name := "Min"
	if r.Op == OpMax {
		name = "Max"
	}
	return name + "(" + formatValue(r.Bound) + ")"
}

func (r DefaultRule) String() string {
	return "Default(" + formatValue(r.Fallback) + ")"
}

func formatValue(v value.Value) string {
	s, err := value.Format(v)
	if err != nil {
		return "?"
	}
	return s
}

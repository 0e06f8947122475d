package rules

import (
	"cmp"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/value"
)

func (AnyRule) validate(v value.Value, _ Path) (value.Value, error) {
	return v, nil
}

func (r TypeRule) validate(v value.Value, path Path) (value.Value, error) {
	if v.Kind() != r.Kind {
		return nil, mismatch(r, v, path)
	}
	return v, nil
}

func (r NumberRule) validate(v value.Value, path Path) (value.Value, error) {
	switch v.(type) {
	case value.Integer, value.Float:
		return v, nil
	}
	return nil, mismatch(r, v, path)
}

func (r ListAllRule) validate(v value.Value, path Path) (value.Value, error) {
	list, ok := v.(value.List)
	if !ok {
		return nil, mismatch(r, v, path)
	}

	out := make(value.List, len(list))
	for i, elem := range list {
		norm, err := r.Element.validate(elem, path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = norm
	}
	return out, nil
}

// validate walks the declared and the present field names together in
// sorted order, so the violation reported is the first by name.
func (r ObjectRule) validate(v value.Value, path Path) (value.Value, error) {
	obj, ok := v.(value.Object)
	if !ok {
		return nil, mismatch(r, v, path)
	}

	names := r.Names()
	out := make(value.Object, 0, max(len(obj), len(names)))

	i, j := 0, 0
	for i < len(names) || j < len(obj) {
		switch {
		case j == len(obj) || i < len(names) && names[i] < obj[j].Name:
			name := names[i]
			fallback, ok := defaultFor(r.Fields[name])
			if !ok {
				return nil, &ValidationError{
					Path:     path.Field(name),
					Expected: r.Fields[name].String(),
					Message:  "missing required field '" + name + "'",
					Err:      ErrMissingField,
				}
			}
			out = append(out, value.Field{Name: name, Value: fallback})
			i++

		case i == len(names) || obj[j].Name < names[i]:
			f := obj[j]
			if !r.Open {
				return nil, &ValidationError{
					Path:       path.Field(f.Name),
					Expected:   r.String(),
					Message:    "unexpected field '" + f.Name + "'",
					Suggestion: rdlerrors.SuggestName(f.Name, names),
					Err:        ErrUnexpectedField,
				}
			}
			out = append(out, f)
			j++

		default:
			name := names[i]
			norm, err := r.Fields[name].validate(obj[j].Value, path.Field(name))
			if err != nil {
				return nil, err
			}
			out = append(out, value.Field{Name: name, Value: norm})
			i++
			j++
		}
	}
	return out, nil
}

// defaultFor finds the fallback for an absent field governed by r.
func defaultFor(r Rule) (value.Value, bool) {
	switch r := r.(type) {
	case DefaultRule:
		return r.Fallback, true
	case AllRule:
		for _, sub := range r.Rules {
			if v, ok := defaultFor(sub); ok {
				return v, true
			}
		}
	case UnionRule:
		for _, alt := range r.Alternatives {
			if v, ok := defaultFor(alt); ok {
				return v, true
			}
		}
	}
	return nil, false
}

func (r UnionRule) validate(v value.Value, path Path) (value.Value, error) {
	var last error
	for _, alt := range r.Alternatives {
		norm, err := alt.validate(v, path)
		if err == nil {
			return norm, nil
		}
		last = err
	}
	if len(r.Alternatives) == 0 {
		return nil, &ValidationError{
			Path:     path,
			Expected: r.String(),
			Message:  "empty union accepts nothing, found " + describe(v),
			Err:      ErrNoAlternative,
		}
	}

	// Report the last alternative's failure where it happened, tagged as a
	// failed union.
	ve, ok := last.(*ValidationError)
	if !ok {
		return nil, last
	}
	out := *ve
	out.Err = ErrNoAlternative
	out.Cause = ve
	return nil, &out
}

func (r AllRule) validate(v value.Value, path Path) (value.Value, error) {
	cur := v
	for _, rule := range r.Rules {
		norm, err := rule.validate(cur, path)
		if err != nil {
			return nil, err
		}
		cur = norm
	}
	return cur, nil
}

func (r CaseRule) validate(v value.Value, path Path) (value.Value, error) {
	s, ok := v.(value.String)
	if !ok {
		return nil, mismatch(r, v, path)
	}

	reject, want := unicode.IsLower, "uppercase"
	if !r.Upper {
		reject, want = unicode.IsUpper, "lowercase"
	}
	if strings.IndexFunc(string(s), reject) >= 0 {
		return nil, violation(r, path, "expected an all-%s string, found %s", want, describe(v))
	}
	return v, nil
}

func (r URLRule) validate(v value.Value, path Path) (value.Value, error) {
	s, ok := v.(value.String)
	if !ok {
		return nil, mismatch(r, v, path)
	}

	u, err := url.Parse(string(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, violation(r, path, "expected a URL with scheme and host, found %s", describe(v))
	}
	return v, nil
}

func (r LengthRule) validate(v value.Value, path Path) (value.Value, error) {
	s, ok := v.(value.String)
	if !ok {
		return nil, mismatch(r, v, path)
	}

	n := utf8.RuneCountInString(string(s))
	switch {
	case r.Op == OpEq && n != r.N:
		return nil, violation(r, path, "expected length %d, found length %d", r.N, n)
	case r.Op == OpMin && n < r.N:
		return nil, violation(r, path, "expected length at least %d, found length %d", r.N, n)
	case r.Op == OpMax && n > r.N:
		return nil, violation(r, path, "expected length at most %d, found length %d", r.N, n)
	}
	return v, nil
}

func (r RangeRule) validate(v value.Value, path Path) (value.Value, error) {
	c, ok := compare(v, r.Bound)
	if !ok {
		return nil, mismatch(r, v, path)
	}

	if r.Op == OpMin && c < 0 {
		return nil, violation(r, path, "expected at least %s, found %s", formatValue(r.Bound), describe(v))
	}
	if r.Op == OpMax && c > 0 {
		return nil, violation(r, path, "expected at most %s, found %s", formatValue(r.Bound), describe(v))
	}
	return v, nil
}

// compare orders two numbers. Two integers compare exactly; anything else
// is widened to float64. ok is false if v is not a number.
func compare(v, bound value.Value) (c int, ok bool) {
	if a, isInt := v.(value.Integer); isInt {
		if b, isInt := bound.(value.Integer); isInt {
			return cmp.Compare(a, b), true
		}
	}

	a, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	b, ok := toFloat(bound)
	if !ok {
		return 0, false
	}
	return cmp.Compare(a, b), true
}

func toFloat(v value.Value) (float64, bool) {
	switch v := v.(type) {
	case value.Integer:
		return float64(v), true
	case value.Float:
		return float64(v), true
	}
	return 0, false
}

func (DefaultRule) validate(v value.Value, _ Path) (value.Value, error) {
	return v, nil
}

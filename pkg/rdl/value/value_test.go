package value

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"
)

func mustObject(t *testing.T, fields ...Field) Object {
	t.Helper()
	obj, err := NewObject(fields...)
	if err != nil {
		t.Fatalf("NewObject() error = %v", err)
	}
	return obj
}

func TestNewObject(t *testing.T) {
	obj := mustObject(t,
		Field{"symbol", String("AAPL")},
		Field{"close_price", Float(100.27)},
		Field{"day", Integer(3)},
	)

	want := []string{"close_price", "day", "symbol"}
	if got := obj.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	v, ok := obj.Get("day")
	if !ok || v != Integer(3) {
		t.Errorf("Get(day) = %v, %v", v, ok)
	}
	if obj.Has("missing") {
		t.Error("Has(missing) = true")
	}
}

func TestNewObject_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		want   error
	}{
		{"duplicate", []Field{{"a", Integer(1)}, {"a", Integer(2)}}, ErrDuplicateName},
		{"uppercase", []Field{{"Abc", Integer(1)}}, ErrInvalidName},
		{"digit", []Field{{"x2", Integer(1)}}, ErrInvalidName},
		{"empty", []Field{{"", Integer(1)}}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewObject(tt.fields...)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewObject() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestObject_With(t *testing.T) {
	obj := mustObject(t, Field{"a", Integer(1)}, Field{"c", Integer(3)})

	added := obj.With("b", None{})
	if got := added.Names(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("With(b) names = %v", got)
	}
	if len(obj) != 2 {
		t.Errorf("With modified the receiver: %v", obj)
	}

	replaced := obj.With("a", Integer(9))
	if v, _ := replaced.Get("a"); v != Integer(9) {
		t.Errorf("With(a) value = %v", v)
	}
}

func TestEqual(t *testing.T) {
	a := mustObject(t, Field{"a", List{Integer(1), Float(2.5)}}, Field{"b", None{}})
	b := mustObject(t, Field{"b", None{}}, Field{"a", List{Integer(1), Float(2.5)}})
	c := mustObject(t, Field{"a", List{Integer(1), Float(2.5)}}, Field{"b", Boolean(false)})

	if !Equal(a, b) {
		t.Error("Equal(a, b) = false for same fields in different order")
	}
	if Equal(a, c) {
		t.Error("Equal(a, c) = true")
	}
	if Equal(Integer(1), Float(1)) {
		t.Error("Integer(1) equals Float(1)")
	}
	if !Equal(Float(math.NaN()), Float(math.NaN())) {
		t.Error("NaN not equal to itself")
	}
}

func TestFormat(t *testing.T) {
	obj := mustObject(t,
		Field{"symbol", String("AAPL")},
		Field{"prices", List{Float(100), Float(-0.5), Integer(100000)}},
		Field{"meta", Object{}},
		Field{"flags", List{Boolean(true), Boolean(false), None{}}},
	)

	got, err := Format(obj)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := `(flags [True, False, None], meta (), prices [100.0, -0.5, 100000], symbol "AAPL")`
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestIndent(t *testing.T) {
	obj := mustObject(t,
		Field{"a", Integer(1)},
		Field{"b", List{String("x"), List{}}},
	)

	got, err := Indent(obj, "  ")
	if err != nil {
		t.Fatalf("Indent() error = %v", err)
	}
	want := "(\n  a 1,\n  b [\n    \"x\",\n    [],\n  ],\n)"
	if got != want {
		t.Errorf("Indent() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormat_Unrepresentable(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"quote in string", String(`say "hi"`)},
		{"infinity", Float(math.Inf(1))},
		{"nan inside list", List{Float(math.NaN())}},
		{"bad field name", Object{{Name: "Bad", Value: None{}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Format(tt.v); !errors.Is(err, ErrUnrepresentable) {
				t.Errorf("Format() error = %v, want ErrUnrepresentable", err)
			}
		})
	}
}

func TestNative(t *testing.T) {
	obj := mustObject(t,
		Field{"n", Integer(7)},
		Field{"f", Float(1.5)},
		Field{"s", String("x")},
		Field{"l", List{Boolean(true), None{}}},
	)

	back, err := FromNative(ToNative(obj))
	if err != nil {
		t.Fatalf("FromNative() error = %v", err)
	}
	if !Equal(obj, back) {
		t.Errorf("FromNative(ToNative(v)) = %v, want %v", back, obj)
	}

	if _, err := FromNative(map[string]any{"BadName": 1}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("FromNative(bad name) error = %v", err)
	}
	if _, err := FromNative(uint64(math.MaxUint64)); err == nil {
		t.Error("FromNative(MaxUint64) succeeded")
	}
	if _, err := FromNative(struct{}{}); err == nil {
		t.Error("FromNative(struct{}) succeeded")
	}
}

func TestFromNative_JSONNumber(t *testing.T) {
	dec := map[string]any{"i": json.Number("12"), "f": json.Number("1.25")}
	v, err := FromNative(dec)
	if err != nil {
		t.Fatalf("FromNative() error = %v", err)
	}
	obj := v.(Object)
	if got, _ := obj.Get("i"); got != Integer(12) {
		t.Errorf("i = %#v", got)
	}
	if got, _ := obj.Get("f"); got != Float(1.25) {
		t.Errorf("f = %#v", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	obj := mustObject(t,
		Field{"z", None{}},
		Field{"a", List{Integer(1), String("x")}},
		Field{"m", Object{}},
		Field{"e", List(nil)},
	)

	got, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"a":[1,"x"],"e":[],"m":{},"z":null}`
	if string(got) != want {
		t.Errorf("json.Marshal() = %s, want %s", got, want)
	}
}

func TestKind_String(t *testing.T) {
	for k := KindInteger; k <= KindObject; k++ {
		if k.String() == "" {
			t.Errorf("Kind(%d).String() is empty", k)
		}
	}
}

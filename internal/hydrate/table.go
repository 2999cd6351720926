package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

var ErrNilSetter = errors.New("nil setter")

// Setter assigns a payload value to a field of *T.
type Setter[T any] func(dst *T, v any) error

// Binding pairs a field spec with the setter that fills it.
type Binding[T any] struct {
	Field FieldSpec
	Set   Setter[T]
}

func Bind[T any](field FieldSpec, set Setter[T]) Binding[T] {
	return Binding[T]{Field: field, Set: set}
}

// Table is a field table: field name to setter, built once per Go type and
// looked up by payload key at hydration time.
type Table[T any] struct {
	spec    *Spec
	setters map[string]Setter[T]
}

func NewTable[T any](bindings ...Binding[T]) (*Table[T], error) {
	fields := make([]FieldSpec, len(bindings))
	setters := make(map[string]Setter[T], len(bindings))
	for i, b := range bindings {
		if b.Set == nil {
			return nil, fmt.Errorf("field %q: %w", b.Field.Name, ErrNilSetter)
		}
		fields[i] = b.Field
		setters[b.Field.Name] = b.Set
	}

	spec, err := NewSpec(fields...)
	if err != nil {
		return nil, err
	}

	return &Table[T]{
		spec:    spec,
		setters: setters,
	}, nil
}

func (t *Table[T]) Spec() *Spec {
	return t.spec
}

// Hydrate builds a new T from payload. The returned value is exclusively
// owned by the caller; fields whose setter rejected the value are reported as
// type mismatches and left at their zero value.
func (t *Table[T]) Hydrate(payload Payload) (*T, *Result) {
	var out T
	r := hydrate(t.spec, payload, func(field string, v any) error {
		return t.setters[field](&out, v)
	})
	return &out, r
}

func mismatch(want string, v any) error {
	return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, want, v)
}

// Value assigns the payload value untouched.
func Value[T any](field func(*T) *any) Setter[T] {
	return func(dst *T, v any) error {
		*field(dst) = v
		return nil
	}
}

func String[T any](field func(*T) *string) Setter[T] {
	return func(dst *T, v any) error {
		s, ok := v.(string)
		if !ok {
			return mismatch("string", v)
		}
		*field(dst) = s
		return nil
	}
}

func Bool[T any](field func(*T) *bool) Setter[T] {
	return func(dst *T, v any) error {
		b, ok := v.(bool)
		if !ok {
			return mismatch("bool", v)
		}
		*field(dst) = b
		return nil
	}
}

// Int accepts any integral value that fits in an int64.
func Int[T any](field func(*T) *int64) Setter[T] {
	return func(dst *T, v any) error {
		i, ok := toInt64(v)
		if !ok {
			return mismatch("integer", v)
		}
		*field(dst) = i
		return nil
	}
}

func Float[T any](field func(*T) *float64) Setter[T] {
	return func(dst *T, v any) error {
		f, ok := toFloat64(v)
		if !ok {
			return mismatch("number", v)
		}
		*field(dst) = f
		return nil
	}
}

func toInt64(v any) (int64, bool) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		// 26.0 is integral but not an int64 literal
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt64(rv.Float())
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

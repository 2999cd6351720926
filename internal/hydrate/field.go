package hydrate

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrDuplicateField is returned when a spec declares the same field name twice.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrEmptyFieldName is returned when a spec declares a field without a name.
	ErrEmptyFieldName = errors.New("empty field name")
	// ErrInvalidDefault is returned when a default does not fit its field's type.
	ErrInvalidDefault = errors.New("invalid default")
)

// FieldSpec describes a single field of a record type.
type FieldSpec struct {
	Name       string
	Required   bool
	Type       FieldType
	Nullable   bool
	Default    any
	HasDefault bool
}

// Required declares a field of any type that is reported missing when the
// payload has no entry for it and it has no default.
func Required(name string) FieldSpec {
	return FieldSpec{Name: name, Required: true, Type: TypeAny}
}

// Optional declares a field of any type that is simply left unset when the
// payload has no entry for it.
func Optional(name string) FieldSpec {
	return FieldSpec{Name: name, Type: TypeAny}
}

// WithDefault returns a copy of f that falls back to v when the payload
// has no entry for the field. A nil v is a valid default.
func (f FieldSpec) WithDefault(v any) FieldSpec {
	f.Default = v
	f.HasDefault = true
	return f
}

// OfType returns a copy of f whose values must have the shape t describes.
func (f FieldSpec) OfType(t FieldType) FieldSpec {
	f.Type = t
	return f
}

// AllowNull returns a copy of f that accepts null regardless of its type.
func (f FieldSpec) AllowNull() FieldSpec {
	f.Nullable = true
	return f
}

// accepts reports whether v may be assigned to the field as-is.
func (f FieldSpec) accepts(v any) error {
	if v == nil {
		if f.Type == TypeAny || f.Nullable {
			return nil
		}
		return fmt.Errorf("%w: expected %s, got null", ErrTypeMismatch, f.Type)
	}
	if !f.Type.Matches(v) {
		return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, f.Type, v)
	}
	return nil
}

// Spec is an ordered set of uniquely named fields describing a record type.
// It is immutable once built and safe for concurrent use.
type Spec struct {
	fields []FieldSpec
	index  map[string]int
}

// NewSpec validates fields and builds a Spec. Configuration errors (duplicate
// or empty names, unknown types, defaults that do not fit their type) are
// reported here so hydration itself never has to fail.
func NewSpec(fields ...FieldSpec) (*Spec, error) {
	s := &Spec{
		fields: make([]FieldSpec, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, ErrEmptyFieldName
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		if f.Type == "" {
			f.Type = TypeAny
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("field %q: %w: %q", f.Name, ErrUnknownType, f.Type)
		}
		if f.HasDefault {
			if err := f.accepts(f.Default); err != nil {
				return nil, fmt.Errorf("field %q: %w: %v", f.Name, ErrInvalidDefault, err)
			}
			f.Default = cloneValue(f.Default)
		}

		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	return s, nil
}

// MustSpec is like NewSpec but panics on error. It is meant for specs
// declared as package level variables.
func MustSpec(fields ...FieldSpec) *Spec {
	s, err := NewSpec(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Spec) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the field specs in declaration order.
func (s *Spec) Fields() []FieldSpec {
	fields := make([]FieldSpec, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f.clone()
	}
	return fields
}

func (s *Spec) Lookup(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i].clone(), true
}

func (s *Spec) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (f FieldSpec) clone() FieldSpec {
	f.Default = cloneValue(f.Default)
	return f
}

// cloneValue deep copies the maps and slices inside v. Scalars are
// returned as is.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	return cloneReflect(reflect.ValueOf(v)).Interface()
}

func cloneReflect(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(cloneReflect(rv.Elem()))
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		m := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return m
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		s := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s.Index(i).Set(cloneReflect(rv.Index(i)))
		}
		return s
	}
	return rv
}

package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

var ErrUnknownType = errors.New("unknown field type")

// FieldType is the declared shape of a field value. Types are checked, never
// coerced: a value is assigned exactly as it was received.
type FieldType string

const (
	TypeAny     FieldType = "any"
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBool    FieldType = "bool"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

func ParseFieldType(s string) (FieldType, error) {
	switch t := FieldType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeAny, nil
	case "boolean":
		return TypeBool, nil
	case "int":
		return TypeInteger, nil
	case TypeAny, TypeString, TypeNumber, TypeInteger, TypeBool, TypeObject, TypeArray:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

func (t FieldType) Valid() bool {
	switch t {
	case TypeAny, TypeString, TypeNumber, TypeInteger, TypeBool, TypeObject, TypeArray:
		return true
	}
	return false
}

// Matches reports whether v has the shape t describes. Every decoder in the
// payload package produces values this check understands: json.Number,
// sized integers, maps with string keys and slices.
func (t FieldType) Matches(v any) bool {
	if t == TypeAny {
		return true
	}
	if v == nil {
		return false
	}

	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeNumber:
		return isNumber(v)
	case TypeInteger:
		return isInteger(v)
	}

	rv := reflect.ValueOf(v)
	switch t {
	case TypeObject:
		return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
	case TypeArray:
		if rv.Kind() == reflect.Array {
			return true
		}
		// []byte is binary data, not a list
		return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

func isNumber(v any) bool {
	if n, ok := v.(json.Number); ok {
		_, err := n.Float64()
		return err == nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isInteger(v any) bool {
	if n, ok := v.(json.Number); ok {
		if _, err := n.Int64(); err == nil {
			return true
		}
		f, err := n.Float64()
		return err == nil && f == math.Trunc(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return false
}

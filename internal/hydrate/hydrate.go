package hydrate

import (
	"encoding/json"
	"sort"

	"github.com/turbolytics/hydrator/internal"
)

// Payload is loosely typed key/value data received from an external source,
// e.g. a decoded API response.
type Payload map[string]any

// Origin records where the value of a field came from.
type Origin string

const (
	OriginPayload  Origin = "payload"
	OriginDefault  Origin = "default"
	OriginMissing  Origin = "missing"
	OriginMismatch Origin = "mismatch"
	// OriginUnset marks an optional field with neither a payload entry nor
	// a default. It is not a discrepancy.
	OriginUnset Origin = "unset"
)

// Result is the outcome of a single hydration: the record that was built
// and every discrepancy found while building it.
type Result struct {
	Record *internal.Record

	// Missing lists required fields without a payload entry or default,
	// in declaration order.
	Missing []string
	// Unknown lists payload keys that match no field, sorted.
	Unknown []string
	// Mismatched lists fields whose payload value did not fit the declared
	// type, in declaration order.
	Mismatched []string

	origins map[string]Origin
	issues  []*FieldError
}

// Origin reports how the named field was resolved. The second return value
// is false when the field is not part of the spec.
func (r *Result) Origin(field string) (Origin, bool) {
	o, ok := r.origins[field]
	return o, ok
}

// Issues returns every discrepancy: field issues in declaration order
// followed by unknown keys.
func (r *Result) Issues() []*FieldError {
	issues := make([]*FieldError, len(r.issues))
	copy(issues, r.issues)
	return issues
}

// OK reports whether hydration found no discrepancy at all.
func (r *Result) OK() bool {
	return len(r.issues) == 0
}

// Err returns the discrepancies p rejects combined into one error, or nil
// when the result is acceptable under p.
func (r *Result) Err(p Policy) error {
	return combine(p, r.issues)
}

type issueJSON struct {
	Kind  Kind   `json:"kind"`
	Field string `json:"field"`
	Error string `json:"error"`
}

func (r *Result) MarshalJSON() ([]byte, error) {
	issues := make([]issueJSON, 0, len(r.issues))
	for _, i := range r.issues {
		issues = append(issues, issueJSON{
			Kind:  i.Kind,
			Field: i.Field,
			Error: i.Err.Error(),
		})
	}

	return json.Marshal(struct {
		Record     map[string]any `json:"record"`
		Missing    []string       `json:"missing"`
		Unknown    []string       `json:"unknown"`
		Mismatched []string       `json:"mismatched"`
		Issues     []issueJSON    `json:"issues"`
	}{
		Record:     r.Record.Map(),
		Missing:    nonNil(r.Missing),
		Unknown:    nonNil(r.Unknown),
		Mismatched: nonNil(r.Mismatched),
		Issues:     issues,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Hydrate assigns every payload entry to the field of the same name and
// reports what could not be resolved. It never fails: missing fields,
// unknown keys and type mismatches are all collected in the result.
// Hydrate does not mutate its arguments and is safe for concurrent use.
// Defaults are copied into each record, so a result never shares mutable
// state with the spec or with other results. spec must not be nil.
func Hydrate(spec *Spec, payload Payload) *Result {
	return hydrate(spec, payload, nil)
}

// assignFunc lets a caller veto a value before it lands in the record.
type assignFunc func(field string, value any) error

func hydrate(spec *Spec, payload Payload, assign assignFunc) *Result {
	if spec == nil {
		panic("hydrate: nil spec")
	}

	r := &Result{
		origins: make(map[string]Origin, spec.Len()),
	}

	var (
		fields []string
		values []any
	)

	set := func(f FieldSpec, v any, o Origin) {
		err := f.accepts(v)
		// null leaves a bound Go field at its zero value
		if err == nil && assign != nil && v != nil {
			err = assign(f.Name, v)
		}
		if err != nil {
			r.origins[f.Name] = OriginMismatch
			r.Mismatched = append(r.Mismatched, f.Name)
			r.issues = append(r.issues, &FieldError{
				Kind:  KindTypeMismatch,
				Field: f.Name,
				Err:   err,
			})
			return
		}
		r.origins[f.Name] = o
		fields = append(fields, f.Name)
		values = append(values, v)
	}

	for _, f := range spec.fields {
		if v, ok := payload[f.Name]; ok {
			set(f, v, OriginPayload)
			continue
		}
		if f.HasDefault {
			set(f, cloneValue(f.Default), OriginDefault)
			continue
		}
		if f.Required {
			r.origins[f.Name] = OriginMissing
			r.Missing = append(r.Missing, f.Name)
			r.issues = append(r.issues, &FieldError{
				Kind:  KindMissing,
				Field: f.Name,
				Err:   ErrMissingField,
			})
			continue
		}
		r.origins[f.Name] = OriginUnset
	}

	for key := range payload {
		if _, ok := spec.index[key]; !ok {
			r.Unknown = append(r.Unknown, key)
		}
	}
	sort.Strings(r.Unknown)
	for _, key := range r.Unknown {
		r.issues = append(r.issues, &FieldError{
			Kind:  KindUnknown,
			Field: key,
			Err:   ErrUnknownKey,
		})
	}

	r.Record = internal.NewRecord(fields, values)
	return r
}

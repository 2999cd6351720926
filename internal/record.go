package internal

// Record is a struct that contains a set of fields and their corresponding values.
// It is the product of a hydration: one entry per assigned field.
// Field order follows the declaration order of the spec that built it, so
// we keep fields and values in separate slices.
type Record struct {
	fields []string
	values []any
}

func NewRecord(fields []string, values []any) *Record {
	f := make([]string, len(fields))
	copy(f, fields)
	v := make([]any, len(values))
	copy(v, values)
	return &Record{
		fields: f,
		values: v,
	}
}

func (r *Record) Len() int {
	return len(r.fields)
}

// Fields returns a copy of the assigned field names in order.
func (r *Record) Fields() []string {
	f := make([]string, len(r.fields))
	copy(f, r.fields)
	return f
}

// Values returns a copy of the assigned values, aligned with Fields.
func (r *Record) Values() []any {
	v := make([]any, len(r.values))
	copy(v, r.values)
	return v
}

func (r *Record) Get(field string) (any, bool) {
	for i, f := range r.fields {
		if f == field {
			return r.values[i], true
		}
	}
	return nil, false
}

func (r *Record) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for i, field := range r.fields {
		m[field] = r.values[i]
	}
	return m
}

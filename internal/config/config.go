package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turbolytics/hydrator/internal/hydrate"
)

var ErrUnknownRecord = errors.New("unknown record")

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

// Field is the yaml form of a hydrate.FieldSpec.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
	// Default is kept as a yaml node so an explicit `default: null` can be
	// told apart from no default at all.
	Default yaml.Node `yaml:"default,omitempty"`
}

type Record struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

type Hydrator struct {
	Global  Global   `yaml:"global"`
	Policy  string   `yaml:"policy"`
	Records []Record `yaml:"records"`
}

func NewHydratorFromFile(fpath string) (*Hydrator, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	return NewHydrator(bs)
}

func NewHydrator(bs []byte) (*Hydrator, error) {
	var h Hydrator
	if err := yaml.Unmarshal(bs, &h); err != nil {
		return nil, err
	}

	if _, err := hydrate.ParsePolicy(h.Policy); err != nil {
		return nil, err
	}

	return &h, nil
}

func (h *Hydrator) Record(name string) (Record, error) {
	for _, r := range h.Records {
		if r.Name == name {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %q", ErrUnknownRecord, name)
}

// Specs builds a spec for every configured record, keyed by record name.
func (h *Hydrator) Specs() (map[string]*hydrate.Spec, error) {
	specs := make(map[string]*hydrate.Spec, len(h.Records))
	for _, r := range h.Records {
		if r.Name == "" {
			return nil, errors.New("record without a name")
		}
		if _, ok := specs[r.Name]; ok {
			return nil, fmt.Errorf("duplicate record %q", r.Name)
		}
		s, err := r.Spec()
		if err != nil {
			return nil, err
		}
		specs[r.Name] = s
	}
	return specs, nil
}

func (h *Hydrator) ParsedPolicy() hydrate.Policy {
	// validated by NewHydrator
	p, _ := hydrate.ParsePolicy(h.Policy)
	return p
}

func (r Record) Spec() (*hydrate.Spec, error) {
	fields := make([]hydrate.FieldSpec, len(r.Fields))
	for i, f := range r.Fields {
		fs, err := f.FieldSpec()
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Name, err)
		}
		fields[i] = fs
	}

	s, err := hydrate.NewSpec(fields...)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", r.Name, err)
	}
	return s, nil
}

func (f Field) FieldSpec() (hydrate.FieldSpec, error) {
	t, err := hydrate.ParseFieldType(f.Type)
	if err != nil {
		return hydrate.FieldSpec{}, fmt.Errorf("field %q: %w", f.Name, err)
	}

	fs := hydrate.FieldSpec{
		Name:     f.Name,
		Required: f.Required,
		Type:     t,
		Nullable: f.Nullable,
	}

	if f.HasDefault() {
		var v any
		if err := f.Default.Decode(&v); err != nil {
			return hydrate.FieldSpec{}, fmt.Errorf("field %q default: %w", f.Name, err)
		}
		fs = fs.WithDefault(v)
	}
	return fs, nil
}

func (f Field) HasDefault() bool {
	return f.Default.Kind != 0
}

// FieldsFromSpec converts a spec back into its yaml form.
func FieldsFromSpec(s *hydrate.Spec) ([]Field, error) {
	specs := s.Fields()
	fields := make([]Field, len(specs))
	for i, fs := range specs {
		f := Field{
			Name:     fs.Name,
			Required: fs.Required,
			Nullable: fs.Nullable,
		}
		if fs.Type != hydrate.TypeAny {
			f.Type = string(fs.Type)
		}
		if fs.HasDefault {
			var n yaml.Node
			if err := n.Encode(fs.Default); err != nil {
				return nil, fmt.Errorf("field %q default: %w", fs.Name, err)
			}
			f.Default = n
		}
		fields[i] = f
	}
	return fields, nil
}

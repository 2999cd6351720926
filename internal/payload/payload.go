package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/hydrator/internal/hydrate"
)

var (
	ErrUnknownFormat = errors.New("unknown payload format")
	ErrNotAnObject   = errors.New("payload is not an object")
	ErrTrailingData  = errors.New("trailing data after payload")
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatNDJSON  Format = "ndjson"
	FormatYAML    Format = "yaml"
	FormatBSON    Format = "bson"
	FormatExtJSON Format = "extjson"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case "yml":
		return FormatYAML, nil
	case "jsonl":
		return FormatNDJSON, nil
	case FormatNDJSON, FormatYAML, FormatBSON, FormatExtJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Decode reads a single payload document from r. Values are kept as the
// decoder produced them; JSON numbers stay json.Number so no precision is
// lost before hydration.
func Decode(format Format, r io.Reader) (hydrate.Payload, error) {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		p, err := decodeJSON(dec)
		if err != nil {
			return nil, err
		}
		if err := expectEOF(dec); err != nil {
			return nil, err
		}
		return p, nil
	case FormatNDJSON:
		payloads, err := DecodeAll(format, r)
		if err != nil {
			return nil, err
		}
		if len(payloads) != 1 {
			return nil, fmt.Errorf("expected 1 ndjson document, got %d", len(payloads))
		}
		return payloads[0], nil
	case FormatYAML:
		var m map[string]any
		if err := yaml.NewDecoder(r).Decode(&m); err != nil {
			return nil, fmt.Errorf("decoding yaml payload: %w", err)
		}
		return normalize(m), nil
	case FormatBSON, FormatExtJSON:
		bs, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return decodeBSON(format, bs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// DecodeAll reads every payload document from r. For ndjson that is one
// object per line, for json a single object or an array of objects; other
// formats hold exactly one document.
func DecodeAll(format Format, r io.Reader) ([]hydrate.Payload, error) {
	switch format {
	case FormatNDJSON:
		dec := json.NewDecoder(r)

		var payloads []hydrate.Payload
		for {
			p, err := decodeJSON(dec)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("document %d: %w", len(payloads)+1, err)
			}
			payloads = append(payloads, p)
		}
		return payloads, nil
	case FormatJSON:
		bs, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(bs)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			dec := json.NewDecoder(bytes.NewReader(trimmed))
			dec.UseNumber()
			var docs []any
			if err := dec.Decode(&docs); err != nil {
				return nil, fmt.Errorf("decoding json payloads: %w", err)
			}
			if err := expectEOF(dec); err != nil {
				return nil, err
			}
			payloads := make([]hydrate.Payload, len(docs))
			for i, doc := range docs {
				m, ok := doc.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("document %d: %w", i+1, ErrNotAnObject)
				}
				payloads[i] = m
			}
			return payloads, nil
		}
		p, err := Decode(format, bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return []hydrate.Payload{p}, nil
	default:
		p, err := Decode(format, r)
		if err != nil {
			return nil, err
		}
		return []hydrate.Payload{p}, nil
	}
}

func decodeJSON(dec *json.Decoder) (hydrate.Payload, error) {
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("decoding json payload: %w", err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, ErrNotAnObject
	}
	return m, nil
}

// expectEOF fails when anything but whitespace follows the document dec
// just read. Concatenated json documents belong in ndjson.
func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

func decodeBSON(format Format, bs []byte) (hydrate.Payload, error) {
	var d bson.D
	var err error
	if format == FormatExtJSON {
		err = bson.UnmarshalExtJSON(bs, false, &d)
	} else {
		err = bson.Unmarshal(bs, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", format, err)
	}
	return normalizeBSON(d).(map[string]any), nil
}

// normalizeBSON turns ordered documents and arrays into plain maps and
// slices so field type checks see the same shapes as for JSON.
func normalizeBSON(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalizeBSON(e)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = normalizeBSON(e)
		}
		return s
	}
	return v
}

// normalize rewrites the map[any]any yaml may produce for nested documents
// with non-string keys.
func normalize(m map[string]any) hydrate.Payload {
	p := make(hydrate.Payload, len(m))
	for k, v := range m {
		p[k] = normalizeValue(v)
	}
	return p
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(normalize(t))
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = normalizeValue(e)
		}
		return s
	}
	return v
}

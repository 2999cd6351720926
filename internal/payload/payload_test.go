package payload

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/turbolytics/hydrator/internal/hydrate"
)

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in   string
		want Format
	}{
		{"", FormatJSON},
		{"JSON", FormatJSON},
		{"yml", FormatYAML},
		{"jsonl", FormatNDJSON},
		{"bson", FormatBSON},
		{"extjson", FormatExtJSON},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			f, err := ParseFormat(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, f)
		})
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecode(t *testing.T) {
	t.Run("json keeps numbers intact", func(t *testing.T) {
		p, err := Decode(FormatJSON, strings.NewReader(`{"name":"Sophie","age":26,"id":9007199254740993}`))
		require.NoError(t, err)

		assert.Equal(t, "Sophie", p["name"])
		assert.Equal(t, json.Number("26"), p["age"])
		assert.Equal(t, json.Number("9007199254740993"), p["id"])
	})

	t.Run("json must be an object", func(t *testing.T) {
		_, err := Decode(FormatJSON, strings.NewReader(`[1,2]`))
		assert.ErrorIs(t, err, ErrNotAnObject)
	})

	t.Run("json rejects trailing data", func(t *testing.T) {
		for _, in := range []string{
			`{"name":"a"}{"name":"b"}`,
			`{"name":"a"},{"name":"b"}`,
			`{"name":"a"} garbage`,
		} {
			_, err := Decode(FormatJSON, strings.NewReader(in))
			assert.ErrorIs(t, err, ErrTrailingData, in)
		}

		p, err := Decode(FormatJSON, strings.NewReader("{\"name\":\"a\"}\n\t "))
		require.NoError(t, err)
		assert.Equal(t, "a", p["name"])
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Decode(FormatJSON, strings.NewReader(`{"name":`))
		assert.Error(t, err)
	})

	t.Run("yaml", func(t *testing.T) {
		p, err := Decode(FormatYAML, strings.NewReader("name: Sophie\nage: 26\naddress:\n  city: Paris\n"))
		require.NoError(t, err)

		assert.Equal(t, hydrate.Payload{
			"name":    "Sophie",
			"age":     26,
			"address": map[string]any{"city": "Paris"},
		}, p)
	})

	t.Run("bson", func(t *testing.T) {
		bs, err := bson.Marshal(bson.D{
			{Key: "name", Value: "Sophie"},
			{Key: "age", Value: int32(26)},
			{Key: "tags", Value: bson.A{"a", "b"}},
			{Key: "address", Value: bson.D{{Key: "city", Value: "Paris"}}},
		})
		require.NoError(t, err)

		p, err := Decode(FormatBSON, bytes.NewReader(bs))
		require.NoError(t, err)

		assert.Equal(t, hydrate.Payload{
			"name":    "Sophie",
			"age":     int32(26),
			"tags":    []any{"a", "b"},
			"address": map[string]any{"city": "Paris"},
		}, p)
	})

	t.Run("extended json", func(t *testing.T) {
		p, err := Decode(FormatExtJSON, strings.NewReader(`{"name":"Sophie","age":{"$numberLong":"26"}}`))
		require.NoError(t, err)

		assert.Equal(t, "Sophie", p["name"])
		assert.Equal(t, int64(26), p["age"])
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Decode(Format("xml"), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestDecodeAll(t *testing.T) {
	t.Run("ndjson", func(t *testing.T) {
		in := "{\"name\":\"a\"}\n{\"name\":\"b\"}\n\n{\"name\":\"c\"}\n"
		ps, err := DecodeAll(FormatNDJSON, strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, ps, 3)
		assert.Equal(t, "c", ps[2]["name"])
	})

	t.Run("ndjson reports the bad document", func(t *testing.T) {
		_, err := DecodeAll(FormatNDJSON, strings.NewReader("{\"name\":\"a\"}\n42\n"))
		assert.ErrorIs(t, err, ErrNotAnObject)
		assert.Contains(t, err.Error(), "document 2")
	})

	t.Run("json array", func(t *testing.T) {
		ps, err := DecodeAll(FormatJSON, strings.NewReader(` [{"age":1},{"age":2}]`))
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, json.Number("2"), ps[1]["age"])
	})

	t.Run("json object", func(t *testing.T) {
		ps, err := DecodeAll(FormatJSON, strings.NewReader(`{"age":1}`))
		require.NoError(t, err)
		require.Len(t, ps, 1)
	})

	t.Run("json rejects concatenated documents", func(t *testing.T) {
		_, err := DecodeAll(FormatJSON, strings.NewReader(`{"name":"a"}{"name":"b"}`))
		assert.ErrorIs(t, err, ErrTrailingData)

		_, err = DecodeAll(FormatJSON, strings.NewReader(`[{"name":"a"}] [{"name":"b"}]`))
		assert.ErrorIs(t, err, ErrTrailingData)
	})

	t.Run("yaml", func(t *testing.T) {
		ps, err := DecodeAll(FormatYAML, strings.NewReader("age: 1\n"))
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, 1, ps[0]["age"])
	})
}

func TestDecodedPayloadsHydrate(t *testing.T) {
	s, err := hydrate.NewSpec(
		hydrate.Required("name").OfType(hydrate.TypeString),
		hydrate.Required("age").OfType(hydrate.TypeInteger),
		hydrate.Optional("address").OfType(hydrate.TypeObject),
	)
	require.NoError(t, err)

	bs, err := bson.Marshal(bson.M{"name": "Sophie", "age": int64(26), "address": bson.M{"city": "Paris"}})
	require.NoError(t, err)

	inputs := map[Format]string{
		FormatJSON:    `{"name":"Sophie","age":26,"address":{"city":"Paris"}}`,
		FormatYAML:    "name: Sophie\nage: 26\naddress:\n  city: Paris\n",
		FormatExtJSON: `{"name":"Sophie","age":26,"address":{"city":"Paris"}}`,
		FormatBSON:    string(bs),
	}

	for format, in := range inputs {
		t.Run(string(format), func(t *testing.T) {
			p, err := Decode(format, strings.NewReader(in))
			require.NoError(t, err)

			r := hydrate.Hydrate(s, p)
			assert.True(t, r.OK(), "issues: %v", r.Issues())
			assert.Equal(t, 3, r.Record.Len())
		})
	}
}

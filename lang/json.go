package lang

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/ardnew/docxform/value"
)

// Member is a key/value pair of a JSON object.
type Member struct {
	Value any
	Key   string
}

// Object is a JSON object with its members in document order.
type Object []Member

// Get returns the value of the first member named key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}

	return nil, false
}

// Keys returns the member names in document order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}

	return keys
}

// Plain converts v, a tree returned by [Decode], to plain Go values: objects
// become map[string]any and arrays []any.
func Plain(v any) any {
	switch t := v.(type) {
	case Object:
		m := make(map[string]any, len(t))
		for _, mem := range t {
			m[mem.Key] = Plain(mem.Value)
		}

		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}

		return out
	default:
		return v
	}
}

// Decode reads a single JSON value from r, keeping object members in
// document order. Numbers are parsed with [value.ParseNumber], so integers
// too large for int64 and long decimals keep their precision.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrReadInput.With(slog.String("issue", "trailing data after JSON value"))
	}

	return v, nil
}

// DecodeBytes is [Decode] for an in-memory document.
func DecodeBytes(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, errors.New("unexpected delimiter " + t.String())
		}
	case json.Number:
		return value.ParseNumber(t.String())
	case float64:
		return t, nil
	default:
		// string, bool or nil
		return t, nil
	}
}

func decodeObject(dec *json.Decoder) (Object, error) {
	obj := Object{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}

		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		obj = append(obj, Member{Key: key, Value: v})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}

	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}

		arr = append(arr, v)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return arr, nil
}

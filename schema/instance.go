package schema

import (
	"bytes"
	"log/slog"
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/value"
)

// Instance is a value of a schema type: a set of property values checked
// against the type's descriptor.
type Instance struct {
	desc   *Descriptor
	values map[string]any
}

// Type returns the descriptor of the instance.
func (x *Instance) Type() *Descriptor { return x.desc }

// Get returns the value of the property named name, if set.
func (x *Instance) Get(name string) (any, bool) {
	v, ok := x.values[name]

	return v, ok
}

// Has reports whether the property named name is set.
func (x *Instance) Has(name string) bool {
	_, ok := x.values[name]

	return ok
}

// Names returns the names of the set properties in serialization order.
func (x *Instance) Names() []string {
	var names []string

	for _, p := range x.desc.Properties {
		if _, ok := x.values[p.Name]; ok {
			names = append(names, p.Name)
		}
	}

	return names
}

// Set assigns v to the property named name, converting scalars to the
// property's kind. A list property accepts a list or a single element.
func (x *Instance) Set(name string, v any) error {
	p, ok := x.desc.Property(name)
	if !ok {
		return ErrUnknownProperty.With(
			slog.String("type", x.desc.Name),
			slog.String("property", name),
		)
	}

	if !p.List {
		c, err := coerce(x.desc, p, v)
		if err != nil {
			return err
		}

		x.values[name] = c

		return nil
	}

	items := value.List(v)
	list := make([]any, 0, len(items))

	for _, item := range items {
		c, err := coerce(x.desc, p, item)
		if err != nil {
			return err
		}

		list = append(list, c)
	}

	x.values[name] = list

	return nil
}

// Append adds items to the list property named name.
func (x *Instance) Append(name string, items ...any) error {
	prev, _ := x.values[name].([]any)

	return x.Set(name, append(slices.Clone(prev), items...))
}

// Plain returns the instance as nested maps, lists and scalars.
func (x *Instance) Plain() map[string]any {
	m := make(map[string]any, len(x.values)+1)
	if x.desc.ModelType {
		m["modelType"] = map[string]any{"name": x.desc.Name}
	}

	for k, v := range x.values {
		m[k] = plain(v)
	}

	return m
}

func plain(v any) any {
	switch t := v.(type) {
	case *Instance:
		return t.Plain()
	case lang.Object:
		return lang.Plain(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}

		return out
	default:
		return v
	}
}

// MarshalJSON writes the set properties in serialization order, preceded
// by the modelType of types that carry one.
func (x *Instance) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	first := true
	member := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		k, err := json.Marshal(key)
		if err != nil {
			return err
		}

		buf.Write(k)
		buf.WriteByte(':')

		return encodeJSON(&buf, v)
	}

	if x.desc.ModelType {
		if err := member("modelType", lang.Object{{Key: "name", Value: x.desc.Name}}); err != nil {
			return nil, err
		}
	}

	for _, name := range x.Names() {
		if err := member(name, x.values[name]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *Instance:
		b, err := t.MarshalJSON()
		if err != nil {
			return err
		}

		buf.Write(b)

	case lang.Object:
		buf.WriteByte('{')

		for i, m := range t {
			if i > 0 {
				buf.WriteByte(',')
			}

			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}

			buf.Write(k)
			buf.WriteByte(':')

			if err := encodeJSON(buf, m.Value); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

	case []any:
		buf.WriteByte('[')

		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := encodeJSON(buf, e); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

	default:
		b, err := json.Marshal(lang.JSONValue(t))
		if err != nil {
			return err
		}

		buf.Write(b)
	}

	return nil
}

// MarshalYAML returns the instance as an ordered YAML mapping.
func (x *Instance) MarshalYAML() (any, error) {
	var out yaml.MapSlice

	if x.desc.ModelType {
		out = append(out, yaml.MapItem{
			Key:   "modelType",
			Value: yaml.MapSlice{{Key: "name", Value: x.desc.Name}},
		})
	}

	for _, name := range x.Names() {
		out = append(out, yaml.MapItem{Key: name, Value: yamlValue(x.values[name])})
	}

	return out, nil
}

func yamlValue(v any) any {
	switch t := v.(type) {
	case *Instance:
		m, _ := t.MarshalYAML()

		return m
	case lang.Object:
		out := make(yaml.MapSlice, len(t))
		for i, m := range t {
			out[i] = yaml.MapItem{Key: m.Key, Value: yamlValue(m.Value)}
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = yamlValue(e)
		}

		return out
	case nil, bool, string, int64, float64:
		return t
	default:
		return value.String(t)
	}
}

// LogValue identifies the instance by type and set properties.
func (x *Instance) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", x.desc.Name),
		slog.Any("properties", x.Names()),
	)
}

// coerce converts v to a single element of property p of type d.
func coerce(d *Descriptor, p Property, v any) (any, error) {
	invalid := func(cause error) (any, error) {
		return nil, ErrPropertyValue.Wrap(cause).With(
			slog.String("type", d.Name),
			slog.Any("property", p),
			slog.String("value", value.String(v)),
		)
	}

	if n, ok := v.(value.Node); ok && p.StringCoercible() {
		v = n.StringValue()
	}

	switch p.Kind {
	case KindString:
		switch v.(type) {
		case *Instance, lang.Object, []any:
			return invalid(nil)
		}

		return value.String(v), nil

	case KindInt:
		i, err := value.Int(v)
		if err != nil {
			return invalid(err)
		}

		return i, nil

	case KindFloat:
		f, err := value.Float(v)
		if err != nil {
			return invalid(err)
		}

		return f, nil

	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return invalid(err)
			}

			return b, nil
		default:
			return invalid(nil)
		}

	case KindObject:
		switch t := v.(type) {
		case *Instance:
			return t, nil
		case lang.Object:
			if d.reg == nil {
				return t, nil
			}

			return d.reg.FromObject(p.Type, t)
		default:
			return invalid(nil)
		}

	default:
		switch t := v.(type) {
		case *big.Int, *apd.Decimal:
			return value.String(t), nil
		default:
			return v, nil
		}
	}
}

// fromString converts the bound string s to a value of property p. Object
// and list properties take a JSON document.
func fromString(d *Descriptor, p Property, s string) (any, error) {
	if p.List || !p.StringCoercible() {
		raw, err := lang.DecodeBytes([]byte(s))
		if err == nil {
			if _, isList := raw.([]any); isList || !p.List {
				if p.List {
					return coerceList(d, p, raw.([]any))
				}

				return coerce(d, p, raw)
			}
		}

		if !p.List {
			return nil, ErrPropertyValue.Wrap(err).With(
				slog.String("type", d.Name),
				slog.Any("property", p),
				slog.String("value", s),
			)
		}
	}

	if p.List {
		return coerceList(d, p, []any{s})
	}

	return coerce(d, p, s)
}

func coerceList(d *Descriptor, p Property, items []any) ([]any, error) {
	out := make([]any, 0, len(items))

	for _, item := range items {
		c, err := coerce(d, p, item)
		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

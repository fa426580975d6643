package mapping

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/schema"
	"github.com/ardnew/docxform/value"
)

//nolint:gochecknoglobals
var directives = []string{KeyForeach, KeyBind, KeyDefinitions, KeyVariables}

//nolint:gochecknoglobals
var headerKeys = []string{
	KeyNamespaces, KeyParameters, KeyVersion, KeyAASVersion,
	KeyDefinitions, KeyVariables,
}

type loader struct {
	logger log.Logger
	reg    *schema.Registry
	parse  []lang.ParseOption
}

// Parse builds a specification from a JSON tree returned by [lang.Decode].
//
// The tree is an object holding an optional @header member and exactly one
// other member, the root template, whose target type is the registry's root
// type. Expressions are parsed and @bind keys are checked against the target
// types, so every malformed expression and unknown property is reported
// before a document is read.
func Parse(ctx context.Context, raw any, opts ...Option) (*Specification, error) {
	o := makeOptions(opts...)

	top, ok := raw.(lang.Object)
	if !ok {
		return nil, ErrInvalidSpecification.With(slog.String("issue", "not a JSON object"))
	}

	l := &loader{
		logger: o.logger,
		reg:    o.registry,
		parse:  []lang.ParseOption{lang.WithNames(declaredNames(raw)...)},
	}

	spec := &Specification{}

	for _, m := range top {
		if m.Key == KeyHeader {
			if err := l.header(&spec.Header, m.Value); err != nil {
				return nil, err
			}

			continue
		}

		if spec.Root != nil {
			return nil, ErrMultipleRoots.With(
				slog.String("root", spec.RootKey),
				slog.String("key", m.Key),
			)
		}

		obj, ok := m.Value.(lang.Object)
		if !ok {
			return nil, ErrInvalidTemplate.With(slog.String("path", m.Key))
		}

		root, err := l.reg.Root()
		if err != nil {
			return nil, err
		}

		if spec.Root, err = l.object(root.Name, obj, m.Key); err != nil {
			return nil, err
		}

		spec.RootKey = m.Key
	}

	if spec.Root == nil {
		return nil, ErrMissingRoot
	}

	l.logger.DebugContext(ctx, "mapping specification loaded",
		slog.String("root", spec.RootKey),
		slog.String("version", spec.Header.Version),
		slog.Int("parameters", len(spec.Header.Parameters)),
	)

	return spec, nil
}

func (l *loader) header(h *Header, raw any) error {
	obj, ok := raw.(lang.Object)
	if !ok {
		return ErrInvalidHeader.With(slog.String("issue", "not a JSON object"))
	}

	for _, m := range obj {
		var err error

		switch m.Key {
		case KeyNamespaces:
			h.Namespaces, err = namespaces(m.Value)
		case KeyParameters:
			h.Parameters, err = parameters(m.Value)
		case KeyVersion:
			h.Version, err = headerString(m.Key, m.Value)
		case KeyAASVersion:
			h.AASVersion, err = headerString(m.Key, m.Value)
		case KeyDefinitions:
			h.defs, err = l.bindings(m.Value, KeyHeader+"."+m.Key)
		case KeyVariables:
			h.vars, err = l.bindings(m.Value, KeyHeader+"."+m.Key)
		case KeyBind:
			err = ErrBindInHeader
		default:
			err = ErrInvalidHeader.With(
				slog.String("key", m.Key),
				slog.Any("suggestions", lang.Suggest(m.Key, headerKeys)),
			)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func headerString(key string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", ErrInvalidHeader.With(slog.String("key", key), slog.String("issue", "not a string"))
	}

	return s, nil
}

func namespaces(raw any) ([]Namespace, error) {
	obj, ok := raw.(lang.Object)
	if !ok {
		return nil, ErrInvalidHeader.With(slog.String("key", KeyNamespaces))
	}

	out := make([]Namespace, 0, len(obj))

	for _, m := range obj {
		uri, ok := m.Value.(string)
		if !ok || strings.TrimSpace(m.Key) == "" || strings.TrimSpace(uri) == "" {
			return nil, ErrInvalidHeader.With(
				slog.String("key", KeyNamespaces),
				slog.String("prefix", m.Key),
			)
		}

		out = append(out, Namespace{Prefix: m.Key, URI: uri})
	}

	return out, nil
}

func parameters(raw any) ([]Parameter, error) {
	obj, ok := raw.(lang.Object)
	if !ok {
		return nil, ErrInvalidHeader.With(slog.String("key", KeyParameters))
	}

	out := make([]Parameter, 0, len(obj))

	for _, m := range obj {
		desc, ok := m.Value.(string)
		if !ok && m.Value != nil {
			return nil, ErrInvalidHeader.With(
				slog.String("key", KeyParameters),
				slog.String("parameter", m.Key),
			)
		}

		out = append(out, Parameter{Name: m.Key, Description: desc})
	}

	return out, nil
}

func (l *loader) bindings(raw any, path string) ([]lang.Binding, error) {
	obj, ok := raw.(lang.Object)
	if !ok {
		return nil, ErrInvalidDirective.With(
			slog.String("path", path),
			slog.String("issue", "not a JSON object"),
		)
	}

	out := make([]lang.Binding, 0, len(obj))

	for _, m := range obj {
		e, err := l.expr(m.Value, path+"."+m.Key)
		if err != nil {
			return nil, err
		}

		out = append(out, lang.Binding{Name: m.Key, Expr: e})
	}

	return out, nil
}

func (l *loader) expr(raw any, path string) (*lang.Expression, error) {
	e, err := lang.Parse(raw, l.parse...)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	return e, nil
}

// object returns the template of a JSON object declared as base. A
// modelType member selects a subtype.
func (l *loader) object(base string, obj lang.Object, path string) (*Template, error) {
	var modelType string

	if raw, ok := obj.Get(schema.ModelTypeKey); ok {
		if modelType, ok = schema.ModelTypeName(raw); !ok {
			return nil, ErrInvalidTemplate.With(
				slog.String("path", path),
				slog.String("issue", "invalid modelType"),
			)
		}
	}

	d, err := l.reg.Resolve(base, modelType)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	return l.template(d, obj, path)
}

func (l *loader) template(d *schema.Descriptor, obj lang.Object, path string) (*Template, error) {
	t := &Template{Type: d}

	for _, m := range obj {
		var err error

		at := path + "." + m.Key

		switch m.Key {
		case schema.ModelTypeKey:
			continue
		case KeyForeach:
			t.Foreach, err = l.expr(m.Value, at)
		case KeyBind:
			t.Bind, err = l.bindings(m.Value, at)
		case KeyDefinitions:
			t.defs, err = l.bindings(m.Value, at)
		case KeyVariables:
			t.vars, err = l.bindings(m.Value, at)
		default:
			err = l.property(t, m, at)
		}

		if err != nil {
			return nil, err
		}
	}

	if err := checkBindings(d, t.Bind, path); err != nil {
		return nil, err
	}

	return t, nil
}

func (l *loader) property(t *Template, m lang.Member, path string) error {
	if strings.HasPrefix(m.Key, "@") {
		return ErrUnknownDirective.With(
			slog.String("path", path),
			slog.String("key", m.Key),
			slog.Any("suggestions", lang.Suggest(m.Key, directives)),
		)
	}

	p, ok := t.Type.Property(m.Key)
	if !ok {
		return schema.ErrUnknownProperty.With(
			slog.String("path", path),
			slog.String("type", t.Type.Name),
			slog.String("key", m.Key),
			slog.Any("suggestions", lang.Suggest(m.Key, t.Type.PropertyNames())),
		)
	}

	v, err := l.value(t.Type, p, m.Value, path)
	if err != nil {
		return err
	}

	t.Properties = append(t.Properties, Property{Name: m.Key, Value: v})

	return nil
}

// value returns the raw value of property p. Objects of object properties
// become templates. Other values are checked against the property's kind.
func (l *loader) value(d *schema.Descriptor, p schema.Property, raw any, path string) (any, error) {
	if raw == nil {
		return nil, nil
	}

	if p.Kind != schema.KindObject {
		probe := d.New()

		for _, item := range value.List(raw) {
			if err := probe.Set(p.Name, item); err != nil {
				return nil, lang.WrapError(err).With(slog.String("path", path))
			}
		}

		return raw, nil
	}

	switch t := raw.(type) {
	case lang.Object:
		return l.object(p.Type, t, path)

	case []any:
		out := make([]any, 0, len(t))

		for i, item := range t {
			v, err := l.value(d, p, item, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}

			if v != nil {
				out = append(out, v)
			}
		}

		return out, nil

	default:
		return nil, ErrInvalidTemplate.With(
			slog.String("path", path),
			slog.String("type", p.Type),
			slog.String("issue", "object property needs a JSON object"),
		)
	}
}

// checkBindings returns a [*BindingError] naming every key of bind that is
// not a property of d.
func checkBindings(d *schema.Descriptor, bind []lang.Binding, path string) error {
	var unknown []string

	for _, b := range bind {
		if _, ok := d.Property(b.Name); !ok {
			unknown = append(unknown, b.Name)
		}
	}

	if len(unknown) == 0 {
		return nil
	}

	slices.Sort(unknown)
	unknown = slices.Compact(unknown)

	suggestions := map[string][]string{}

	for _, key := range unknown {
		if s := lang.Suggest(key, d.PropertyNames()); len(s) > 0 {
			suggestions[key] = s
		}
	}

	return &BindingError{Type: d.Name, Path: path, Keys: unknown, Suggestions: suggestions}
}

// declaredNames returns the names declared by every @definitions,
// @variables and @parameters object of raw.
func declaredNames(raw any) []string {
	var names []string

	var visit func(any)

	visit = func(v any) {
		switch t := v.(type) {
		case lang.Object:
			for _, m := range t {
				switch m.Key {
				case KeyDefinitions, KeyVariables, KeyParameters:
					if obj, ok := m.Value.(lang.Object); ok {
						names = append(names, obj.Keys()...)
					}
				}

				visit(m.Value)
			}
		case []any:
			for _, e := range t {
				visit(e)
			}
		}
	}

	visit(raw)
	slices.Sort(names)

	return slices.Compact(names)
}

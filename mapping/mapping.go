package mapping

import (
	"log/slog"

	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/schema"
)

// Reserved keys of a mapping specification.
const (
	KeyHeader      = "@header"
	KeyForeach     = "@foreach"
	KeyBind        = "@bind"
	KeyDefinitions = "@definitions"
	KeyVariables   = "@variables"
	KeyNamespaces  = "@namespaces"
	KeyParameters  = "@parameters"
	KeyVersion     = "version"
	KeyAASVersion  = "aasVersion"
)

// Namespace binds an XPath prefix to a namespace URI.
type Namespace struct {
	Prefix string
	URI    string
}

// Parameter is an external input a specification requires.
type Parameter struct {
	Name        string
	Description string
}

// Header holds the settings of a specification and the definitions and
// variables of its root context.
type Header struct {
	Version    string
	AASVersion string
	Namespaces []Namespace
	Parameters []Parameter

	defs []lang.Binding
	vars []lang.Binding
}

// Definitions implements [lang.Layer].
func (h *Header) Definitions() []lang.Binding { return h.defs }

// Variables implements [lang.Layer].
func (h *Header) Variables() []lang.Binding { return h.vars }

// ParameterNames returns the names of the declared parameters.
func (h *Header) ParameterNames() []string {
	names := make([]string, len(h.Parameters))
	for i, p := range h.Parameters {
		names[i] = p.Name
	}

	return names
}

// Property is a property of a template, holding the raw value it is copied
// from: a plain value, a *Template, or a list of those.
type Property struct {
	Value any
	Name  string
}

// Template is a node of a specification: an instance of its target type
// with optional directives.
type Template struct {
	// Type is the target type the template inflates to.
	Type *schema.Descriptor
	// Foreach, if set, yields the items the template is inflated for.
	Foreach *lang.Expression
	// Bind holds the bound properties in declaration order.
	Bind []lang.Binding
	// Properties holds the remaining properties in declaration order.
	Properties []Property

	defs []lang.Binding
	vars []lang.Binding
}

// Definitions implements [lang.Layer].
func (t *Template) Definitions() []lang.Binding { return t.defs }

// Variables implements [lang.Layer].
func (t *Template) Variables() []lang.Binding { return t.vars }

// Bound reports whether the property named name is bound by @bind.
func (t *Template) Bound(name string) bool {
	for _, b := range t.Bind {
		if b.Name == name {
			return true
		}
	}

	return false
}

// LogValue identifies the template by type and directives.
func (t *Template) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", t.Type.Name)}

	if t.Foreach != nil {
		attrs = append(attrs, slog.String("foreach", t.Foreach.String()))
	}

	if len(t.Bind) > 0 {
		attrs = append(attrs, slog.Int("bind", len(t.Bind)))
	}

	return slog.GroupValue(attrs...)
}

// Specification is a loaded mapping specification. It is not modified after
// loading and may be shared between runs.
type Specification struct {
	Header Header
	// Root is the template of the output document.
	Root *Template
	// RootKey is the member the root template was read from.
	RootKey string
}

// Walk calls fn for every template of s, parents before children, until fn
// returns false.
func (s *Specification) Walk(fn func(*Template) bool) {
	if s.Root != nil {
		walk(s.Root, fn)
	}
}

func walk(t *Template, fn func(*Template) bool) bool {
	if !fn(t) {
		return false
	}

	for _, p := range t.Properties {
		if !walkValue(p.Value, fn) {
			return false
		}
	}

	return true
}

func walkValue(v any, fn func(*Template) bool) bool {
	switch t := v.(type) {
	case *Template:
		return walk(t, fn)
	case []any:
		for _, e := range t {
			if !walkValue(e, fn) {
				return false
			}
		}
	}

	return true
}

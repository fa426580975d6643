// Package schema describes the target data model of a transformation.
//
// A [Registry] maps type names to [Descriptor] values, each listing the
// properties an [Instance] of the type may carry. Templates of a mapping
// specification are checked against the descriptors at load time, and the
// transformation engine builds instances through them at run time. The
// default registry holds the Asset Administration Shell metamodel; more
// types can be loaded from YAML or JSON files with [Registry.LoadFile].
package schema

import (
	"log/slog"
	"strings"

	"github.com/ardnew/docxform/lang"
)

// Predefined errors (sentinel values).
var (
	ErrUnknownType     = lang.NewError("unknown schema type")
	ErrAbstractType    = lang.NewError("abstract schema type needs a modelType")
	ErrNotSubtype      = lang.NewError("modelType is not a subtype of the property type")
	ErrUnknownProperty = lang.NewError("unknown schema property")
	ErrPropertyValue   = lang.NewError("invalid property value")
	ErrDescriptorFile  = lang.NewError("invalid schema descriptor file")
)

// Kind is the value kind of a property.
type Kind int

const (
	// KindString holds a string.
	KindString Kind = iota
	// KindInt holds an int64.
	KindInt
	// KindFloat holds a float64.
	KindFloat
	// KindBool holds a bool.
	KindBool
	// KindObject holds an [Instance] of the property's type.
	KindObject
	// KindAny holds any JSON value.
	KindAny
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// ParseKind returns the kind named s, or false if there is none.
func ParseKind(s string) (Kind, bool) {
	for k := KindString; k <= KindAny; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, true
		}
	}

	return KindAny, false
}

// Property describes one property of a schema type.
type Property struct {
	// Name is the serialized property name.
	Name string
	// Type names the descriptor of object properties.
	Type string
	// Kind is the value kind of the property, or of its elements for list
	// properties.
	Kind Kind
	// List reports whether the property holds a list of values.
	List bool
}

// StringCoercible reports whether a bound string can be converted to a
// value of the property without further structure.
func (p Property) StringCoercible() bool {
	return p.Kind != KindObject
}

// LogValue describes the property for structured logging.
func (p Property) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", p.Name),
		slog.String("kind", p.Kind.String()),
	}

	if p.Type != "" {
		attrs = append(attrs, slog.String("type", p.Type))
	}

	if p.List {
		attrs = append(attrs, slog.Bool("list", true))
	}

	return slog.GroupValue(attrs...)
}

// Descriptor describes a schema type.
type Descriptor struct {
	// Name is the type name, also written as modelType.
	Name string
	// Extends names the supertype, if any.
	Extends string
	// Properties lists the properties in serialization order, inherited
	// properties first.
	Properties []Property
	// Abstract types are only instantiated through a concrete subtype.
	Abstract bool
	// ModelType reports whether instances serialize a modelType member.
	ModelType bool

	reg *Registry
}

// Property returns the property named name.
func (d *Descriptor) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return Property{}, false
}

// PropertyNames returns the property names in serialization order.
func (d *Descriptor) PropertyNames() []string {
	names := make([]string, len(d.Properties))
	for i, p := range d.Properties {
		names[i] = p.Name
	}

	return names
}

// New returns an empty instance of d.
func (d *Descriptor) New() *Instance {
	return &Instance{desc: d, values: map[string]any{}}
}

// FromStringMap returns an instance of d with each property of m set from
// its string form. Every key must name a property of d and every value must
// convert to the property's kind.
func (d *Descriptor) FromStringMap(m map[string]string) (*Instance, error) {
	inst := d.New()

	for _, name := range sortedKeys(m) {
		p, ok := d.Property(name)
		if !ok {
			return nil, ErrUnknownProperty.With(
				slog.String("type", d.Name),
				slog.String("property", name),
			)
		}

		v, err := fromString(d, p, m[name])
		if err != nil {
			return nil, err
		}

		inst.values[name] = v
	}

	return inst, nil
}

// LogValue identifies the descriptor by name.
func (d *Descriptor) LogValue() slog.Value {
	return slog.StringValue(d.Name)
}

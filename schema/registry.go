package schema

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/docxform/lang"
)

// ModelTypeKey is the member naming the concrete type of an object.
const ModelTypeKey = "modelType"

// Registry maps type names to descriptors. A Registry is safe for concurrent
// use.
type Registry struct {
	types map[string]*Descriptor
	root  string
	mu    sync.RWMutex
}

// NewRegistry returns a registry whose root type is root, holding ds.
func NewRegistry(root string, ds ...*Descriptor) (*Registry, error) {
	r := &Registry{types: map[string]*Descriptor{}, root: root}

	if err := r.Register(ds...); err != nil {
		return nil, err
	}

	return r, nil
}

// Root returns the descriptor of the top-level output type.
func (r *Registry) Root() (*Descriptor, error) {
	r.mu.RLock()
	root := r.root
	r.mu.RUnlock()

	return r.Lookup(root)
}

// Clone returns an independent copy of r, so types may be added to it
// without affecting r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{types: make(map[string]*Descriptor, len(r.types)), root: r.root}

	for name, d := range r.types {
		cd := *d
		cd.reg = c
		c.types[name] = &cd
	}

	return c
}

// Register adds ds to the registry in order, replacing types of the same
// name. A descriptor extending another inherits the properties of its
// supertype, which must be registered first, ahead of its own.
func (r *Registry) Register(ds ...*Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range ds {
		reg := *d
		reg.Properties = slices.Clone(d.Properties)
		reg.reg = r

		if reg.Extends != "" {
			base, ok := r.types[reg.Extends]
			if !ok {
				return ErrUnknownType.With(
					slog.String("type", reg.Extends),
					slog.String("extended_by", reg.Name),
				)
			}

			var inherited []Property

			for _, p := range base.Properties {
				if _, own := reg.Property(p.Name); !own {
					inherited = append(inherited, p)
				}
			}

			reg.Properties = append(inherited, reg.Properties...)
		}

		r.types[reg.Name] = &reg
	}

	return nil
}

// Lookup returns the descriptor named name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.types[name]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrUnknownType.With(slog.String("type", name))
	}

	return d, nil
}

// Names returns the sorted names of all registered types.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.types))
}

// IsA reports whether the type named name is base or one of its subtypes.
func (r *Registry) IsA(name, base string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for seen := 0; name != "" && seen <= len(r.types); seen++ {
		if name == base {
			return true
		}

		d, ok := r.types[name]
		if !ok {
			return false
		}

		name = d.Extends
	}

	return false
}

// Resolve returns the descriptor to instantiate for a value declared as
// base. modelType, if not empty, selects a subtype of base. An abstract base
// requires a modelType.
func (r *Registry) Resolve(base, modelType string) (*Descriptor, error) {
	if modelType == "" {
		d, err := r.Lookup(base)
		if err != nil {
			return nil, err
		}

		if d.Abstract {
			return nil, ErrAbstractType.With(slog.String("type", base))
		}

		return d, nil
	}

	d, err := r.Lookup(modelType)
	if err != nil {
		return nil, err
	}

	if !r.IsA(modelType, base) {
		return nil, ErrNotSubtype.With(
			slog.String("type", base),
			slog.String("modelType", modelType),
		)
	}

	if d.Abstract {
		return nil, ErrAbstractType.With(slog.String("type", modelType))
	}

	return d, nil
}

// ModelTypeName returns the type named by a modelType member, written
// either as a string or as an object with a name member.
func ModelTypeName(raw any) (string, bool) {
	switch t := raw.(type) {
	case string:
		return t, t != ""
	case lang.Object:
		if name, ok := t.Get("name"); ok {
			s, ok := name.(string)

			return s, ok && s != ""
		}
	case map[string]any:
		if s, ok := t["name"].(string); ok {
			return s, s != ""
		}
	}

	return "", false
}

// FromObject returns an instance of the type declared as base built from a
// JSON object. The object's modelType member, if any, selects a subtype.
// Nested objects become instances of their properties' types.
func (r *Registry) FromObject(base string, obj lang.Object) (*Instance, error) {
	var modelType string

	if raw, ok := obj.Get(ModelTypeKey); ok {
		modelType, _ = ModelTypeName(raw)
	}

	d, err := r.Resolve(base, modelType)
	if err != nil {
		return nil, err
	}

	inst := d.New()

	for _, m := range obj {
		if m.Key == ModelTypeKey {
			continue
		}

		if err := inst.Set(m.Key, m.Value); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

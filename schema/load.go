package schema

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/docxform/lang"
)

type fileProperty struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Type string `yaml:"type"`
	List bool   `yaml:"list"`
}

type fileType struct {
	Name       string         `yaml:"name"`
	Extends    string         `yaml:"extends"`
	Properties []fileProperty `yaml:"properties"`
	Abstract   bool           `yaml:"abstract"`
	ModelType  bool           `yaml:"modelType"`
}

type file struct {
	Root  string     `yaml:"root"`
	Types []fileType `yaml:"types"`
}

// LoadFile registers the types described by the YAML or JSON file at path.
// See [Registry.Load].
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrDescriptorFile.Wrap(err).With(slog.String("path", path))
	}

	if err := r.Load(data); err != nil {
		return lang.WrapError(err).With(slog.String("path", path))
	}

	return nil
}

// Load registers the types described by a YAML or JSON document:
//
//	root: Catalog
//	types:
//	  - name: Item
//	    properties:
//	      - {name: id, kind: string}
//	      - {name: tags, kind: string, list: true}
//	  - name: Catalog
//	    properties:
//	      - {name: items, kind: object, type: Item, list: true}
//
// Types are registered in order, so a supertype must be listed before the
// types extending it. A property of kind object without a type, or of an
// unknown kind, is an error. A non-empty root replaces the root type.
func (r *Registry) Load(data []byte) error {
	var f file

	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return ErrDescriptorFile.Wrap(err)
	}

	ds := make([]*Descriptor, 0, len(f.Types))

	for _, t := range f.Types {
		if t.Name == "" {
			return ErrDescriptorFile.With(slog.String("issue", "type without a name"))
		}

		d := &Descriptor{
			Name:      t.Name,
			Extends:   t.Extends,
			Abstract:  t.Abstract,
			ModelType: t.ModelType,
		}

		for _, p := range t.Properties {
			kind := KindString
			if p.Kind != "" {
				var ok bool
				if kind, ok = ParseKind(p.Kind); !ok {
					return ErrDescriptorFile.With(
						slog.String("type", t.Name),
						slog.String("property", p.Name),
						slog.String("kind", p.Kind),
					)
				}
			}

			if p.Name == "" || (kind == KindObject && p.Type == "") {
				return ErrDescriptorFile.With(
					slog.String("type", t.Name),
					slog.String("issue", "property needs a name, and a type if it is an object"),
				)
			}

			d.Properties = append(d.Properties, Property{
				Name: p.Name,
				Type: p.Type,
				Kind: kind,
				List: p.List,
			})
		}

		ds = append(ds, d)
	}

	if err := r.Register(ds...); err != nil {
		return err
	}

	if f.Root != "" {
		if _, err := r.Lookup(f.Root); err != nil {
			return err
		}

		r.mu.Lock()
		r.root = f.Root
		r.mu.Unlock()
	}

	return nil
}

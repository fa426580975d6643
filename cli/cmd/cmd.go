package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/docxform/document"
	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/mapping"
	"github.com/ardnew/docxform/pkg"
	"github.com/ardnew/docxform/schema"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdio is the special path naming stdin or stdout.
const stdio = "-"

// Inputs holds the external named inputs shared by the commands that
// evaluate a mapping.
type Inputs struct {
	Values string            `help:"JSON object of placeholder values, or @file to read it from a file" name:"placeholder-values" placeholder:"JSON"     short:"P"`
	Set    map[string]string `help:"Set one placeholder value (repeatable)"                              name:"set"                placeholder:"KEY=VALUE" short:"D"`
}

// Map returns the named inputs. Values given with --set override those of
// --placeholder-values.
func (in Inputs) Map() (map[string]string, error) {
	out := map[string]string{}

	if raw := strings.TrimSpace(in.Values); raw != "" {
		data := []byte(raw)

		if name, ok := strings.CutPrefix(raw, "@"); ok {
			b, err := os.ReadFile(name)
			if err != nil {
				return nil, pkg.ErrReadInput.Wrap(err)
			}

			data = b
		}

		var obj map[string]any

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		if err := dec.Decode(&obj); err != nil {
			return nil, pkg.ErrInvalidInputs.Wrap(err)
		}

		for k, v := range obj {
			switch t := v.(type) {
			case string:
				out[k] = t
			case nil:
				out[k] = ""
			case json.Number:
				out[k] = t.String()
			case bool:
				out[k] = fmt.Sprint(t)
			default:
				return nil, pkg.ErrInvalidInputs.Wrapf("%q is not a scalar", k)
			}
		}
	}

	for k, v := range in.Set {
		out[k] = v
	}

	return out, nil
}

// Schema holds the options selecting the target schema.
type Schema struct {
	Files []string `help:"Additional type descriptor file (YAML or JSON, repeatable)" name:"schema" type:"existingfile"`
}

// Registry returns the built-in registry, or a copy extended with the
// descriptors of every file named.
func (s Schema) Registry() (*schema.Registry, error) {
	if len(s.Files) == 0 {
		return schema.Default(), nil
	}

	reg := schema.Default().Clone()

	for _, f := range s.Files {
		if err := reg.LoadFile(f); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// locateMapping resolves the mapping file name along the search path.
func locateMapping(name string) (string, error) {
	path := pkg.Locate(name)
	if path == "" {
		return "", pkg.ErrMappingNotFound.Wrapf("%s (search path %q)",
			name, strings.Join(pkg.SearchPath(), string(os.PathListSeparator)))
	}

	return path, nil
}

// loadMapping locates and loads a mapping specification.
func loadMapping(
	ctx context.Context,
	name string,
	opts ...mapping.Option,
) (*mapping.Specification, error) {
	path, err := locateMapping(name)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "loading mapping", slog.String("path", path))

	return mapping.LoadFile(ctx, path, opts...)
}

// loadDocument loads the source document, or returns nil if name is empty.
func loadDocument(
	ctx context.Context,
	name string,
	opts ...document.Option,
) (*document.Document, error) {
	if name == "" {
		return nil, nil
	}

	if name == stdio {
		return document.Parse(ctx, os.Stdin, "stdin")
	}

	doc, err := document.Load(ctx, name, opts...)
	if err != nil {
		if errors.Is(err, document.ErrUnsupported) {
			return nil, pkg.ErrUnsupportedInput.Wrap(err)
		}

		return nil, err
	}

	return doc, nil
}

// Format selects the encoding of command output.
type Format struct {
	Format string `default:"json" enum:"json,yaml" help:"Output format (${enum})" short:"f"`
	Indent int    `default:"2"                     help:"Indent width, or 0 for compact output"`
}

// Encode writes v to w in the selected format.
func (f Format) Encode(w io.Writer, v any) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(w)
		if f.Indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", f.Indent))
		}

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("%w: %w", pkg.ErrJSONMarshal, err)
		}

		return nil

	case "yaml":
		indent := f.Indent
		if indent <= 0 {
			indent = 2
		}

		data, err := yaml.MarshalWithOptions(v, yaml.Indent(indent))
		if err != nil {
			return fmt.Errorf("%w: %w", pkg.ErrYAMLMarshal, err)
		}

		_, err = w.Write(data)

		return err

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q", f.Format)
	}
}

// Ext returns the file extension of the selected format.
func (f Format) Ext() string { return "." + f.Format }

// create opens the output file at path, or stdout for "-".
func create(path string) (io.WriteCloser, error) {
	if path == stdio {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, pkg.ErrWriteOutput.Wrap(err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, pkg.ErrWriteOutput.Wrap(err)
	}

	return f, nil
}

// writeClose calls write with w and closes w. A failed Close is returned
// unless write already failed, since it may leave the output truncated.
func writeClose(w io.WriteCloser, write func(io.Writer) error) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = pkg.ErrWriteOutput.Wrap(cerr)
		}
	}()

	return write(w)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

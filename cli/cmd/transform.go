package cmd

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ardnew/docxform/document"
	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/mapping"
)

// Transform converts a source document into an output document as directed
// by a mapping specification.
type Transform struct {
	Inputs `embed:""`
	Schema `embed:""`
	Format `embed:""`

	Mapping    string `help:"Mapping specification file, searched along ${pathEnv} if relative" required:"" short:"c"`
	Input      string `help:"Source document (.xml, .ua, .aml or .amlx), or '-' for stdin"                   short:"i"`
	Output     string `help:"Output file, or '-' for stdout (default: input base name with format extension)" short:"o"`
	PartsDir   string `help:"Extract the non-AML parts of an AMLX container into this directory"                       type:"path"`
	NoAutowire bool   `help:"Do not add submodel references to shells without any"`
}

// Run executes the transform command.
func (t *Transform) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reg, err := t.Registry()
	if err != nil {
		return err
	}

	opts := []mapping.Option{
		mapping.WithLogger(log.Default()),
		mapping.WithRegistry(reg),
	}

	if t.NoAutowire {
		opts = append(opts, mapping.WithPostProcessors())
	}

	spec, err := loadMapping(ctx, t.Mapping, opts...)
	if err != nil {
		return err
	}

	inputs, err := t.Map()
	if err != nil {
		return err
	}

	// Report missing placeholders before reading a possibly large source.
	if err := mapping.CheckInputs(spec, inputs); err != nil {
		return err
	}

	doc, err := loadDocument(ctx, t.Input, document.WithPartsDir(t.PartsDir))
	if err != nil {
		return err
	}

	out, err := mapping.Transform(ctx, spec, doc, inputs, opts...)
	if err != nil {
		return err
	}

	path := t.outputPath()

	w, err := create(path)
	if err != nil {
		return err
	}

	if err := writeClose(w, func(w io.Writer) error { return t.Encode(w, out) }); err != nil {
		return err
	}

	log.DebugContext(ctx, "wrote output",
		slog.String("path", path),
		slog.String("format", t.Format.Format),
	)

	return nil
}

// outputPath returns the output file path. Without --output, the result is
// written to the working directory under the input's base name, or to stdout
// if there is no named input.
func (t *Transform) outputPath() string {
	if t.Output != "" {
		return t.Output
	}

	if t.Input == "" || t.Input == stdio {
		return stdio
	}

	base := filepath.Base(t.Input)

	return strings.TrimSuffix(base, filepath.Ext(base)) + t.Ext()
}

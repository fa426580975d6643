package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ardnew/docxform/mapping"
)

// Placeholders lists the named inputs a mapping specification declares.
type Placeholders struct {
	Schema `embed:""`

	Mapping string `arg:"" help:"Mapping specification file, searched along ${pathEnv} if relative" name:"mapping"`
}

// Run executes the placeholders command.
func (p *Placeholders) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reg, err := p.Registry()
	if err != nil {
		return err
	}

	spec, err := loadMapping(ctx, p.Mapping, mapping.WithRegistry(reg))
	if err != nil {
		return err
	}

	return writePlaceholders(os.Stdout, spec.Header.Parameters)
}

// writePlaceholders writes one line per parameter, the descriptions
// aligned in a second column.
func writePlaceholders(w io.Writer, params []mapping.Parameter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, p := range params {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Description); err != nil {
			return err
		}
	}

	return tw.Flush()
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/mapping"
)

// Check loads and validates a mapping specification without transforming
// anything.
type Check struct {
	Schema `embed:""`

	Mappings []string `arg:"" help:"Mapping specification files, searched along ${pathEnv} if relative" name:"mapping"`
}

// Run executes the check command. Every file is checked; the first failure
// is returned after all are reported.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reg, err := c.Registry()
	if err != nil {
		return err
	}

	var first error

	for _, name := range c.Mappings {
		spec, err := loadMapping(ctx, name, mapping.WithRegistry(reg))
		if err != nil {
			reportInvalid(os.Stdout, name, err)

			if first == nil {
				first = err
			}

			continue
		}

		reportValid(os.Stdout, name, spec)
	}

	return first
}

func reportValid(w io.Writer, name string, spec *mapping.Specification) {
	templates := 0

	spec.Walk(func(*mapping.Template) bool {
		templates++

		return true
	})

	fmt.Fprintf(w, "%s: ok (%s, %d templates, %d parameters)\n",
		name, spec.Root.Type.Name, templates, len(spec.Header.Parameters))
}

// reportInvalid writes err and the "did you mean" hints it carries.
func reportInvalid(w io.Writer, name string, err error) {
	fmt.Fprintf(w, "%s: %v\n", name, err)

	for _, hint := range suggestions(err) {
		fmt.Fprintf(w, "  %s\n", hint)
	}
}

// suggestions collects the fuzzy matches attached to err, formatted as
// hints.
func suggestions(err error) []string {
	var hints []string

	if be := (*mapping.BindingError)(nil); errors.As(err, &be) {
		for _, key := range be.Keys {
			if s := be.Suggestions[key]; len(s) > 0 {
				hints = append(hints, didYouMean(key, s))
			}
		}

		return hints
	}

	if le := (*lang.Error)(nil); errors.As(err, &le) {
		var name string

		for _, a := range le.Attrs() {
			switch a.Key {
			case "operator", "key":
				name = a.Value.String()
			case "suggestions":
				if s, ok := a.Value.Any().([]string); ok && len(s) > 0 {
					hints = append(hints, didYouMean(name, s))
				}
			}
		}
	}

	return hints
}

func didYouMean(name string, candidates []string) string {
	return fmt.Sprintf("%q: did you mean %s?", name, strings.Join(candidates, " or "))
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/value"
)

// Eval evaluates a single expression and prints its result.
type Eval struct {
	Inputs `embed:""`
	Format `embed:""`

	Expression string            `arg:"" help:"Expression as JSON, e.g. '{\"@concatenate\": [\"a\", \"b\"]}'" name:"expression" optional:""`
	Expr       string            `help:"Expression in expr-lang syntax instead of JSON"                       short:"e"`
	Input      string            `help:"Source document the expression is evaluated against"                 short:"i"`
	Mapping    string            `help:"Mapping specification whose header is in scope"                      short:"c"`
	Namespaces map[string]string `help:"Bind a namespace prefix (repeatable)"            name:"namespace"     placeholder:"PREFIX=URI" short:"n"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	expr, err := e.parse()
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	inputs, err := e.Map()
	if err != nil {
		return err
	}

	doc, err := loadDocument(ctx, e.Input)
	if err != nil {
		return err
	}

	var (
		layer    lang.Layer
		provider lang.Provider
		item     any
	)

	if e.Mapping != "" {
		spec, err := loadMapping(ctx, e.Mapping)
		if err != nil {
			return err
		}

		layer = &spec.Header

		if doc != nil {
			for _, ns := range spec.Header.Namespaces {
				if err := doc.Bind(ctx, ns.Prefix, ns.URI); err != nil {
					return err
				}
			}
		}
	}

	if doc != nil {
		for prefix, uri := range e.Namespaces {
			if err := doc.Bind(ctx, prefix, uri); err != nil {
				return err
			}
		}

		provider, item = doc, doc.Top()
	}

	c, err := lang.NewContext(ctx, provider, item, layer, inputs)
	if err != nil {
		return err
	}

	result, err := expr.Eval(c)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("expression", expr.String()),
		)
	}

	return e.print(result)
}

// parse returns the expression given either as JSON or with --expr.
func (e *Eval) parse() (*lang.Expression, error) {
	switch {
	case e.Expr != "" && e.Expression != "":
		return nil, ErrAmbiguousExpression
	case e.Expr != "":
		return lang.CompileExpr(e.Expr, e.names()...)
	case e.Expression != "":
		return lang.ParseBytes([]byte(e.Expression), lang.WithNames(e.names()...))
	default:
		return nil, ErrMissingExpression
	}
}

// names returns the input names, which expressions may write with hyphens.
func (e *Eval) names() []string {
	names := make([]string, 0, len(e.Set))
	for k := range e.Set {
		names = append(names, k)
	}

	return names
}

// print writes a scalar result as plain text and a list in the selected
// format.
func (e *Eval) print(result any) error {
	if _, ok := result.([]any); ok {
		return e.Encode(os.Stdout, lang.JSONValue(result))
	}

	_, err := fmt.Fprintln(os.Stdout, strings.TrimRight(value.String(result), "\n"))

	return err
}

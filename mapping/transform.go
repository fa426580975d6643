package mapping

import (
	"context"
	"log/slog"
	"time"

	"github.com/ardnew/docxform/document"
	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/schema"
	"github.com/ardnew/docxform/value"
)

// Transform inflates the root template of spec against doc, which may be
// nil, and returns the output document.
//
// Every parameter declared by the header must have a value in inputs (see
// [CheckInputs]). The header's namespaces are bound in doc, the root context
// is built from the header and inputs with the document root as current
// item, and the post-processors run on the result. If the root template
// yields more than one instance, the first is returned and a warning is
// logged.
func Transform(
	ctx context.Context,
	spec *Specification,
	doc *document.Document,
	inputs map[string]string,
	opts ...Option,
) (*schema.Instance, error) {
	o := makeOptions(opts...)
	ctx = log.WithContext(ctx, o.logger)
	start := time.Now()

	if err := CheckInputs(spec, inputs); err != nil {
		return nil, err
	}

	var (
		provider lang.Provider
		item     any
	)

	if doc != nil {
		for _, ns := range spec.Header.Namespaces {
			if err := doc.Bind(ctx, ns.Prefix, ns.URI); err != nil {
				return nil, err
			}
		}

		provider, item = doc, doc.Top()
	}

	root, err := lang.NewContext(ctx, provider, item, &spec.Header, inputs, lang.WithOutput(o.output))
	if err != nil {
		return nil, err
	}

	results, err := Inflate(spec.Root, root)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrNoResult.With(slog.Any("template", spec.Root))
	}

	if len(results) > 1 {
		o.logger.WarnContext(ctx,
			"root template yielded more than one result, only the first is returned",
			slog.Int("results", len(results)),
		)
	}

	out, ok := results[0].(*schema.Instance)
	if !ok {
		return nil, ErrNoResult.With(slog.Any("template", spec.Root))
	}

	for _, post := range o.post {
		if err := post(ctx, o.registry, out); err != nil {
			return nil, err
		}
	}

	o.logger.InfoContext(ctx, "transformation complete",
		slog.String("type", out.Type().Name),
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

// Inflate returns the instances t yields in the context parent.
//
// Without @foreach, t yields one instance in a child of parent for the same
// item. With @foreach, the expression is evaluated against parent and its
// result read as a list: null is empty and any other non-list value is a
// single item. t yields one instance per item, each in its own child of
// parent.
func Inflate(t *Template, parent *lang.Context) ([]any, error) {
	ctx := parent.Context()

	if t.Foreach == nil {
		c, err := parent.Child(parent.Item(), t)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("type", t.Type.Name))
		}

		inst, err := transformOnce(t, c)
		if err != nil {
			return nil, err
		}

		return []any{inst}, nil
	}

	v, err := t.Foreach.Eval(parent)
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("type", t.Type.Name),
			slog.String("foreach", t.Foreach.String()),
		)
	}

	items := value.List(v)

	parent.Logger().DebugContext(ctx, "foreach expanded",
		slog.String("type", t.Type.Name),
		slog.String("foreach", t.Foreach.String()),
		slog.Int("items", len(items)),
	)

	out := make([]any, 0, len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, err := parent.Child(item, t)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("type", t.Type.Name))
		}

		inst, err := transformOnce(t, c)
		if err != nil {
			return nil, err
		}

		out = append(out, inst)
	}

	return out, nil
}

// transformOnce builds the instance of t in c: from the evaluated bindings
// if t has any, then by copying every unbound property.
func transformOnce(t *Template, c *lang.Context) (*schema.Instance, error) {
	ctx, logger := c.Context(), c.Logger()

	inst := t.Type.New()
	bound := false

	if len(t.Bind) > 0 {
		values := make(map[string]string, len(t.Bind))

		for _, b := range t.Bind {
			s, err := b.Expr.EvalString(c)
			if err != nil {
				return nil, lang.WrapError(err).With(
					slog.String("type", t.Type.Name),
					slog.String("property", b.Name),
				)
			}

			values[b.Name] = s
		}

		logger.DebugContext(ctx, "bindings evaluated",
			slog.String("type", t.Type.Name),
			slog.Any("bindings", values),
		)

		built, err := t.Type.FromStringMap(values)
		if err != nil {
			logger.ErrorContext(ctx, "failed to construct instance from bindings",
				slog.String("type", t.Type.Name),
				slog.Any("bindings", values),
				slog.Any("error", err),
			)
		} else {
			inst, bound = built, true
		}
	}

	for _, p := range t.Properties {
		if bound && t.Bound(p.Name) {
			continue
		}

		v, err := transformAny(p.Value, c)
		if err != nil {
			return nil, err
		}

		if err := assign(c, inst, p.Name, v); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

// transformAny returns the value a raw template value copies to. Lists are
// transformed element-wise and flattened one level, so a template inside a
// list contributes each instance it yields.
func transformAny(raw any, c *lang.Context) (any, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil

	case *Template:
		return Inflate(t, c)

	case []any:
		out := make([]any, 0, len(t))

		for _, e := range t {
			v, err := transformAny(e, c)
			if err != nil {
				return nil, err
			}

			switch r := v.(type) {
			case nil:
			case []any:
				out = append(out, r...)
			default:
				out = append(out, r)
			}
		}

		return out, nil

	default:
		return raw, nil
	}
}

// assign writes v to the property named name. A list written to a scalar
// property keeps its first element, with a warning if it has more.
func assign(c *lang.Context, inst *schema.Instance, name string, v any) error {
	p, _ := inst.Type().Property(name)

	list, isList := v.([]any)

	switch {
	case v == nil:
		return nil
	case !isList || p.List:
		return inst.Set(name, v)
	case len(list) == 0:
		return nil
	case len(list) > 1:
		c.Logger().WarnContext(c.Context(),
			"list result written to a scalar property, only the first item is used",
			slog.String("type", inst.Type().Name),
			slog.String("property", name),
			slog.Int("items", len(list)),
		)
	}

	return inst.Set(name, list[0])
}

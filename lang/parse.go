package lang

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// KeyDefault names the fallback member of an expression object.
const KeyDefault = "default"

// specialForms are operators handled by the parser rather than the builtin
// registry.
//
//nolint:gochecknoglobals
var specialForms = []string{
	OpPath.String(),
	OpAttributeName.String(),
	OpBrowsePath.String(),
	OpChildren.String(),
	OpVariable.String(),
	OpDefinition.String(),
	OpExpr.String(),
}

// ParseOption configures [Parse].
type ParseOption func(parseOptions) parseOptions

type parseOptions struct {
	names []string
}

// WithNames declares identifiers that expr-lang programs may reference
// with hyphens, such as variable names.
func WithNames(names ...string) ParseOption {
	return func(o parseOptions) parseOptions {
		o.names = append(slices.Clone(o.names), names...)

		return o
	}
}

// Parse builds an expression from a decoded JSON tree (see [Decode]).
func Parse(raw any, opts ...ParseOption) (*Expression, error) {
	var o parseOptions
	for _, opt := range opts {
		o = opt(o)
	}

	return o.parse(raw)
}

// ParseBytes decodes and parses a JSON expression.
func ParseBytes(data []byte, opts ...ParseOption) (*Expression, error) {
	raw, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	return Parse(raw, opts...)
}

// Operators returns the sorted names of every operator an expression object
// may use: builtins, constants and special forms.
func Operators() []string {
	ops := append(BuiltinNames(), ConstantNames()...)
	ops = append(ops, specialForms...)
	slices.Sort(ops)

	return slices.Compact(ops)
}

// Suggest returns the candidates closest to name, best match first.
func Suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)

	out := make([]string, 0, min(len(matches), 3)) //nolint:mnd
	for _, m := range matches {
		if len(out) == cap(out) {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

func (o parseOptions) parse(raw any) (*Expression, error) {
	switch t := raw.(type) {
	case Object:
		return o.parseObject(t)
	case []any:
		items, err := o.parseAll(t)
		if err != nil {
			return nil, err
		}

		return List(items...), nil
	case map[string]any:
		return nil, ErrInvalidExpression.With(slog.String("issue", "unordered object"))
	default:
		return Constant(t), nil
	}
}

func (o parseOptions) parseAll(raw []any) ([]*Expression, error) {
	out := make([]*Expression, len(raw))

	for i, r := range raw {
		e, err := o.parse(r)
		if err != nil {
			return nil, err
		}

		out[i] = e
	}

	return out, nil
}

func (o parseOptions) parseObject(obj Object) (*Expression, error) {
	var result *Expression

	for _, m := range obj {
		switch {
		case m.Key == KeyDefault:
			if result == nil {
				return nil, ErrDefaultWithoutExpression
			}

			fallback, err := o.parse(m.Value)
			if err != nil {
				return nil, err
			}

			result = Default(result, fallback)

		case strings.HasPrefix(m.Key, "@"):
			if result != nil {
				return nil, ErrMultipleOperators.With(
					slog.String("operator", m.Key),
					slog.String("previous", result.String()),
				)
			}

			var err error
			if result, err = o.parseOperator(strings.TrimPrefix(m.Key, "@"), m.Value); err != nil {
				return nil, err
			}
		}
	}

	if result == nil {
		return nil, ErrMissingOperator.With(slog.Any("keys", obj.Keys()))
	}

	return result, nil
}

func (o parseOptions) parseOperator(name string, raw any) (*Expression, error) {
	var args []*Expression

	if l, ok := raw.([]any); ok {
		var err error
		if args, err = o.parseAll(l); err != nil {
			return nil, err
		}
	} else {
		arg, err := o.parse(raw)
		if err != nil {
			return nil, err
		}

		args = []*Expression{arg}
	}

	if _, ok := LookupBuiltin(name); ok {
		return Call(name, args...)
	}

	if v, ok := LookupConstant(name); ok {
		return namedConstant(name, v), nil
	}

	switch name {
	case OpPath.String():
		return Path(args...), nil
	case OpBrowsePath.String():
		return BrowsePath(args...), nil
	case OpChildren.String():
		return Children(args...), nil
	case OpAttributeName.String():
		s, err := constantName(name, args)
		if err != nil {
			return nil, err
		}

		return AttributeName(s), nil
	case OpVariable.String():
		s, err := constantName(name, args)
		if err != nil {
			return nil, err
		}

		return Variable(s), nil
	case OpDefinition.String():
		s, err := constantName(name, args)
		if err != nil {
			return nil, err
		}

		return Definition(s), nil
	case OpExpr.String():
		s, err := constantName(name, args)
		if err != nil {
			return nil, err
		}

		return CompileExpr(s, o.names...)
	}

	return nil, ErrInvalidOperator.With(
		slog.String("operator", "@"+name),
		slog.Any("suggestions", Suggest(name, Operators())),
	)
}

// constantName returns the sole string constant argument of a named
// operator.
func constantName(op string, args []*Expression) (string, error) {
	if len(args) == 1 && args[0].op == OpConstant {
		if s, ok := args[0].val.(string); ok {
			return s, nil
		}
	}

	return "", ErrNameNotConstant.With(slog.String("operator", "@"+op))
}

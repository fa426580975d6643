package lang

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ardnew/docxform/value"
)

// Builtin is a named function callable from expressions.
type Builtin struct {
	fn   func(c *Context, args []any) (any, error)
	Name string
	// Min and Max bound the number of arguments. Max is -1 for variadic
	// builtins.
	Min, Max int
}

func (b *Builtin) apply(c *Context, args []any) (any, error) {
	if len(args) < b.Min || (b.Max >= 0 && len(args) > b.Max) {
		return nil, ErrArgumentCount.With(
			slog.String("builtin", b.Name),
			slog.Int("count", len(args)),
			slog.Int("min", b.Min),
			slog.Int("max", b.Max),
		)
	}

	return recoverNaN(b.fn(c, args))
}

//nolint:gochecknoglobals
var (
	builtinsOnce sync.Once
	builtins     map[string]*Builtin
	constants    map[string]any
)

func registry() {
	builtinsOnce.Do(func() {
		builtins = map[string]*Builtin{}

		for _, b := range builtinTable() {
			builtins[b.Name] = b
		}

		constants = map[string]any{
			"null": nil,
			"pi":   math.Pi,
			"e":    math.E,
			"NaN":  math.NaN(),
			"nil":  []any{},
		}
	})
}

// LookupBuiltin returns the builtin named name.
func LookupBuiltin(name string) (*Builtin, bool) {
	registry()

	b, ok := builtins[name]

	return b, ok
}

// LookupConstant returns the value of the constant named name.
func LookupConstant(name string) (any, bool) {
	registry()

	v, ok := constants[name]
	if l, isList := v.([]any); isList {
		v = append([]any{}, l...)
	}

	return v, ok
}

// BuiltinNames returns the sorted names of all builtins.
func BuiltinNames() []string {
	registry()

	return slices.Sorted(maps.Keys(builtins))
}

// ConstantNames returns the sorted names of all constants.
func ConstantNames() []string {
	registry()

	return slices.Sorted(maps.Keys(constants))
}

// pure adapts a function that does not need the evaluation context.
func pure(fn func(args []any) (any, error)) func(*Context, []any) (any, error) {
	return func(_ *Context, args []any) (any, error) { return fn(args) }
}

// spread returns the elements of a sole list argument, or args itself.
func spread(args []any) []any {
	if len(args) == 1 {
		if l, ok := args[0].([]any); ok {
			return l
		}
	}

	return args
}

// reduce left-folds fn over the (spread) arguments.
func reduce(fn func(a, b any) (any, error)) func(args []any) (any, error) {
	return func(args []any) (any, error) {
		vals := spread(args)
		if len(vals) == 0 {
			return nil, nil
		}

		acc := vals[0]

		for _, v := range vals[1:] {
			var err error
			if acc, err = fn(acc, v); err != nil {
				return nil, err
			}
		}

		return acc, nil
	}
}

func unary(fn func(a any) (any, error)) func(args []any) (any, error) {
	return func(args []any) (any, error) { return fn(args[0]) }
}

func binary(fn func(a, b any) (any, error)) func(args []any) (any, error) {
	return func(args []any) (any, error) { return fn(args[0], args[1]) }
}

func unaryFloat(fn func(x float64) float64) func(args []any) (any, error) {
	return unary(func(a any) (any, error) {
		x, err := value.Float(a)
		if err != nil {
			return nil, err
		}

		return fn(x), nil
	})
}

func binaryFloat(fn func(x, y float64) float64) func(args []any) (any, error) {
	return binary(func(a, b any) (any, error) {
		x, err := value.Float(a)
		if err != nil {
			return nil, err
		}

		y, err := value.Float(b)
		if err != nil {
			return nil, err
		}

		return fn(x, y), nil
	})
}

// compare orders a and b numerically where possible and by their string
// forms otherwise.
func compare(a, b any) int {
	if n, err := value.Compare(a, b); err == nil {
		return n
	}

	return strings.Compare(value.String(a), value.String(b))
}

func comparison(pred func(n int) bool) func(args []any) (any, error) {
	return binary(func(a, b any) (any, error) { return pred(compare(a, b)), nil })
}

func boolean(fn func(x, y bool) bool) func(a, b any) (any, error) {
	return func(a, b any) (any, error) { return fn(value.Bool(a), value.Bool(b)), nil }
}

// flatten stringifies the elements of each argument, one list level deep.
func flatten(args []any) []string {
	var out []string

	for _, a := range args {
		for _, v := range value.List(a) {
			out = append(out, value.String(v))
		}
	}

	return out
}

// contains reports whether list holds an element equal to v.
func contains(list []any, v any) bool {
	return slices.ContainsFunc(list, func(x any) bool { return equal(x, v) })
}

func equal(a, b any) bool {
	if value.Equal(a, b) {
		return true
	}

	n, err := value.Compare(a, b)

	return err == nil && n == 0
}

func distinct(vals []any) []any {
	out := make([]any, 0, len(vals))

	for _, v := range vals {
		if !slices.ContainsFunc(out, func(x any) bool { return value.Equal(x, v) }) {
			out = append(out, v)
		}
	}

	return out
}

func builtinTable() []*Builtin {
	return []*Builtin{
		// construction
		{Name: "list", Min: 0, Max: -1, fn: pure(func(args []any) (any, error) {
			return append([]any{}, spread(args)...), nil
		})},
		{Name: "set", Min: 0, Max: -1, fn: pure(func(args []any) (any, error) {
			return distinct(spread(args)), nil
		})},
		{Name: "range", Min: 2, Max: 2, fn: pure(binary(builtinRange))},
		{Name: "entry", Min: 2, Max: 2, fn: pure(binary(builtinEntry))},
		{Name: "block", Min: 0, Max: -1, fn: pure(reduce(func(_, b any) (any, error) { return b, nil }))},

		// algebra
		{Name: "plus", Min: 1, Max: -1, fn: pure(reduce(value.Add))},
		{Name: "minus", Min: 2, Max: 2, fn: pure(binary(value.Subtract))},
		{Name: "times", Min: 1, Max: -1, fn: pure(reduce(value.Multiply))},
		{Name: "divide", Min: 2, Max: 2, fn: pure(binary(builtinDivide))},
		{Name: "negate", Min: 1, Max: 1, fn: pure(unary(value.Negate))},
		{Name: "power", Min: 2, Max: 2, fn: pure(binaryFloat(math.Pow))},
		{Name: "root", Min: 2, Max: 2, fn: pure(binaryFloat(func(x, n float64) float64 {
			return math.Pow(x, 1/n)
		}))},
		{Name: "abs", Min: 1, Max: 1, fn: pure(unary(builtinAbs))},
		{Name: "max", Min: 1, Max: -1, fn: pure(reduce(func(a, b any) (any, error) {
			if compare(a, b) >= 0 {
				return a, nil
			}

			return b, nil
		}))},
		{Name: "min", Min: 1, Max: -1, fn: pure(reduce(func(a, b any) (any, error) {
			if compare(a, b) >= 0 {
				return b, nil
			}

			return a, nil
		}))},

		// trigonometry
		{Name: "sin", Min: 1, Max: 1, fn: pure(unaryFloat(math.Sin))},
		{Name: "cos", Min: 1, Max: 1, fn: pure(unaryFloat(math.Cos))},
		{Name: "tan", Min: 1, Max: 1, fn: pure(unaryFloat(math.Tan))},
		{Name: "arcsin", Min: 1, Max: 1, fn: pure(unaryFloat(math.Asin))},
		{Name: "arccos", Min: 1, Max: 1, fn: pure(unaryFloat(math.Acos))},
		{Name: "arctan", Min: 1, Max: 1, fn: pure(unaryFloat(math.Atan))},

		// comparison
		{Name: "eq", Min: 2, Max: 2, fn: pure(binary(func(a, b any) (any, error) {
			return equal(a, b), nil
		}))},
		{Name: "neq", Min: 2, Max: 2, fn: pure(comparison(func(n int) bool { return n != 0 }))},
		{Name: "lt", Min: 2, Max: 2, fn: pure(comparison(func(n int) bool { return n < 0 }))},
		{Name: "leq", Min: 2, Max: 2, fn: pure(comparison(func(n int) bool { return n <= 0 }))},
		{Name: "gt", Min: 2, Max: 2, fn: pure(comparison(func(n int) bool { return n > 0 }))},
		{Name: "geq", Min: 2, Max: 2, fn: pure(comparison(func(n int) bool { return n >= 0 }))},

		// boolean
		{Name: "not", Min: 1, Max: 1, fn: pure(unary(func(a any) (any, error) { return !value.Bool(a), nil }))},
		{Name: "or", Min: 1, Max: -1, fn: pure(reduce(boolean(func(x, y bool) bool { return x || y })))},
		{Name: "and", Min: 1, Max: -1, fn: pure(reduce(boolean(func(x, y bool) bool { return x && y })))},

		// rounding
		{Name: "round", Min: 1, Max: 1, fn: pure(unaryFloat(func(x float64) float64 { return math.Floor(x + 0.5) }))}, //nolint:mnd
		{Name: "ceiling", Min: 1, Max: 1, fn: pure(unaryFloat(math.Ceil))},
		{Name: "floor", Min: 1, Max: 1, fn: pure(unaryFloat(math.Floor))},
		{Name: "trunc", Min: 1, Max: 1, fn: pure(unaryFloat(math.Trunc))},

		// sets
		{Name: "intersect", Min: 1, Max: -1, fn: pure(builtinIntersect)},

		// numbers
		{Name: "isNaN", Min: 1, Max: 1, fn: pure(unary(func(a any) (any, error) {
			x, err := value.Float(a)

			return err != nil || math.IsNaN(x), nil
		}))},

		// strings, identifiers and encoding
		{Name: "concatenate", Min: 0, Max: -1, fn: pure(func(args []any) (any, error) {
			return strings.Join(flatten(args), ""), nil
		})},
		{Name: "concatenate_and_hash", Min: 0, Max: -1, fn: pure(func(args []any) (any, error) {
			sum := sha256.Sum256([]byte(strings.Join(flatten(args), "")))

			return hex.EncodeToString(sum[:]), nil
		})},
		{Name: "generateId", Min: 0, Max: -1, fn: pure(func([]any) (any, error) {
			return "urn:uuid:" + uuid.NewString(), nil
		})},
		{Name: "base64", Min: 0, Max: -1, fn: pure(func(args []any) (any, error) {
			return base64.StdEncoding.EncodeToString([]byte(strings.Join(flatten(args), ""))), nil
		})},

		// diagnostics
		{Name: "println", Min: 0, Max: -1, fn: builtinPrintln},
	}
}

func builtinRange(a, b any) (any, error) {
	lo, err := value.Int(a)
	if err != nil {
		return nil, err
	}

	hi, err := value.Int(b)
	if err != nil {
		return nil, err
	}

	out := []any{}
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}

	return out, nil
}

func builtinEntry(list, index any) (any, error) {
	i, err := value.Int(index)
	if err != nil {
		return nil, err
	}

	if i <= 0 {
		return nil, ErrNonPositiveIndex.With(slog.Int64("index", i))
	}

	l := value.List(list)
	if i > int64(len(l)) {
		return nil, ErrArgumentType.With(
			slog.String("builtin", "entry"),
			slog.Int64("index", i),
			slog.Int("length", len(l)),
		)
	}

	return l[i-1], nil
}

func builtinDivide(a, b any) (any, error) {
	v, err := value.Divide(a, b)
	if errors.Is(err, value.ErrDivisionByZero) {
		return nil, ErrDivisionByZero.With(
			slog.String("dividend", value.String(a)),
			slog.String("divisor", value.String(b)),
		)
	}

	return v, err
}

func builtinAbs(a any) (any, error) {
	n, err := value.Compare(a, 0.0)
	if err != nil {
		return nil, err
	}

	if n >= 0 {
		return a, nil
	}

	return value.Negate(a)
}

func builtinIntersect(args []any) (any, error) {
	acc := distinct(value.List(args[0]))

	for _, a := range args[1:] {
		other := value.List(a)
		acc = slices.DeleteFunc(acc, func(v any) bool { return !contains(other, v) })
	}

	return acc, nil
}

func builtinPrintln(c *Context, args []any) (any, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.String(a)
	}

	var w io.Writer = io.Discard
	if c != nil && c.out != nil {
		w = c.out
	}

	_, _ = fmt.Fprintln(w, strings.Join(parts, " "))

	return nil, nil
}

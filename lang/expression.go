package lang

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/docxform/value"
)

// Op identifies the form of an [Expression].
type Op int

const (
	// OpConstant yields a fixed value.
	OpConstant Op = iota
	// OpVariable yields a variable of the context, or null.
	OpVariable
	// OpDefinition evaluates a definition of the context.
	OpDefinition
	// OpCall applies a builtin to its evaluated arguments.
	OpCall
	// OpList yields its evaluated items.
	OpList
	// OpPath yields the nodes selected by XPath expressions.
	OpPath
	// OpDefault yields its fallback if its primary is null or empty.
	OpDefault
	// OpBrowsePath yields the NodeId reached by an OPC UA browse path.
	OpBrowsePath
	// OpChildren yields the OPC UA children of the node reached by a browse
	// path.
	OpChildren
	// OpAttributeName yields the CAEX attributes of the current node with a
	// given name.
	OpAttributeName
	// OpExpr runs an expr-lang program.
	OpExpr
)

// String returns the operator keyword of the form.
func (op Op) String() string {
	switch op {
	case OpConstant:
		return "constant"
	case OpVariable:
		return "var"
	case OpDefinition:
		return "def"
	case OpCall:
		return "call"
	case OpList:
		return "list"
	case OpPath:
		return "xpath"
	case OpDefault:
		return "default"
	case OpBrowsePath:
		return "uaBrowsePath"
	case OpChildren:
		return "uaChildren"
	case OpAttributeName:
		return "caexAttributeName"
	case OpExpr:
		return "expr"
	default:
		return "unknown"
	}
}

// Expression is an immutable node of an expression tree.
//
// The zero value is the constant null.
type Expression struct {
	val  any
	fn   *Builtin
	prog *vm.Program
	name string
	args []*Expression
	op   Op
}

// Constant returns an expression yielding v.
func Constant(v any) *Expression {
	return &Expression{op: OpConstant, val: v}
}

// namedConstant returns a constant that remembers the name it was declared
// with.
func namedConstant(name string, v any) *Expression {
	return &Expression{op: OpConstant, val: v, name: name}
}

// Variable returns an expression yielding the variable named name.
func Variable(name string) *Expression {
	return &Expression{op: OpVariable, name: name}
}

// Definition returns an expression evaluating the definition named name.
func Definition(name string) *Expression {
	return &Expression{op: OpDefinition, name: name}
}

// Call returns an expression applying the builtin named name to args.
func Call(name string, args ...*Expression) (*Expression, error) {
	fn, ok := LookupBuiltin(name)
	if !ok {
		return nil, ErrInvalidOperator.With(slog.String("operator", "@"+name))
	}

	return &Expression{op: OpCall, name: name, fn: fn, args: args}, nil
}

// List returns an expression yielding the values of items.
func List(items ...*Expression) *Expression {
	return &Expression{op: OpList, args: items}
}

// Path returns an expression selecting the nodes matched by the XPath
// expressions that exprs yield.
func Path(exprs ...*Expression) *Expression {
	return &Expression{op: OpPath, args: exprs}
}

// Default returns an expression yielding fallback if primary yields null or
// an empty list, and primary's value otherwise.
func Default(primary, fallback *Expression) *Expression {
	return &Expression{op: OpDefault, args: []*Expression{primary, fallback}}
}

// BrowsePath returns an expression yielding the NodeId of the OPC UA node
// reached by the browse names that exprs yield.
func BrowsePath(exprs ...*Expression) *Expression {
	return &Expression{op: OpBrowsePath, args: exprs}
}

// Children returns an expression yielding the hierarchical children of the
// OPC UA node reached by the browse names that exprs yield.
func Children(exprs ...*Expression) *Expression {
	return &Expression{op: OpChildren, args: exprs}
}

// AttributeName returns an expression selecting the CAEX Attribute elements
// of the current node named name.
func AttributeName(name string) *Expression {
	return &Expression{op: OpAttributeName, name: name}
}

// Op returns the form of e.
func (e *Expression) Op() Op { return e.op }

// Name returns the variable, definition, builtin, attribute or constant
// name of e, or the program source of an expr-lang expression.
func (e *Expression) Name() string { return e.name }

// Args returns the operand expressions of e.
func (e *Expression) Args() []*Expression { return e.args }

// Value returns the value of a constant.
func (e *Expression) Value() any { return e.val }

// Eval evaluates e against c.
func (e *Expression) Eval(c *Context) (any, error) {
	switch e.op {
	case OpConstant:
		if l, ok := e.val.([]any); ok {
			return append([]any{}, l...), nil
		}

		return e.val, nil

	case OpVariable:
		if s, ok := c.Var(e.name); ok {
			return s, nil
		}

		return nil, nil

	case OpDefinition:
		d, ok := c.Definition(e.name)
		if !ok {
			return nil, ErrUnknownDefinition.With(slog.String("definition", e.name))
		}

		return d.Eval(c)

	case OpCall:
		args, err := evalAll(c, e.args)
		if err != nil {
			return nil, err
		}

		return e.fn.apply(c, args)

	case OpList:
		return evalAll(c, e.args)

	case OpPath:
		return e.evalPath(c)

	case OpDefault:
		v, err := e.args[0].Eval(c)
		if err != nil {
			return nil, err
		}

		if value.IsEmpty(v) {
			c.Logger().InfoContext(c.Context(), "expression result is empty, using default",
				slog.String("expression", e.args[0].String()),
				slog.String("default", e.args[1].String()),
			)

			return e.args[1].Eval(c)
		}

		return v, nil

	case OpBrowsePath:
		path, err := e.browseNames(c)
		if err != nil {
			return nil, err
		}

		if c.doc != nil && len(path) > 0 {
			if id, ok := c.doc.BrowsePath(path); ok {
				return id, nil
			}
		}

		return nil, ErrBrowsePath.With(slog.Any("path", path))

	case OpChildren:
		if _, ok := c.Node(); !ok {
			return nil, ErrNoNodeContext.With(slog.String("operator", "@"+e.op.String()))
		}

		path, err := e.browseNames(c)
		if err != nil {
			return nil, err
		}

		if c.doc != nil {
			if nodes, ok := c.doc.Children(path); ok {
				return nodes, nil
			}
		}

		return nil, ErrBrowsePath.With(slog.Any("path", path))

	case OpAttributeName:
		n, ok := c.Node()
		if !ok || c.doc == nil {
			return nil, ErrNoNodeContext.With(slog.String("attribute", e.name))
		}

		return c.doc.Select(n, attributePath(e.name))

	case OpExpr:
		return e.run(c)

	default:
		return nil, ErrInvalidExpression.With(slog.Int("op", int(e.op)))
	}
}

// EvalString evaluates e against c and returns the result as a string, the
// form in which variables and bindings hold values.
//
// Path queries yield the string value of the first XPath expression, or the
// empty string if the current item is not a document node. Definitions
// yield the string form of the referenced expression.
func (e *Expression) EvalString(c *Context) (string, error) {
	switch e.op {
	case OpDefinition:
		d, ok := c.Definition(e.name)
		if !ok {
			return "", ErrUnknownDefinition.With(slog.String("definition", e.name))
		}

		return d.EvalString(c)

	case OpPath:
		if len(e.args) == 0 {
			return "", nil
		}

		path, err := e.args[0].EvalString(c)
		if err != nil {
			return "", err
		}

		n, ok := c.Node()
		if !ok || c.doc == nil {
			return "", nil
		}

		return c.doc.StringValue(n, path)

	case OpAttributeName:
		n, ok := c.Node()
		if !ok || c.doc == nil {
			return "", ErrNoNodeContext.With(slog.String("attribute", e.name))
		}

		return c.doc.StringValue(n, attributePath(e.name))

	default:
		v, err := e.Eval(c)
		if err != nil {
			return "", err
		}

		return value.String(v), nil
	}
}

func evalAll(c *Context, exprs []*Expression) ([]any, error) {
	out := make([]any, len(exprs))

	for i, x := range exprs {
		v, err := x.Eval(c)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (e *Expression) evalPath(c *Context) (any, error) {
	out := []any{}

	for _, x := range e.args {
		v, err := x.Eval(c)
		if err != nil {
			return nil, err
		}

		path, isString := v.(string)
		n, isNode := c.Node()

		if !isString || !isNode {
			return nil, ErrNoNodeContext.With(slog.String("xpath", value.String(v)))
		}

		if c.doc == nil {
			return nil, ErrNoDocument.With(slog.String("xpath", path))
		}

		nodes, err := c.doc.Select(n, path)
		if err != nil {
			return nil, err
		}

		out = append(out, nodes...)
	}

	return out, nil
}

// browseNames evaluates the arguments of a browse-path lookup, keeping the
// string results.
func (e *Expression) browseNames(c *Context) ([]string, error) {
	vals, err := evalAll(c, e.args)
	if err != nil {
		return nil, err
	}

	path := make([]string, 0, len(vals))

	for _, v := range vals {
		if s, ok := v.(string); ok {
			path = append(path, s)
		}
	}

	return path, nil
}

func attributePath(name string) string {
	quote := "'"
	if strings.Contains(name, quote) {
		quote = `"`
	}

	return "caex:Attribute[@Name=" + quote + name + quote + "]"
}

// recoverNaN maps malformed-number failures of a builtin to NaN.
func recoverNaN(v any, err error) (any, error) {
	if errors.Is(err, value.ErrNumberFormat) {
		return math.NaN(), nil
	}

	return v, err
}

// String returns e in mapping-specification syntax.
func (e *Expression) String() string {
	b, err := e.MarshalJSON()
	if err != nil {
		return "<" + e.op.String() + ">"
	}

	return string(b)
}

package lang

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/value"
)

// Provider is the source document seen by expressions. Path queries,
// attribute lookups and browse-path lookups are delegated to it.
type Provider interface {
	// Select evaluates an XPath expression against the context node and
	// returns the result as a list.
	Select(node value.Node, path string) ([]any, error)
	// StringValue evaluates an XPath expression against the context node and
	// returns the string value of the result.
	StringValue(node value.Node, path string) (string, error)
	// BrowsePath returns the NodeId of the node reached by path.
	BrowsePath(path []string) (string, bool)
	// Children returns the hierarchical children of the node reached by path.
	Children(path []string) ([]any, bool)
}

// Binding is a named expression of a definitions or variables block.
type Binding struct {
	Expr *Expression
	Name string
}

// Layer contributes definitions and variables to a child [Context]. Both
// lists are in declaration order.
type Layer interface {
	Definitions() []Binding
	Variables() []Binding
}

// Context is an immutable evaluation scope: the current item, the
// definitions and variables in scope, and the run's source document.
type Context struct {
	ctx  context.Context
	doc  Provider
	item any
	defs map[string]*Expression
	vars map[string]string
	out  io.Writer
}

// ContextOption configures a root [Context].
type ContextOption func(*Context)

// WithOutput sets the writer used by the println builtin. The default is
// standard error.
func WithOutput(w io.Writer) ContextOption {
	return func(c *Context) {
		if w != nil {
			c.out = w
		}
	}
}

// NewContext returns a root context for item. The definitions and variables
// of layer, which may be nil, are merged first. The external inputs are
// merged last and override variables of the same name.
func NewContext(
	ctx context.Context,
	doc Provider,
	item any,
	layer Layer,
	inputs map[string]string,
	opts ...ContextOption,
) (*Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	base := &Context{
		ctx:  ctx,
		doc:  doc,
		defs: map[string]*Expression{},
		vars: map[string]string{},
		out:  os.Stderr,
	}

	for _, opt := range opts {
		opt(base)
	}

	c, err := base.Child(item, layer)
	if err != nil {
		return nil, err
	}

	maps.Copy(c.vars, inputs)

	return c, nil
}

// Child returns a context for item that extends c with the definitions and
// variables of layer. Definitions are merged unevaluated. Variables are
// evaluated in declaration order against the child context as built so far,
// so later variables observe earlier ones. c is not modified.
func (c *Context) Child(item any, layer Layer) (*Context, error) {
	child := &Context{
		ctx:  c.ctx,
		doc:  c.doc,
		item: item,
		defs: maps.Clone(c.defs),
		vars: maps.Clone(c.vars),
		out:  c.out,
	}

	if layer == nil {
		return child, nil
	}

	for _, d := range layer.Definitions() {
		child.defs[d.Name] = d.Expr
	}

	for _, v := range layer.Variables() {
		s, err := v.Expr.EvalString(child)
		if err != nil {
			return nil, WrapError(err).With(slog.String("variable", v.Name))
		}

		child.vars[v.Name] = s
	}

	return child, nil
}

// Context returns the context.Context the evaluation runs under.
func (c *Context) Context() context.Context { return c.ctx }

// Logger returns the logger carried by the evaluation's context.Context.
func (c *Context) Logger() log.Logger { return log.FromContext(c.ctx) }

// Document returns the source document, which may be nil.
func (c *Context) Document() Provider { return c.doc }

// Item returns the current item.
func (c *Context) Item() any { return c.item }

// Node returns the current item if it is a document node.
func (c *Context) Node() (value.Node, bool) {
	n, ok := c.item.(value.Node)

	return n, ok
}

// Var returns the variable named name.
func (c *Context) Var(name string) (string, bool) {
	s, ok := c.vars[name]

	return s, ok
}

// Vars returns a copy of the variables in scope.
func (c *Context) Vars() map[string]string { return maps.Clone(c.vars) }

// Definition returns the definition named name.
func (c *Context) Definition(name string) (*Expression, bool) {
	e, ok := c.defs[name]

	return e, ok
}

// DefinitionNames returns the sorted names of the definitions in scope.
func (c *Context) DefinitionNames() []string {
	return slices.Sorted(maps.Keys(c.defs))
}

// Output returns the writer used by the println builtin.
func (c *Context) Output() io.Writer { return c.out }

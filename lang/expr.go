package lang

import (
	"log/slog"
	"maps"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFunc is the signature builtins take inside expr-lang programs.
type exprFunc = func(args ...any) (any, error)

// CompileExpr compiles an expr-lang program. The program sees the current
// item as item, the variables in scope both as top-level identifiers and as
// the map vars, definitions through def(name), and every builtin as a
// function of the same name. names declares identifiers that may be
// written with hyphens.
func CompileExpr(source string, names ...string) (*Expression, error) {
	env := exprEnv(nil)
	for _, n := range names {
		if _, ok := env[n]; !ok {
			env[n] = any(nil)
		}
	}

	program, err := expr.Compile(source,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.Patch(newHyphenPatcher(names)),
	)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", source))
	}

	return &Expression{op: OpExpr, name: source, prog: program}, nil
}

func (e *Expression) run(c *Context) (any, error) {
	if e.prog == nil {
		return e.name, nil
	}

	out, err := vm.Run(e.prog, exprEnv(c))
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).With(slog.String("source", e.name))
	}

	return out, nil
}

// exprEnv builds the environment of an expr-lang program. With a nil
// context it returns the type exemplar used at compile time.
func exprEnv(c *Context) map[string]any {
	env := map[string]any{}

	var vars map[string]string
	if c != nil {
		vars = c.Vars()
		for k, v := range vars {
			env[k] = v
		}
	}

	registry()

	for name, b := range builtins {
		env[name] = exprFunc(func(args ...any) (any, error) { return b.apply(c, args) })
	}

	for name := range constants {
		if _, ok := env[name]; !ok && name != "nil" && name != "null" {
			v, _ := LookupConstant(name)
			env[name] = v
		}
	}

	if c == nil {
		env["item"] = any(nil)
		env["vars"] = map[string]string{}
	} else {
		env["item"] = c.Item()
		env["vars"] = maps.Clone(vars)
	}

	env["def"] = func(name string) (any, error) {
		if c == nil {
			return nil, ErrUnknownDefinition.With(slog.String("definition", name))
		}

		d, ok := c.Definition(name)
		if !ok {
			return nil, ErrUnknownDefinition.With(slog.String("definition", name))
		}

		return d.Eval(c)
	}

	return env
}

package lang

import (
	"log/slog"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/docxform/log"
)

// hyphenPatcher reconstructs hyphenated identifiers from BinaryNode("-")
// subtraction chains created by expr-lang's parser.
//
// Mapping variables and definitions are often named with hyphens (e.g.,
// "serial-number"), which expr-lang parses as subtraction. When the
// combined name is known, the chain is patched to a single identifier, or
// to a key of the vars map for vars.serial-number.
type hyphenPatcher struct {
	names  map[string]struct{}
	logger log.Logger
}

func newHyphenPatcher(names []string) *hyphenPatcher {
	p := &hyphenPatcher{names: make(map[string]struct{}, len(names)), logger: log.Default()}
	for _, n := range names {
		p.names[n] = struct{}{}
	}

	return p
}

// Visit implements ast.Visitor.
func (p *hyphenPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || bin.Operator != "-" {
		return
	}

	right, ok := bin.Right.(*ast.IdentifierNode)
	if !ok {
		return
	}

	base, prefix, ok := hyphenChain(bin.Left)
	if !ok {
		return
	}

	combined := prefix + "-" + right.Value
	if !p.known(combined) {
		return
	}

	if base == nil {
		ast.Patch(node, &ast.IdentifierNode{Value: combined})
	} else {
		ast.Patch(node, &ast.MemberNode{Node: base, Property: &ast.StringNode{Value: combined}})
	}

	p.logger.Trace("patch hyphenated",
		slog.String("combined_name", combined),
		slog.Bool("member", base != nil))
}

// hyphenChain walks the left operand of an unpatched subtraction and
// returns the member base (nil for a bare identifier) and the accumulated
// hyphenated name. Only members of the vars map qualify as bases.
func hyphenChain(n ast.Node) (base ast.Node, name string, ok bool) {
	switch left := n.(type) {
	case *ast.IdentifierNode:
		return nil, left.Value, true

	case *ast.MemberNode:
		prop, ok := left.Property.(*ast.StringNode)
		if !ok {
			return nil, "", false
		}

		if id, ok := left.Node.(*ast.IdentifierNode); !ok || id.Value != "vars" {
			return nil, "", false
		}

		return left.Node, prop.Value, true

	case *ast.BinaryNode:
		if left.Operator != "-" {
			return nil, "", false
		}

		right, ok := left.Right.(*ast.IdentifierNode)
		if !ok {
			return nil, "", false
		}

		b, inner, ok := hyphenChain(left.Left)
		if !ok {
			return nil, "", false
		}

		return b, inner + "-" + right.Value, true

	default:
		return nil, "", false
	}
}

func (p *hyphenPatcher) known(name string) bool {
	_, ok := p.names[name]

	return ok
}

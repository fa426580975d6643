package document

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// navigator walks an xmlquery tree for the xpath engine. Unlike the
// navigator exported by xmlquery, the root is the document node regardless
// of where evaluation starts, so absolute paths evaluated from an inner
// context node still address the whole document.
type navigator struct {
	root, curr *xmlquery.Node
	attr       int
}

func newNavigator(root *xmlquery.Node, n Node) *navigator {
	return &navigator{root: root, curr: n.node, attr: n.attr}
}

// Node returns the node under the cursor.
func (x *navigator) Node() Node {
	return Node{node: x.curr, attr: x.attr}
}

func (x *navigator) NodeType() xpath.NodeType {
	switch x.curr.Type {
	case xmlquery.CommentNode:
		return xpath.CommentNode
	case xmlquery.TextNode, xmlquery.CharDataNode, xmlquery.NotationNode:
		return xpath.TextNode
	case xmlquery.DeclarationNode, xmlquery.DocumentNode:
		return xpath.RootNode
	case xmlquery.ElementNode:
		if x.attr != -1 {
			return xpath.AttributeNode
		}

		return xpath.ElementNode
	default:
		return xpath.ElementNode
	}
}

func (x *navigator) LocalName() string {
	if x.attr != -1 {
		return x.curr.Attr[x.attr].Name.Local
	}

	return x.curr.Data
}

func (x *navigator) Prefix() string {
	if x.attr != -1 {
		return x.curr.Attr[x.attr].Name.Space
	}

	return x.curr.Prefix
}

func (x *navigator) NamespaceURL() string {
	if x.attr != -1 {
		return x.curr.Attr[x.attr].NamespaceURI
	}

	return x.curr.NamespaceURI
}

func (x *navigator) Value() string {
	switch x.curr.Type {
	case xmlquery.CommentNode, xmlquery.TextNode, xmlquery.CharDataNode:
		return x.curr.Data
	case xmlquery.ElementNode:
		if x.attr != -1 {
			return x.curr.Attr[x.attr].Value
		}

		return x.curr.InnerText()
	case xmlquery.DocumentNode:
		return x.curr.InnerText()
	default:
		return ""
	}
}

func (x *navigator) String() string { return x.Value() }

func (x *navigator) Copy() xpath.NodeNavigator {
	n := *x

	return &n
}

func (x *navigator) MoveToRoot() {
	x.curr, x.attr = x.root, -1
}

func (x *navigator) MoveToParent() bool {
	if x.attr != -1 {
		x.attr = -1

		return true
	}

	if x.curr == x.root || x.curr.Parent == nil {
		return false
	}

	x.curr = x.curr.Parent

	return true
}

func (x *navigator) MoveToNextAttribute() bool {
	if x.attr >= len(x.curr.Attr)-1 {
		return false
	}

	x.attr++

	return true
}

func (x *navigator) MoveToChild() bool {
	if x.attr != -1 || x.curr.FirstChild == nil {
		return false
	}

	x.curr = x.curr.FirstChild

	return true
}

func (x *navigator) MoveToFirst() bool {
	if x.attr != -1 || x.curr.PrevSibling == nil {
		return false
	}

	for x.curr.PrevSibling != nil {
		x.curr = x.curr.PrevSibling
	}

	return true
}

func (x *navigator) MoveToNext() bool {
	if x.attr != -1 {
		return false
	}

	for n := x.curr.NextSibling; n != nil; n = n.NextSibling {
		if !blank(n) {
			x.curr = n

			return true
		}
	}

	return false
}

func (x *navigator) MoveToPrevious() bool {
	if x.attr != -1 {
		return false
	}

	for n := x.curr.PrevSibling; n != nil; n = n.PrevSibling {
		if !blank(n) {
			x.curr = n

			return true
		}
	}

	return false
}

func (x *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.root != x.root {
		return false
	}

	x.curr, x.attr = o.curr, o.attr

	return true
}

// blank reports whether n is a whitespace-only text node.
func blank(n *xmlquery.Node) bool {
	return n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) == ""
}

package document

import (
	"log/slog"

	"github.com/antchfx/xmlquery"
)

// Node is a reference to an element, attribute or text node of a
// [Document]. Nodes are comparable: two Nodes are equal if and only if they
// refer to the same node of the same document.
type Node struct {
	node *xmlquery.Node
	attr int
}

func elementNode(n *xmlquery.Node) Node { return Node{node: n, attr: -1} }

// IsZero reports whether n refers to no node.
func (n Node) IsZero() bool { return n.node == nil }

// IsAttribute reports whether n refers to an attribute.
func (n Node) IsAttribute() bool { return n.node != nil && n.attr >= 0 }

// Name returns the local name of the element or attribute.
func (n Node) Name() string {
	switch {
	case n.node == nil:
		return ""
	case n.attr >= 0:
		return n.node.Attr[n.attr].Name.Local
	case n.node.Type == xmlquery.ElementNode:
		return n.node.Data
	default:
		return ""
	}
}

// StringValue returns the XPath string value of the node: the attribute
// value for attributes and the concatenated descendant text otherwise.
func (n Node) StringValue() string {
	switch {
	case n.node == nil:
		return ""
	case n.attr >= 0:
		return n.node.Attr[n.attr].Value
	default:
		return n.node.InnerText()
	}
}

// Attr returns the value of the unqualified attribute named name of an
// element node.
func (n Node) Attr(name string) (string, bool) {
	if n.node == nil || n.attr >= 0 {
		return "", false
	}

	for _, a := range n.node.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}

	return "", false
}

// Parent returns the element owning an attribute or the parent of any other
// node.
func (n Node) Parent() Node {
	switch {
	case n.node == nil:
		return Node{}
	case n.attr >= 0:
		return elementNode(n.node)
	case n.node.Parent == nil:
		return Node{}
	default:
		return elementNode(n.node.Parent)
	}
}

// Elements returns the child elements of n named name, or all child
// elements if name is empty.
func (n Node) Elements(name string) []Node {
	if n.node == nil || n.attr >= 0 {
		return nil
	}

	var out []Node

	for c := n.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && (name == "" || c.Data == name) {
			out = append(out, elementNode(c))
		}
	}

	return out
}

// Element returns the first child element of n named name.
func (n Node) Element(name string) (Node, bool) {
	if n.node == nil || n.attr >= 0 {
		return Node{}, false
	}

	for c := n.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return elementNode(c), true
		}
	}

	return Node{}, false
}

// String returns the string value of the node.
func (n Node) String() string { return n.StringValue() }

// LogValue identifies the node by name and, where present, line number.
func (n Node) LogValue() slog.Value {
	if n.node == nil {
		return slog.StringValue("<nil>")
	}

	attrs := []slog.Attr{slog.String("name", n.Name())}
	if n.node.LineNumber > 0 {
		attrs = append(attrs, slog.Int("line", n.node.LineNumber))
	}

	return slog.GroupValue(attrs...)
}

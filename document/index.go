package document

import (
	"slices"
	"strings"
)

// HierarchyReferences are the NodeIds of the OPC UA reference types that
// link a node to its children: HasComponent, HasProperty, Organizes,
// HasChild, Aggregates and HasSubtype.
var HierarchyReferences = []string{ //nolint:gochecknoglobals
	"i=47", "i=46", "i=35", "i=34", "i=44", "i=45",
}

// reference is one hierarchical reference of a NodeSet node.
type reference struct {
	target  string
	forward bool
}

// entry is a top-level NodeSet node.
type entry struct {
	node Node
	id   string
	refs []reference
}

// Index resolves browse paths over the hierarchical references of an OPC UA
// NodeSet. It is built once per document and is read-only afterwards.
type Index struct {
	byName map[string][]*entry
	byID   map[string]*entry
	byNode map[Node]*entry
	nodes  []*entry
}

func newIndex(d *Document) *Index {
	x := &Index{
		byName: map[string][]*entry{},
		byID:   map[string]*entry{},
		byNode: map[Node]*entry{},
	}

	root, ok := d.Root()
	if !ok || d.kind != KindNodeSet {
		return x
	}

	hierarchy := map[string]bool{}
	for _, ref := range HierarchyReferences {
		hierarchy[ref] = true
	}

	if aliases, ok := root.Element("Aliases"); ok {
		for _, alias := range aliases.Elements("Alias") {
			if name, ok := alias.Attr("Alias"); ok && hierarchy[strings.TrimSpace(alias.StringValue())] {
				hierarchy[name] = true
			}
		}
	}

	for _, n := range root.Elements("") {
		id, ok := n.Attr("NodeId")
		if !ok {
			continue
		}

		e := &entry{node: n, id: id}

		if refs, ok := n.Element("References"); ok {
			for _, r := range refs.Elements("Reference") {
				typ, _ := r.Attr("ReferenceType")
				if !hierarchy[typ] {
					continue
				}

				fwd, ok := r.Attr("IsForward")
				e.refs = append(e.refs, reference{
					target:  strings.TrimSpace(r.StringValue()),
					forward: !ok || strings.TrimSpace(fwd) == "true",
				})
			}
		}

		name, _ := n.Attr("BrowseName")
		x.byName[name] = append(x.byName[name], e)
		x.nodes = append(x.nodes, e)
		x.byNode[n] = e

		if _, dup := x.byID[id]; !dup {
			x.byID[id] = e
		}
	}

	return x
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int { return len(x.nodes) }

// Resolve follows the browse names in path from a root node, which must be
// the only top-level node with the first browse name, through hierarchical
// references. Among same-named candidates for each following segment, the
// first one connected to the previously resolved node is taken. Blank
// segments are ignored.
func (x *Index) Resolve(path []string) (Node, bool) {
	var curr *entry

	for _, seg := range path {
		if strings.TrimSpace(strings.ReplaceAll(seg, "/", "")) == "" {
			continue
		}

		candidates := x.byName[seg]

		if curr == nil {
			if len(candidates) != 1 {
				return Node{}, false
			}

			curr = candidates[0]

			continue
		}

		next := x.connected(curr, candidates)
		if next == nil {
			return Node{}, false
		}

		curr = next
	}

	if curr == nil {
		return Node{}, false
	}

	return curr.node, true
}

func (x *Index) connected(parent *entry, candidates []*entry) *entry {
	for _, c := range candidates {
		if parent.hasChild(c.id) || c.hasParent(parent.id) {
			return c
		}
	}

	return nil
}

func (e *entry) hasChild(id string) bool {
	return slices.ContainsFunc(e.refs, func(r reference) bool {
		return r.forward && r.target == id
	})
}

func (e *entry) hasParent(id string) bool {
	return slices.ContainsFunc(e.refs, func(r reference) bool {
		return !r.forward && r.target == id
	})
}

// Children returns the hierarchical children of n: the targets of its
// forward references followed by the nodes holding an inverse reference to
// n, each listed once.
func (x *Index) Children(n Node) []Node {
	e, ok := x.byNode[n]
	if !ok {
		return nil
	}

	seen := map[*entry]bool{}
	out := []Node{}

	add := func(c *entry) {
		if c != nil && !seen[c] {
			seen[c] = true
			out = append(out, c.node)
		}
	}

	for _, r := range e.refs {
		if r.forward {
			add(x.byID[r.target])
		}
	}

	for _, c := range x.nodes {
		if c.hasParent(e.id) {
			add(c)
		}
	}

	return out
}

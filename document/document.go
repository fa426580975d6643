package document

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html/charset"

	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/value"
)

// Kind identifies the dialect of a source document.
type Kind int

const (
	// KindXML is any XML document.
	KindXML Kind = iota
	// KindNodeSet is an OPC UA NodeSet (root element UANodeSet).
	KindNodeSet
	// KindAML is an AutomationML document (root element CAEXFile).
	KindAML
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNodeSet:
		return "nodeset"
	case KindAML:
		return "aml"
	default:
		return "xml"
	}
}

// Namespace bound for AutomationML documents.
const (
	CAEXPrefix    = "caex"
	CAEXNamespace = "http://www.dke.de/CAEX"
)

const (
	nodeSetElement = "UANodeSet"
	amlElement     = "CAEXFile"
)

// Document is a parsed source document together with its XPath namespace
// bindings and its lazily built browse-path index.
//
// A Document is safe for concurrent use. Namespace bindings should be
// established before evaluation begins; binding a prefix discards the
// compiled expression cache.
type Document struct {
	exprs sync.Map // string -> *xpath.Expr
	root  *xmlquery.Node
	ns    map[string]string
	index *Index
	name  string
	kind  Kind
	parts []Relationship
	mu    sync.RWMutex
	once  sync.Once
}

// Parse reads an XML document from r. The decoder is strict and does not
// expand entities other than the predefined XML entities. name identifies
// the document in logs and errors.
func Parse(ctx context.Context, r io.Reader, name string) (*Document, error) {
	root, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:        true,
			CharsetReader: charset.NewReaderLabel,
		},
		WithLineNumbers: true,
	})
	if err != nil {
		return nil, ErrParse.Wrap(err).With(slog.String("document", name))
	}

	doc := &Document{
		root: root,
		name: name,
		ns:   map[string]string{},
	}

	elem, ok := doc.Root()
	if !ok {
		return nil, ErrNoRootElement.With(slog.String("document", name))
	}

	switch elem.Name() {
	case nodeSetElement:
		doc.kind = KindNodeSet
	case amlElement:
		doc.kind = KindAML
		doc.ns[CAEXPrefix] = CAEXNamespace
	}

	log.FromContext(ctx).DebugContext(ctx, "parsed document",
		slog.String("document", name),
		slog.String("kind", doc.kind.String()),
		slog.String("root", elem.Name()),
	)

	return doc, nil
}

// Load reads the document stored at path. The file extension selects the
// reader: .xml, .ua and .aml files are parsed as XML, and .amlx files are
// opened as AMLX containers whose root AML document is parsed.
func Load(ctx context.Context, path string, opts ...Option) (*Document, error) {
	cfg := apply(options{}, opts...)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xml", ".ua", ".aml":
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrParse.Wrap(err).With(slog.String("document", path))
		}
		defer f.Close()

		return Parse(ctx, f, path)

	case ".amlx":
		c, err := OpenContainerFile(path)
		if err != nil {
			return nil, err
		}
		defer c.Close()

		doc, err := c.Document(ctx)
		if err != nil {
			return nil, err
		}

		if cfg.partsDir != "" {
			if _, err := c.Extract(ctx, cfg.partsDir); err != nil {
				return nil, err
			}
		}

		return doc, nil

	default:
		return nil, ErrUnsupported.With(
			slog.String("document", path),
			slog.String("extension", ext),
		)
	}
}

// Name returns the name the document was loaded with.
func (d *Document) Name() string { return d.name }

// Kind returns the dialect of the document.
func (d *Document) Kind() Kind { return d.kind }

// Parts returns the relationships of the non-AML parts of the container the
// document was loaded from, if any.
func (d *Document) Parts() []Relationship { return d.parts }

// Root returns the document element.
func (d *Document) Root() (Node, bool) {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return elementNode(c), true
		}
	}

	return Node{}, false
}

// Top returns the document node, the parent of the document element.
func (d *Document) Top() Node { return elementNode(d.root) }

// Bind associates prefix with the namespace uri for XPath evaluation.
// Rebinding a prefix to a different namespace overrides the earlier binding
// and logs a warning.
func (d *Document) Bind(ctx context.Context, prefix, uri string) error {
	if strings.TrimSpace(prefix) == "" {
		return ErrInvalidPrefix.With(slog.String("uri", uri))
	}

	u, err := url.Parse(uri)
	if err != nil || uri == "" {
		return ErrInvalidNamespace.Wrap(err).With(
			slog.String("prefix", prefix),
			slog.String("uri", uri),
		)
	}

	valid := u.String()
	logger := log.FromContext(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	switch current, ok := d.ns[prefix]; {
	case !ok:
		d.ns[prefix] = valid
	case current != valid:
		logger.WarnContext(ctx, "namespace prefix overridden",
			slog.String("prefix", prefix),
			slog.String("current", current),
			slog.String("uri", valid),
		)

		d.ns[prefix] = valid
	default:
		logger.InfoContext(ctx, "namespace prefix already bound",
			slog.String("prefix", prefix),
			slog.String("uri", current),
		)

		return nil
	}

	d.exprs.Clear()

	return nil
}

// Namespaces returns a copy of the current namespace bindings.
func (d *Document) Namespaces() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return maps.Clone(d.ns)
}

func (d *Document) compile(path string) (*xpath.Expr, error) {
	if e, ok := d.exprs.Load(path); ok {
		return e.(*xpath.Expr), nil //nolint:forcetypeassert
	}

	d.mu.RLock()
	e, err := xpath.CompileWithNS(path, d.ns)
	d.mu.RUnlock()

	if err != nil {
		return nil, ErrInvalidXPath.Wrap(err).With(slog.String("xpath", path))
	}

	d.exprs.Store(path, e)

	return e, nil
}

// owns reports whether n is a node of d.
func (d *Document) owns(n Node) bool {
	if n.node == nil {
		return false
	}

	top := n.node
	for top.Parent != nil {
		top = top.Parent
	}

	return top == d.root
}

func (d *Document) context(item value.Node) (Node, error) {
	n, ok := item.(Node)
	if !ok || !d.owns(n) {
		return Node{}, ErrForeignNode.With(slog.String("document", d.name))
	}

	return n, nil
}

// Evaluate evaluates the XPath expression path against the context node
// item. The result is a bool, float64, string or a []any of [Node].
func (d *Document) Evaluate(item value.Node, path string) (any, error) {
	n, err := d.context(item)
	if err != nil {
		return nil, err
	}

	e, err := d.compile(path)
	if err != nil {
		return nil, err
	}

	switch res := e.Evaluate(newNavigator(d.root, n)).(type) {
	case *xpath.NodeIterator:
		nodes := []any{}
		for res.MoveNext() {
			if nav, ok := res.Current().(*navigator); ok {
				nodes = append(nodes, nav.Node())
			}
		}

		return nodes, nil
	default:
		return res, nil
	}
}

// Select returns the result of the XPath expression path evaluated against
// the context node item, as a list. Node-set results list the selected
// nodes in document order; any other result is a singleton list.
func (d *Document) Select(item value.Node, path string) ([]any, error) {
	res, err := d.Evaluate(item, path)
	if err != nil {
		return nil, err
	}

	return value.List(res), nil
}

// StringValue returns the string value of the XPath expression path
// evaluated against the context node item. A node-set yields the string
// value of its first node, or the empty string if it is empty.
func (d *Document) StringValue(item value.Node, path string) (string, error) {
	res, err := d.Evaluate(item, path)
	if err != nil {
		return "", err
	}

	if nodes, ok := res.([]any); ok {
		if len(nodes) == 0 {
			return "", nil
		}

		return value.String(nodes[0]), nil
	}

	return value.String(res), nil
}

// Index returns the browse-path index of the document, building it on
// first use.
func (d *Document) Index() *Index {
	d.once.Do(func() { d.index = newIndex(d) })

	return d.index
}

// BrowsePath returns the NodeId of the NodeSet node reached by following
// the browse names in path.
func (d *Document) BrowsePath(path []string) (string, bool) {
	n, ok := d.Index().Resolve(path)
	if !ok {
		return "", false
	}

	return n.Attr("NodeId")
}

// Children returns the hierarchical children of the NodeSet node reached by
// following the browse names in path.
func (d *Document) Children(path []string) ([]any, bool) {
	n, ok := d.Index().Resolve(path)
	if !ok {
		return nil, false
	}

	children := d.Index().Children(n)
	out := make([]any, len(children))

	for i, c := range children {
		out[i] = c
	}

	return out, true
}

// LogValue identifies the document by name and kind.
func (d *Document) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", d.name),
		slog.String("kind", d.kind.String()),
	)
}

package document

import (
	"archive/zip"
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/ardnew/docxform/log"
)

// Relationship types used in the package relationships of an AMLX
// container.
const (
	relationshipBase = "http://schemas.automationml.org/container/relationship/"

	RelRootDocument     = relationshipBase + "RootDocument"
	RelLibrary          = relationshipBase + "Library"
	RelCAEXSchema       = relationshipBase + "CAEXSchema"
	RelCollada          = relationshipBase + "Collada"
	RelColladaSchema    = relationshipBase + "ColladaSchema"
	RelPLCOpenXML       = relationshipBase + "PLCOpenXML"
	RelPLCOpenXMLSchema = relationshipBase + "PLCOpenXMLSchema"
	RelAnyContent       = relationshipBase + "AnyContent"
)

const relsPart = "_rels/.rels"

// Relationship is an entry of the package relationships part.
type Relationship struct {
	ID     string
	Type   string
	Target string
}

// IsAML reports whether the relationship targets an AML document or one of
// the schemas shipped alongside it.
func (r Relationship) IsAML() bool {
	switch r.Type {
	case RelRootDocument, RelLibrary, RelCAEXSchema, RelColladaSchema, RelPLCOpenXMLSchema:
		return true
	default:
		return false
	}
}

// Container is an AMLX package: a zip archive following the Open Packaging
// Conventions whose root AML document is named by a RootDocument
// relationship.
type Container struct {
	zr     *zip.Reader
	closer io.Closer
	name   string
	rels   []Relationship
}

// OpenContainerFile opens the AMLX container stored at name.
func OpenContainerFile(name string) (*Container, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, ErrContainer.Wrap(err).With(slog.String("container", name))
	}

	c, err := newContainer(&rc.Reader, name)
	if err != nil {
		rc.Close()

		return nil, err
	}

	c.closer = rc

	return c, nil
}

// OpenContainer reads an AMLX container of the given size from r.
func OpenContainer(r io.ReaderAt, size int64, name string) (*Container, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, ErrContainer.Wrap(err).With(slog.String("container", name))
	}

	return newContainer(zr, name)
}

func newContainer(zr *zip.Reader, name string) (*Container, error) {
	c := &Container{zr: zr, name: name}

	f, err := c.open(relsPart)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	top, err := xmlquery.Parse(f)
	if err != nil {
		return nil, ErrContainer.Wrap(err).With(
			slog.String("container", name),
			slog.String("part", relsPart),
		)
	}

	for _, n := range xmlquery.Find(top, "//*[local-name()='Relationship']") {
		c.rels = append(c.rels, Relationship{
			ID:     n.SelectAttr("Id"),
			Type:   n.SelectAttr("Type"),
			Target: n.SelectAttr("Target"),
		})
	}

	return c, nil
}

// Close releases the underlying file, if the container was opened by name.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}

	return c.closer.Close()
}

// Relationships returns all package relationships.
func (c *Container) Relationships() []Relationship {
	return slices.Clone(c.rels)
}

// Root returns the relationship naming the root AML document.
func (c *Container) Root() (Relationship, error) {
	var roots []Relationship

	for _, r := range c.rels {
		if r.Type == RelRootDocument {
			roots = append(roots, r)
		}
	}

	switch len(roots) {
	case 0:
		return Relationship{}, ErrNoRootDocument.With(slog.String("container", c.name))
	case 1:
		return roots[0], nil
	default:
		return Relationship{}, ErrMultipleRootDocuments.With(
			slog.String("container", c.name),
			slog.Int("count", len(roots)),
		)
	}
}

// Parts returns the relationships of the parts that are not AML documents
// or schemas, such as attached PDF or CAD files.
func (c *Container) Parts() []Relationship {
	var out []Relationship

	for _, r := range c.rels {
		if !r.IsAML() {
			out = append(out, r)
		}
	}

	return out
}

// Document parses the root AML document of the container.
func (c *Container) Document(ctx context.Context) (*Document, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}

	f, err := c.open(root.Target)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Parse(ctx, f, c.name+"!"+partName(root.Target))
	if err != nil {
		return nil, err
	}

	doc.parts = c.Parts()

	return doc, nil
}

// Extract writes the non-AML parts of the container below dir, keeping
// their paths within the package. It returns the written file names.
func (c *Container) Extract(ctx context.Context, dir string) ([]string, error) {
	logger := log.FromContext(ctx)

	var written []string

	for _, r := range c.Parts() {
		name := filepath.Join(dir, filepath.FromSlash(partName(r.Target)))

		if err := c.extract(r.Target, name); err != nil {
			return written, err
		}

		logger.DebugContext(ctx, "extracted container part",
			slog.String("part", r.Target),
			slog.String("file", name),
		)

		written = append(written, name)
	}

	return written, nil
}

func (c *Container) extract(target, name string) error {
	src, err := c.open(target)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil { //nolint:mnd
		return ErrContainer.Wrap(err).With(slog.String("file", name))
	}

	dst, err := os.Create(name)
	if err != nil {
		return ErrContainer.Wrap(err).With(slog.String("file", name))
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()

		return ErrContainer.Wrap(err).With(slog.String("file", name))
	}

	if err := dst.Close(); err != nil {
		return ErrContainer.Wrap(err).With(slog.String("file", name))
	}

	return nil
}

// open opens the part named by a relationship target. Part names are
// matched case-insensitively.
func (c *Container) open(target string) (io.ReadCloser, error) {
	want := partName(target)

	for _, f := range c.zr.File {
		if strings.EqualFold(partName(f.Name), want) {
			rc, err := f.Open()
			if err != nil {
				return nil, ErrContainer.Wrap(err).With(slog.String("part", want))
			}

			return rc, nil
		}
	}

	return nil, ErrPartNotFound.With(
		slog.String("container", c.name),
		slog.String("part", want),
	)
}

// partName normalizes a part name to a relative slash-separated path that
// cannot leave the package root.
func partName(target string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(target, "\\", "/")), "/")
}

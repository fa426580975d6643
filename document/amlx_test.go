package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const relsTemplate = `<?xml version="1.0" encoding="utf-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">%s</Relationships>`

func rel(id, typ, target string) string {
	return `<Relationship Id="` + id + `" Type="` + typ + `" Target="` + target + `"/>`
}

func buildContainer(t *testing.T, rels string, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	write := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	write(relsPart, fmt.Sprintf(relsTemplate, rels))

	for name, content := range parts {
		write(name, content)
	}

	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func standardContainer(t *testing.T) []byte {
	t.Helper()

	return buildContainer(t,
		rel("R1", RelRootDocument, "/Plant.aml")+
			rel("R2", RelAnyContent, "/docs/manual.pdf")+
			rel("R3", RelCAEXSchema, "/schema/CAEX.xsd"),
		map[string]string{
			"Plant.aml":           amlSource,
			"docs/manual.pdf":     "%PDF-1.4",
			"schema/CAEX.xsd":     "<xs:schema/>",
			"[Content_Types].xml": "<Types/>",
		})
}

func TestContainerDocument(t *testing.T) {
	data := standardContainer(t)

	c, err := OpenContainer(bytes.NewReader(data), int64(len(data)), "plant.amlx")
	require.NoError(t, err)

	defer c.Close()

	assert.Len(t, c.Relationships(), 3)

	root, err := c.Root()
	require.NoError(t, err)
	assert.Equal(t, "R1", root.ID)

	parts := c.Parts()
	require.Len(t, parts, 1)
	assert.Equal(t, "/docs/manual.pdf", parts[0].Target)

	doc, err := c.Document(t.Context())
	require.NoError(t, err)
	assert.Equal(t, KindAML, doc.Kind())
	assert.Equal(t, "plant.amlx!Plant.aml", doc.Name())
	assert.Equal(t, parts, doc.Parts())

	name, err := doc.StringValue(doc.Top(), "/caex:CAEXFile/@FileName")
	require.NoError(t, err)
	assert.Equal(t, "plant.aml", name)
}

func TestContainerRootErrors(t *testing.T) {
	tests := []struct {
		name string
		rels string
		err  error
	}{
		{"no_root", rel("R2", RelAnyContent, "/a.pdf"), ErrNoRootDocument},
		{"two_roots", rel("R1", RelRootDocument, "/a.aml") + rel("R2", RelRootDocument, "/b.aml"), ErrMultipleRootDocuments},
		{"missing_part", rel("R1", RelRootDocument, "/absent.aml"), ErrPartNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildContainer(t, tt.rels, map[string]string{"a.aml": amlSource, "b.aml": amlSource})

			c, err := OpenContainer(bytes.NewReader(data), int64(len(data)), tt.name)
			require.NoError(t, err)

			_, err = c.Document(t.Context())
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestContainerNotZip(t *testing.T) {
	data := []byte("not a zip archive")

	_, err := OpenContainer(bytes.NewReader(data), int64(len(data)), "bogus.amlx")
	require.ErrorIs(t, err, ErrContainer)
}

func TestLoadContainerExtractsParts(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "plant.amlx")
	require.NoError(t, os.WriteFile(name, standardContainer(t), 0o600))

	out := filepath.Join(dir, "parts")

	doc, err := Load(t.Context(), name, WithPartsDir(out))
	require.NoError(t, err)
	assert.Equal(t, KindAML, doc.Kind())

	got, err := os.ReadFile(filepath.Join(out, "docs", "manual.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))

	_, err = os.Stat(filepath.Join(out, "schema", "CAEX.xsd"))
	assert.True(t, os.IsNotExist(err))
}

func TestPartName(t *testing.T) {
	tests := map[string]string{
		"/Plant.aml":        "Plant.aml",
		"docs/manual.pdf":   "docs/manual.pdf",
		"../../etc/passwd":  "etc/passwd",
		`lib\nested\x.aml`: "lib/nested/x.aml",
		"/a/./b/../c.aml":   "a/c.aml",
	}

	for in, want := range tests {
		assert.Equal(t, want, partName(in), in)
	}
}

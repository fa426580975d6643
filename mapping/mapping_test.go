package mapping

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/docxform/document"
	"github.com/ardnew/docxform/lang"
	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	r, err := schema.NewRegistry("Env",
		&schema.Descriptor{Name: "Item", Properties: []schema.Property{
			{Name: "idShort"}, {Name: "value"},
		}},
		&schema.Descriptor{Name: "Greeted", Properties: []schema.Property{
			{Name: "idShort"}, {Name: "greeting"}, {Name: "value", Kind: schema.KindFloat},
		}},
		&schema.Descriptor{Name: "Env", Properties: []schema.Property{
			{Name: "label"},
			{Name: "items", Kind: schema.KindObject, Type: "Item", List: true},
			{Name: "greeted", Kind: schema.KindObject, Type: "Greeted", List: true},
		}},
	)
	require.NoError(t, err)

	return r
}

func load(t *testing.T, src string, opts ...Option) (*Specification, error) {
	t.Helper()

	return LoadBytes(t.Context(), []byte(src), opts...)
}

func mustLoad(t *testing.T, src string, opts ...Option) *Specification {
	t.Helper()

	spec, err := load(t, src, opts...)
	require.NoError(t, err)

	return spec
}

func quiet() Option {
	return WithLogger(log.Make(nil))
}

func list(t *testing.T, x *schema.Instance, name string) []*schema.Instance {
	t.Helper()

	return instances(x, name)
}

func get(t *testing.T, x *schema.Instance, name string) any {
	t.Helper()

	v, ok := x.Get(name)
	require.True(t, ok, "property %q is not set", name)

	return v
}

func TestUnknownBinding(t *testing.T) {
	_, err := load(t, `{
		"env": {
			"items": [{
				"@bind": {
					"idShort": "x",
					"bogusProperty": {"@var": "greeting"},
					"value": "v"
				}
			}]
		}
	}`, WithRegistry(testRegistry(t)), quiet())

	require.ErrorIs(t, err, ErrUnknownBinding)

	var be *BindingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Item", be.Type)
	assert.Equal(t, []string{"bogusProperty"}, be.Keys)
	assert.Equal(t, "env.items[0]", be.Path)
}

func TestForeachBindings(t *testing.T) {
	r := testRegistry(t)

	spec := mustLoad(t, `{
		"@header": {"@parameters": {"greeting": "how to say hello"}},
		"env": {
			"greeted": [{
				"@foreach": {"@list": [1, 2, 3]},
				"@definitions": {"circle": {"@pi": []}},
				"@bind": {
					"greeting": {"@var": "greeting"},
					"value": {"@def": "circle"}
				}
			}]
		}
	}`, WithRegistry(r), quiet())

	out, err := Transform(t.Context(), spec, nil, map[string]string{"greeting": "hi"},
		WithRegistry(r), quiet())
	require.NoError(t, err)

	got := list(t, out, "greeted")
	require.Len(t, got, 3)

	for _, g := range got {
		assert.Equal(t, "hi", get(t, g, "greeting"))
		assert.InDelta(t, 3.14159, get(t, g, "value"), 1e-5)
	}
}

func TestEmptyForeach(t *testing.T) {
	r := testRegistry(t)

	spec := mustLoad(t, `{
		"env": {
			"label": "empty",
			"items": [{"@foreach": {"@nil": []}, "idShort": "never"}]
		}
	}`, WithRegistry(r), quiet())

	out, err := Transform(t.Context(), spec, nil, nil, WithRegistry(r), quiet())
	require.NoError(t, err)

	assert.Equal(t, "empty", get(t, out, "label"))
	assert.Empty(t, list(t, out, "items"))
}

func TestVariableScoping(t *testing.T) {
	r := testRegistry(t)

	spec := mustLoad(t, `{
		"@header": {
			"@parameters": {"greeting": ""},
			"@definitions": {"base": {"@var": "greeting"}},
			"@variables": {"greeting": {"@concatenate": [{"@var": "greeting"}, "-header"]}}
		},
		"env": {
			"items": [{
				"@variables": {
					"first": {"@def": "base"},
					"second": {"@concatenate": [{"@var": "first"}, "!"]}
				},
				"@bind": {"idShort": {"@var": "second"}, "value": {"@var": "greeting"}}
			}]
		}
	}`, WithRegistry(r), quiet())

	out, err := Transform(t.Context(), spec, nil, map[string]string{"greeting": "hi"},
		WithRegistry(r), quiet())
	require.NoError(t, err)

	items := list(t, out, "items")
	require.Len(t, items, 1)

	// External inputs override header variables of the same name.
	assert.Equal(t, "hi!", get(t, items[0], "idShort"))
	assert.Equal(t, "hi", get(t, items[0], "value"))
}

func TestMissingInputs(t *testing.T) {
	spec := mustLoad(t, `{
		"@header": {"@parameters": {"a": "first", "b": "second", "c": "third"}},
		"env": {}
	}`, WithRegistry(testRegistry(t)), quiet())

	err := CheckInputs(spec, map[string]string{"b": "2"})
	require.ErrorIs(t, err, ErrMissingInputs)

	var mie *MissingInputsError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, []string{"a", "c"}, mie.Names)

	_, err = Transform(t.Context(), spec, nil, nil, WithRegistry(testRegistry(t)), quiet())
	require.ErrorIs(t, err, ErrMissingInputs)

	require.NoError(t, CheckInputs(spec, map[string]string{"a": "", "b": "", "c": ""}))
}

func TestForgivingTruncation(t *testing.T) {
	r := testRegistry(t)

	var buf bytes.Buffer

	logger := WithLogger(log.Make(&buf, log.WithLevel(log.LevelWarn)))

	spec := mustLoad(t, `{
		"env": {
			"@foreach": {"@list": ["one", "two"]},
			"label": ["first", "second"],
			"items": {"idShort": "single"}
		}
	}`, WithRegistry(r), logger)

	out, err := Transform(t.Context(), spec, nil, nil, WithRegistry(r), logger)
	require.NoError(t, err)

	assert.Equal(t, "first", get(t, out, "label"))

	items := list(t, out, "items")
	require.Len(t, items, 1)
	assert.Equal(t, "single", get(t, items[0], "idShort"))

	assert.Contains(t, buf.String(), "only the first item is used")
	assert.Contains(t, buf.String(), "only the first is returned")
}

func TestBindingFallback(t *testing.T) {
	r := testRegistry(t)

	spec := mustLoad(t, `{
		"env": {
			"greeted": [{
				"@bind": {"value": "not a number"},
				"idShort": "kept"
			}]
		}
	}`, WithRegistry(r), quiet())

	out, err := Transform(t.Context(), spec, nil, nil, WithRegistry(r), quiet())
	require.NoError(t, err)

	got := list(t, out, "greeted")
	require.Len(t, got, 1)
	assert.False(t, got[0].Has("value"))
	assert.Equal(t, "kept", get(t, got[0], "idShort"))
}

func TestEvaluationError(t *testing.T) {
	r := testRegistry(t)

	spec := mustLoad(t, `{
		"env": {"items": [{"@bind": {"idShort": {"@entry": [{"@list": [1]}, 0]}}}]}
	}`, WithRegistry(r), quiet())

	_, err := Transform(t.Context(), spec, nil, nil, WithRegistry(r), quiet())
	require.ErrorIs(t, err, lang.ErrNonPositiveIndex)
}

func TestCanceled(t *testing.T) {
	r := testRegistry(t)

	spec := mustLoad(t, `{
		"env": {"items": [{"@foreach": {"@range": [1, 5]}, "idShort": "x"}]}
	}`, WithRegistry(r), quiet())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Transform(ctx, spec, nil, nil, WithRegistry(r), quiet())
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"not_object", `[1, 2]`, ErrInvalidSpecification},
		{"no_root", `{"@header": {}}`, ErrMissingRoot},
		{"two_roots", `{"a": {}, "b": {}}`, ErrMultipleRoots},
		{"root_not_object", `{"a": 1}`, ErrInvalidTemplate},
		{"bind_in_header", `{"@header": {"@bind": {}}, "a": {}}`, ErrBindInHeader},
		{"unknown_header_key", `{"@header": {"versoin": "1"}, "a": {}}`, ErrInvalidHeader},
		{"bad_namespace", `{"@header": {"@namespaces": {"x": ""}}, "a": {}}`, ErrInvalidHeader},
		{"unknown_directive", `{"a": {"@forech": []}}`, ErrUnknownDirective},
		{"bind_not_object", `{"a": {"items": {"@bind": [1]}}}`, ErrInvalidDirective},
		{"unknown_property", `{"a": {"lable": "x"}}`, schema.ErrUnknownProperty},
		{"unknown_operator", `{"a": {"@foreach": {"@bogus": 1}}}`, lang.ErrInvalidOperator},
		{"missing_operator", `{"a": {"@foreach": {"default": 1}}}`, lang.ErrDefaultWithoutExpression},
		{"object_property_scalar", `{"a": {"items": "x"}}`, ErrInvalidTemplate},
		{"scalar_property_object", `{"a": {"label": {"x": 1}}}`, schema.ErrPropertyValue},
		{"bad_model_type", `{"a": {"items": {"modelType": "Env"}}}`, schema.ErrNotSubtype},
		{"malformed_json", `{"a": `, ErrReadSpecification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.src, WithRegistry(testRegistry(t)), quiet())
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadAbstractType(t *testing.T) {
	_, err := load(t, `{
		"aasEnvironmentMapping": {
			"submodels": [{"submodelElements": [{"idShort": "x"}]}]
		}
	}`, quiet())
	require.ErrorIs(t, err, schema.ErrAbstractType)

	spec := mustLoad(t, `{
		"aasEnvironmentMapping": {
			"submodels": [{"submodelElements": [
				{"modelType": {"name": "Property"}, "idShort": "x"}
			]}]
		}
	}`, quiet())

	var types []string

	spec.Walk(func(t *Template) bool {
		types = append(types, t.Type.Name)

		return true
	})

	assert.Equal(t, []string{schema.AASEnvironment, "Submodel", "Property"}, types)
}

func TestHeader(t *testing.T) {
	spec := mustLoad(t, `{
		"@header": {
			"version": "1.0.0",
			"aasVersion": "3.0RC01",
			"@namespaces": {"caex": "http://www.dke.de/CAEX", "ua": "http://opcfoundation.org/UA/2011/03/UANodeSet.xsd"},
			"@parameters": {"assetId": "global asset ID", "serial": "serial number"}
		},
		"aasEnvironmentMapping": {}
	}`, quiet())

	h := spec.Header
	assert.Equal(t, "1.0.0", h.Version)
	assert.Equal(t, "3.0RC01", h.AASVersion)
	assert.Equal(t, []Namespace{
		{Prefix: "caex", URI: "http://www.dke.de/CAEX"},
		{Prefix: "ua", URI: "http://opcfoundation.org/UA/2011/03/UANodeSet.xsd"},
	}, h.Namespaces)
	assert.Equal(t, []string{"assetId", "serial"}, h.ParameterNames())
	assert.Equal(t, "serial number", h.Parameters[1].Description)
	assert.Equal(t, "aasEnvironmentMapping", spec.RootKey)
}

const plantSource = `<?xml version="1.0" encoding="utf-8"?>
<CAEXFile FileName="plant.aml" xmlns="http://www.dke.de/CAEX">
  <InstanceHierarchy Name="Plant">
    <InternalElement Name="Pump" ID="p1">
      <Attribute Name="Manufacturer"><Value>ACME</Value></Attribute>
    </InternalElement>
    <InternalElement Name="Valve" ID="v1">
      <Attribute Name="Manufacturer"><Value>Bolt</Value></Attribute>
    </InternalElement>
  </InstanceHierarchy>
</CAEXFile>`

const plantMapping = `{
	"@header": {
		"@namespaces": {"caex": "http://www.dke.de/CAEX"},
		"@parameters": {"assetId": "global asset ID"},
		"@definitions": {"name": {"@xpath": "@Name"}}
	},
	"aasEnvironmentMapping": {
		"assetAdministrationShells": [{
			"idShort": "Shell",
			"identification": {"idType": "Custom", "@bind": {"id": {"@var": "assetId"}}}
		}],
		"submodels": [{
			"@foreach": {"@xpath": "//caex:InternalElement"},
			"@bind": {"idShort": {"@def": "name"}},
			"identification": {
				"@bind": {"idType": "Custom", "id": {"@concatenate": ["urn:", {"@def": "name"}]}}
			},
			"submodelElements": [{
				"modelType": "Property",
				"idShort": "Manufacturer",
				"valueType": "string",
				"@bind": {"value": {"@caexAttributeName": "Manufacturer"}}
			}]
		}]
	}
}`

func TestTransformDocument(t *testing.T) {
	doc, err := document.Parse(t.Context(), strings.NewReader(plantSource), "plant.aml")
	require.NoError(t, err)

	spec := mustLoad(t, plantMapping, quiet())

	out, err := Transform(t.Context(), spec, doc, map[string]string{"assetId": "urn:asset:1"}, quiet())
	require.NoError(t, err)

	submodels := list(t, out, "submodels")
	require.Len(t, submodels, 2)

	for i, want := range []string{"Pump", "Valve"} {
		sm := submodels[i]
		assert.Equal(t, want, get(t, sm, "idShort"))

		ident := get(t, sm, "identification").(*schema.Instance)
		assert.Equal(t, "urn:"+want, get(t, ident, "id"))

		elems := list(t, sm, "submodelElements")
		require.Len(t, elems, 1)
		assert.Equal(t, "Property", elems[0].Type().Name)
		assert.Equal(t, "Manufacturer", get(t, elems[0], "idShort"))
	}

	assert.Equal(t, "ACME", get(t, list(t, submodels[0], "submodelElements")[0], "value"))
	assert.Equal(t, "Bolt", get(t, list(t, submodels[1], "submodelElements")[0], "value"))

	shells := list(t, out, "assetAdministrationShells")
	require.Len(t, shells, 1)

	ident := get(t, shells[0], "identification").(*schema.Instance)
	assert.Equal(t, "urn:asset:1", get(t, ident, "id"))

	refs := list(t, shells[0], "submodels")
	require.Len(t, refs, 2)

	keys := list(t, refs[1], "keys")
	require.Len(t, keys, 1)
	assert.Equal(t, "urn:Valve", get(t, keys[0], "value"))
	assert.Equal(t, KeyTypeSubmodel, get(t, keys[0], "type"))
}

func TestAutoWireKeepsExistingReferences(t *testing.T) {
	r := schema.Default()

	raw, err := lang.DecodeBytes([]byte(`{
		"assetAdministrationShells": [
			{"idShort": "wired", "submodels": [{"keys": [{"type": "Submodel", "value": "urn:other"}]}]},
			{"idShort": "bare"}
		],
		"submodels": [
			{"idShort": "a", "identification": {"id": "urn:a"}},
			{"idShort": "anonymous"}
		]
	}`))
	require.NoError(t, err)

	root, err := r.FromObject(schema.AASEnvironment, raw.(lang.Object))
	require.NoError(t, err)

	require.NoError(t, AutoWireSubmodels(t.Context(), r, root))

	shells := list(t, root, "assetAdministrationShells")
	require.Len(t, shells, 2)

	wired := list(t, shells[0], "submodels")
	require.Len(t, wired, 1)
	assert.Equal(t, "urn:other", get(t, list(t, wired[0], "keys")[0], "value"))

	bare := list(t, shells[1], "submodels")
	require.Len(t, bare, 1)
	assert.Equal(t, "urn:a", get(t, list(t, bare[0], "keys")[0], "value"))
	assert.Equal(t, IDTypeCustom, get(t, list(t, bare[0], "keys")[0], "idType"))
}

func TestCache(t *testing.T) {
	t.Cleanup(ClearCache)

	const src = `{"aasEnvironmentMapping": {"submodels": [{"idShort": "a"}]}}`

	first, err := LoadReader(t.Context(), strings.NewReader(src), quiet())
	require.NoError(t, err)

	second, err := LoadReader(t.Context(), strings.NewReader(src), quiet())
	require.NoError(t, err)
	assert.Same(t, first, second)

	ClearCache()

	third, err := LoadReader(t.Context(), strings.NewReader(src), quiet())
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	r := testRegistry(t)
	custom := `{"env": {"label": "x"}}`

	a, err := LoadReader(t.Context(), strings.NewReader(custom), WithRegistry(r), quiet())
	require.NoError(t, err)

	b, err := LoadReader(t.Context(), strings.NewReader(custom), WithRegistry(r), quiet())
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	_, err = LoadReader(t.Context(), strings.NewReader(`{"bogus": {}, "other": {}}`), quiet())
	require.ErrorIs(t, err, ErrMultipleRoots)

	_, err = LoadReader(t.Context(), strings.NewReader(`{"bogus": {}, "other": {}}`), quiet())
	require.ErrorIs(t, err, ErrMultipleRoots)
}

func TestLoadFile(t *testing.T) {
	t.Cleanup(ClearCache)

	path := filepath.Join(t.TempDir(), "plant.json")
	require.NoError(t, os.WriteFile(path, []byte(plantMapping), 0o600))

	spec, err := LoadFile(t.Context(), path, quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"assetId"}, spec.Header.ParameterNames())

	_, err = LoadFile(t.Context(), filepath.Join(t.TempDir(), "absent.json"), quiet())
	require.ErrorIs(t, err, ErrReadSpecification)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPrintlnOutput(t *testing.T) {
	r := testRegistry(t)

	var out bytes.Buffer

	spec := mustLoad(t, `{
		"env": {"items": [{"@bind": {"idShort": {"@println": ["built", "item"]}}}]}
	}`, WithRegistry(r), quiet())

	_, err := Transform(t.Context(), spec, nil, nil, WithRegistry(r), WithOutput(&out), quiet())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "built")
}

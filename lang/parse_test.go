package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string, opts ...ParseOption) *Expression {
	t.Helper()

	e, err := ParseBytes([]byte(src), opts...)
	require.NoError(t, err, "parse %s", src)

	return e
}

func TestParseForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		op   Op
		want string
	}{
		{"string", `"hello"`, OpConstant, ""},
		{"number", `42`, OpConstant, ""},
		{"null", `null`, OpConstant, ""},
		{"array", `[1, "a"]`, OpList, ""},
		{"builtin", `{"@plus": [1, 2]}`, OpCall, "plus"},
		{"builtin_single_arg", `{"@negate": 3}`, OpCall, "negate"},
		{"constant", `{"@pi": []}`, OpConstant, "pi"},
		{"constant_ignores_args", `{"@pi": [1, 2]}`, OpConstant, "pi"},
		{"variable", `{"@var": "greeting"}`, OpVariable, "greeting"},
		{"definition", `{"@def": "assetId"}`, OpDefinition, "assetId"},
		{"xpath", `{"@xpath": "caex:InternalElement"}`, OpPath, ""},
		{"browse_path", `{"@uaBrowsePath": ["Root", "Objects"]}`, OpBrowsePath, ""},
		{"children", `{"@uaChildren": ["Root"]}`, OpChildren, ""},
		{"attribute", `{"@caexAttributeName": "Manufacturer"}`, OpAttributeName, "Manufacturer"},
		{"expr", `{"@expr": "1 + 2"}`, OpExpr, "1 + 2"},
		{"default", `{"@var": "x", "default": "fallback"}`, OpDefault, ""},
		{"ignores_plain_keys", `{"comment": "note", "@var": "x"}`, OpVariable, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustParse(t, tt.src)
			assert.Equal(t, tt.op, e.Op())
			assert.Equal(t, tt.want, e.Name())
		})
	}
}

func TestParseNumbers(t *testing.T) {
	e := mustParse(t, `[1, 2.5, 123456789012345678901234567890]`)
	require.Len(t, e.Args(), 3)

	assert.Equal(t, int64(1), e.Args()[0].Value())
	assert.Equal(t, 2.5, e.Args()[1].Value())
	assert.Equal(t, "123456789012345678901234567890", e.Args()[2].String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  *Error
	}{
		{"empty_object", `{}`, ErrMissingOperator},
		{"no_operator", `{"name": "x"}`, ErrMissingOperator},
		{"unknown_operator", `{"@plsu": [1]}`, ErrInvalidOperator},
		{"two_operators", `{"@var": "a", "@def": "b"}`, ErrMultipleOperators},
		{"default_first", `{"default": 1, "@var": "a"}`, ErrDefaultWithoutExpression},
		{"var_not_string", `{"@var": 3}`, ErrNameNotConstant},
		{"def_computed", `{"@def": {"@concatenate": ["a", "b"]}}`, ErrNameNotConstant},
		{"attribute_two_names", `{"@caexAttributeName": ["a", "b"]}`, ErrNameNotConstant},
		{"expr_syntax", `{"@expr": "1 +"}`, ErrExprCompile},
		{"trailing_data", `1 2`, ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.src))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseSuggestions(t *testing.T) {
	_, err := ParseBytes([]byte(`{"@concat": ["a"]}`))
	require.ErrorIs(t, err, ErrInvalidOperator)

	var perr *Error
	require.ErrorAs(t, err, &perr)

	var suggestions []string

	for _, a := range perr.Attrs() {
		if a.Key == "suggestions" {
			suggestions, _ = a.Value.Any().([]string)
		}
	}

	assert.Contains(t, suggestions, "concatenate")
}

func TestMarshalRoundTrip(t *testing.T) {
	srcs := []string{
		`{"@plus":[1,2.5]}`,
		`{"@pi":[]}`,
		`{"@var":"greeting"}`,
		`{"@def":"assetId","default":"none"}`,
		`{"@xpath":["@Name"]}`,
		`{"@uaBrowsePath":["Root","Objects"]}`,
		`{"@caexAttributeName":"Manufacturer"}`,
		`{"@expr":"1 + 2"}`,
		`["a",true,null]`,
	}

	for _, src := range srcs {
		e := mustParse(t, src)
		assert.JSONEq(t, src, e.String())

		again := mustParse(t, e.String())
		assert.Equal(t, e.String(), again.String())
	}
}

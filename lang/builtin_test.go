package lang

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, c *Context, name string, args ...any) (any, error) {
	t.Helper()

	b, ok := LookupBuiltin(name)
	require.True(t, ok, "builtin %q", name)

	return b.apply(c, args)
}

func emptyContext(t *testing.T, opts ...ContextOption) *Context {
	t.Helper()

	c, err := NewContext(t.Context(), nil, nil, nil, nil, opts...)
	require.NoError(t, err)

	return c
}

func TestBuiltinArithmetic(t *testing.T) {
	c := emptyContext(t)

	tests := []struct {
		name string
		fn   string
		args []any
		want any
	}{
		{"plus_mixed", "plus", []any{int64(1), 2.5}, 3.5},
		{"plus_ints", "plus", []any{int64(1), int64(2), int64(3)}, int64(6)},
		{"plus_spread_list", "plus", []any{[]any{int64(4), int64(5)}}, int64(9)},
		{"plus_numeric_strings", "plus", []any{"2", "3"}, int64(5)},
		{"times", "times", []any{int64(3), int64(4)}, int64(12)},
		{"minus", "minus", []any{int64(10), int64(4)}, int64(6)},
		{"divide_ints", "divide", []any{int64(7), int64(2)}, int64(3)},
		{"divide_floats", "divide", []any{7.0, 2.0}, 3.5},
		{"negate", "negate", []any{int64(5)}, int64(-5)},
		{"power", "power", []any{int64(2), int64(10)}, 1024.0},
		{"root", "root", []any{int64(27), int64(3)}, math.Pow(27, 1.0/3)},
		{"abs_negative", "abs", []any{int64(-3)}, int64(3)},
		{"abs_positive", "abs", []any{2.5}, 2.5},
		{"max", "max", []any{int64(1), int64(9), int64(4)}, int64(9)},
		{"min", "min", []any{int64(7), int64(2), int64(4)}, int64(2)},
		{"round_half_up", "round", []any{2.5}, 3.0},
		{"round_negative_half", "round", []any{-2.5}, -2.0},
		{"ceiling", "ceiling", []any{1.2}, 2.0},
		{"floor", "floor", []any{1.8}, 1.0},
		{"trunc", "trunc", []any{-1.8}, -1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, c, tt.fn, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltinCommutative(t *testing.T) {
	c := emptyContext(t)
	pairs := [][2]any{
		{int64(3), 4.5},
		{int64(math.MaxInt64), int64(1)},
		{"12", int64(30)},
	}

	for _, fn := range []string{"plus", "times"} {
		for _, p := range pairs {
			ab, err := call(t, c, fn, p[0], p[1])
			require.NoError(t, err)

			ba, err := call(t, c, fn, p[1], p[0])
			require.NoError(t, err)

			eq, err := call(t, c, "eq", ab, ba)
			require.NoError(t, err)
			assert.Equal(t, true, eq, "%s(%v, %v)", fn, p[0], p[1])
		}
	}
}

func TestBuiltinMalformedNumberIsNaN(t *testing.T) {
	c := emptyContext(t)

	got, err := call(t, c, "plus", "abc", int64(1))
	require.NoError(t, err)

	f, ok := got.(float64)
	require.True(t, ok)
	assert.True(t, math.IsNaN(f))
}

func TestBuiltinErrors(t *testing.T) {
	c := emptyContext(t)

	_, err := call(t, c, "divide", int64(1), int64(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = call(t, c, "entry", []any{"a"}, int64(0))
	require.ErrorIs(t, err, ErrNonPositiveIndex)

	_, err = call(t, c, "entry", []any{"a"}, int64(2))
	require.ErrorIs(t, err, ErrArgumentType)

	_, err = call(t, c, "minus", int64(1))
	require.ErrorIs(t, err, ErrArgumentCount)
}

func TestBuiltinConstruction(t *testing.T) {
	c := emptyContext(t)

	got, err := call(t, c, "range", int64(1), int64(3))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)

	got, err = call(t, c, "range", int64(3), int64(1))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = call(t, c, "set", int64(1), "a", int64(1), "a", int64(2))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a", int64(2)}, got)

	got, err = call(t, c, "entry", []any{"a", "b", "c"}, int64(2))
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	got, err = call(t, c, "intersect",
		[]any{int64(1), int64(2), int64(3)}, []any{int64(3), int64(1)})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3)}, got)

	got, err = call(t, c, "block", int64(1), "last")
	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func TestBuiltinComparison(t *testing.T) {
	c := emptyContext(t)

	tests := []struct {
		fn   string
		a, b any
		want bool
	}{
		{"eq", "1", int64(1), true},
		{"eq", int64(2), 2.0, true},
		{"eq", "a", "a", true},
		{"neq", "a", "b", true},
		{"lt", int64(1), 1.5, true},
		{"lt", "10", "9", false},
		{"leq", int64(2), int64(2), true},
		{"gt", "b", "a", true},
		{"geq", int64(1), int64(2), false},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got, err := call(t, c, tt.fn, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s(%v, %v)", tt.fn, tt.a, tt.b)
		})
	}
}

func TestBuiltinBoolean(t *testing.T) {
	c := emptyContext(t)

	got, err := call(t, c, "not", "false")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = call(t, c, "and", true, int64(1), "x")
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = call(t, c, "or", false, int64(0), nil)
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestBuiltinStrings(t *testing.T) {
	c := emptyContext(t)

	got, err := call(t, c, "concatenate", "a", []any{"b", int64(1)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ab1", got)

	h1, err := call(t, c, "concatenate_and_hash", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "fb8e20fc2e4c3f248c60c39bd652f3c1347298bb977b8b4d5903b85055620603", h1)

	h2, err := call(t, c, "concatenate_and_hash", []any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	got, err = call(t, c, "base64", "hello")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", got)

	id, err := call(t, c, "generateId")
	require.NoError(t, err)
	require.IsType(t, "", id)
	assert.True(t, strings.HasPrefix(id.(string), "urn:uuid:"))

	other, err := call(t, c, "generateId")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestBuiltinIsNaN(t *testing.T) {
	c := emptyContext(t)

	for _, tt := range []struct {
		arg  any
		want bool
	}{
		{math.NaN(), true},
		{"abc", true},
		{int64(1), false},
		{"2.5", false},
	} {
		got, err := call(t, c, "isNaN", tt.arg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "isNaN(%v)", tt.arg)
	}
}

func TestBuiltinPrintln(t *testing.T) {
	var buf bytes.Buffer

	c := emptyContext(t, WithOutput(&buf))

	got, err := call(t, c, "println", "value:", int64(42), []any{"a"})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "value: 42 [a]\n", buf.String())
}

func TestConstants(t *testing.T) {
	v, ok := LookupConstant("pi")
	require.True(t, ok)
	assert.InDelta(t, math.Pi, v, 1e-15)

	v, ok = LookupConstant("nil")
	require.True(t, ok)
	assert.Equal(t, []any{}, v)

	v, ok = LookupConstant("null")
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = LookupConstant("tau")
	assert.False(t, ok)
}

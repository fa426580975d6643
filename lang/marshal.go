package lang

import (
	"math"
	"math/big"

	"github.com/cockroachdb/apd"
	"github.com/goccy/go-json"

	"github.com/ardnew/docxform/value"
)

// MarshalJSON writes e in the syntax [Parse] accepts.
func (e *Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.tree())
}

// tree returns the JSON form of e as plain values.
func (e *Expression) tree() any {
	switch e.op {
	case OpConstant:
		if e.name != "" {
			return map[string]any{"@" + e.name: []any{}}
		}

		return JSONValue(e.val)

	case OpVariable, OpDefinition, OpAttributeName, OpExpr:
		return map[string]any{"@" + e.op.String(): e.name}

	case OpCall:
		return map[string]any{"@" + e.name: trees(e.args)}

	case OpList:
		return trees(e.args)

	case OpPath, OpBrowsePath, OpChildren:
		return map[string]any{"@" + e.op.String(): trees(e.args)}

	case OpDefault:
		primary, ok := e.args[0].tree().(map[string]any)
		if !ok {
			primary = map[string]any{"@block": []any{e.args[0].tree()}}
		}

		primary[KeyDefault] = e.args[1].tree()

		return primary

	default:
		return nil
	}
}

func trees(exprs []*Expression) []any {
	out := make([]any, len(exprs))
	for i, x := range exprs {
		out[i] = x.tree()
	}

	return out
}

// JSONValue converts a dynamic value to a JSON-encodable one. Numbers are
// written exactly, non-finite floats as strings and document nodes as their
// string value.
func JSONValue(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = JSONValue(e)
		}

		return out
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return value.String(t)
		}

		return json.Number(value.String(t))
	case *apd.Decimal:
		if t.Form != apd.Finite {
			return value.String(t)
		}

		return json.Number(t.String())
	case *big.Int, int64, int, int32, uint64, uint32, float32:
		return json.Number(value.String(t))
	default:
		return value.String(t)
	}
}

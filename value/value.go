package value

import (
	"errors"
	"math/big"

	"github.com/cockroachdb/apd"
)

// Errors returned by conversions and arithmetic.
var (
	// ErrNumberFormat indicates a value that cannot be read as a number.
	ErrNumberFormat = errors.New("malformed number")

	// ErrDivisionByZero indicates an exact division or remainder by zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrRange indicates a number too large for the requested representation.
	ErrRange = errors.New("number out of range")
)

// Node is a source document node. The document provider owns the node; the
// value package only reads its string value.
type Node interface {
	// StringValue returns the concatenated text content of the node, or the
	// attribute value for attribute nodes.
	StringValue() string
}

// Kind identifies the representation of a dynamic value.
type Kind int

const (
	// KindNull is the kind of nil.
	KindNull Kind = iota
	// KindBool is the kind of bool.
	KindBool
	// KindInt is the kind of int64 (and narrower integers).
	KindInt
	// KindFloat is the kind of float64 and float32.
	KindFloat
	// KindBigInt is the kind of *big.Int.
	KindBigInt
	// KindDecimal is the kind of *apd.Decimal.
	KindDecimal
	// KindString is the kind of string.
	KindString
	// KindList is the kind of []any.
	KindList
	// KindNode is the kind of [Node].
	KindNode
	// KindUnknown is the kind of any other Go value.
	KindUnknown
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBigInt:
		return "bigint"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindNode:
		return "node"
	default:
		return "unknown"
	}
}

// ParseKind returns the kind named s, or KindUnknown.
func ParseKind(s string) Kind {
	for k := KindNull; k < KindUnknown; k++ {
		if k.String() == s {
			return k
		}
	}

	return KindUnknown
}

// IsNumeric reports whether k is one of the four numeric representations.
func (k Kind) IsNumeric() bool {
	return k >= KindInt && k <= KindDecimal
}

// KindOf returns the kind of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return KindInt
	case uint64:
		if v.(uint64) > 1<<63-1 {
			return KindBigInt
		}

		return KindInt
	case float32, float64:
		return KindFloat
	case *big.Int:
		return KindBigInt
	case *apd.Decimal:
		return KindDecimal
	case string:
		return KindString
	case []any:
		return KindList
	case Node:
		return KindNode
	default:
		return KindUnknown
	}
}

// List coerces v to an ordered list: a list is returned as is, nil yields an
// empty list and any other value yields a singleton list.
func List(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	default:
		return []any{v}
	}
}

// IsEmpty reports whether v is nil or an empty list.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// Equal reports whether a and b are structurally identical: same kind and
// same content. Numbers of different representations are never Equal; use
// [Compare] for numeric equality.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindList:
		x, y := a.([]any), b.([]any)
		if len(x) != len(y) {
			return false
		}

		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}

		return true
	case KindDecimal:
		x, y := a.(*apd.Decimal), b.(*apd.Decimal)

		return x.CmpTotal(y) == 0
	case KindInt, KindFloat, KindBigInt:
		x, _ := normalize(a)
		y, _ := normalize(b)

		if bx, ok := x.(*big.Int); ok {
			return bx.Cmp(y.(*big.Int)) == 0
		}

		return x == y
	case KindUnknown:
		return false
	default:
		return canCompare(a, b) && a == b
	}
}

// canCompare reports whether a and b can be compared with == without
// panicking.
func canCompare(a, b any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	_ = a == b

	return true
}

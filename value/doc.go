// Package value defines the dynamic values manipulated by mapping expressions
// and the coercions between them.
//
// A dynamic value is one of the following Go types:
//
//   - nil
//   - bool
//   - int64, float64, *big.Int or *apd.Decimal
//   - string
//   - []any (ordered list of dynamic values)
//   - [Node] (an opaque source document node)
//
// Other Go integer and floating-point types are accepted on input and
// normalized to int64 and float64.
//
// # Numeric Tower
//
// Binary arithmetic selects a result representation with [SelectNumericType].
// The more general operand wins:
//
//	*apd.Decimal > *big.Int > float64 > int64
//
// A *big.Int combined with a float64 yields an *apd.Decimal, since neither
// of the two can hold the other exactly. Operations on int64 that overflow
// are promoted to *big.Int rather than wrapping.
//
// Strings and document nodes take part in arithmetic through their parsed
// numeric value. A string that is not a number makes the operation fail with
// [ErrNumberFormat].
package value

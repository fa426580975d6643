package value

import (
	"cmp"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/cockroachdb/apd"
)

// SelectNumericType returns the representation in which a binary operation
// on operands of kinds a and b is carried out. Both kinds must be numeric.
//
// Operands of the same kind keep it. Otherwise the more general kind wins
// (decimal > bigint > float > int), except that bigint with float yields
// decimal. If exact is set and either operand is fractional (float or
// decimal), the result is decimal so that no operand loses precision.
func SelectNumericType(a, b Kind, exact bool) Kind {
	if a == b {
		return a
	}

	if exact && (a.fractional() || b.fractional()) {
		return KindDecimal
	}

	switch {
	case a == KindDecimal || b == KindDecimal:
		return KindDecimal
	case a == KindBigInt && b == KindFloat, a == KindFloat && b == KindBigInt:
		return KindDecimal
	case a == KindBigInt || b == KindBigInt:
		return KindBigInt
	case a == KindFloat || b == KindFloat:
		return KindFloat
	default:
		return KindInt
	}
}

func (k Kind) fractional() bool {
	return k == KindFloat || k == KindDecimal
}

// binary implements one arithmetic operation for each representation.
type binary struct {
	name string
	ints func(x, y int64) (any, error)
	flts func(x, y float64) any
	bigs func(x, y *big.Int) (any, error)
	decs func(x, y *apd.Decimal) (*apd.Decimal, error)
}

func (op binary) apply(a, b any) (any, error) {
	x, err := numeric(a)
	if err != nil {
		return nil, err
	}

	y, err := numeric(b)
	if err != nil {
		return nil, err
	}

	switch SelectNumericType(KindOf(x), KindOf(y), false) {
	case KindInt:
		return op.ints(x.(int64), y.(int64))

	case KindFloat:
		fx, _ := floatOf(x)
		fy, _ := floatOf(y)

		return op.flts(fx, fy), nil

	case KindBigInt:
		bx, _ := bigOf(x)
		by, _ := bigOf(y)

		return op.bigs(bx, by)

	default:
		dx, err := decimalOf(x)
		if err != nil {
			return nil, err
		}

		dy, err := decimalOf(y)
		if err != nil {
			return nil, err
		}

		d, err := op.decs(dx, dy)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRange, op.name, err)
		}

		return d, nil
	}
}

//nolint:gochecknoglobals
var (
	opAdd = binary{
		name: "add",
		ints: func(x, y int64) (any, error) {
			if s := x + y; (s > x) == (y > 0) {
				return s, nil
			}

			return new(big.Int).Add(big.NewInt(x), big.NewInt(y)), nil
		},
		flts: func(x, y float64) any { return x + y },
		bigs: func(x, y *big.Int) (any, error) { return new(big.Int).Add(x, y), nil },
		decs: func(x, y *apd.Decimal) (*apd.Decimal, error) {
			d := new(apd.Decimal)
			_, err := decimalContext.Add(d, x, y)

			return d, err
		},
	}

	opSubtract = binary{
		name: "subtract",
		ints: func(x, y int64) (any, error) {
			if s := x - y; (s < x) == (y > 0) {
				return s, nil
			}

			return new(big.Int).Sub(big.NewInt(x), big.NewInt(y)), nil
		},
		flts: func(x, y float64) any { return x - y },
		bigs: func(x, y *big.Int) (any, error) { return new(big.Int).Sub(x, y), nil },
		decs: func(x, y *apd.Decimal) (*apd.Decimal, error) {
			d := new(apd.Decimal)
			_, err := decimalContext.Sub(d, x, y)

			return d, err
		},
	}

	opMultiply = binary{
		name: "multiply",
		ints: func(x, y int64) (any, error) {
			if x == 0 || y == 0 {
				return int64(0), nil
			}

			p := x * y
			if p/y == x && !(x == -1 && y == math.MinInt64) && !(y == -1 && x == math.MinInt64) {
				return p, nil
			}

			return new(big.Int).Mul(big.NewInt(x), big.NewInt(y)), nil
		},
		flts: func(x, y float64) any { return x * y },
		bigs: func(x, y *big.Int) (any, error) { return new(big.Int).Mul(x, y), nil },
		decs: func(x, y *apd.Decimal) (*apd.Decimal, error) {
			d := new(apd.Decimal)
			_, err := decimalContext.Mul(d, x, y)

			return d, err
		},
	}

	opDivide = binary{
		name: "divide",
		ints: func(x, y int64) (any, error) {
			switch {
			case y == 0:
				return nil, ErrDivisionByZero
			case x == math.MinInt64 && y == -1:
				return new(big.Int).Neg(big.NewInt(x)), nil
			default:
				return x / y, nil
			}
		},
		flts: func(x, y float64) any { return x / y },
		bigs: func(x, y *big.Int) (any, error) {
			if y.Sign() == 0 {
				return nil, ErrDivisionByZero
			}

			return new(big.Int).Quo(x, y), nil
		},
		decs: func(x, y *apd.Decimal) (*apd.Decimal, error) {
			if y.Form == apd.Finite && y.IsZero() {
				return nil, ErrDivisionByZero
			}

			d := new(apd.Decimal)
			_, err := decimalContext.Quo(d, x, y)

			return d, err
		},
	}

	opRemainder = binary{
		name: "remainder",
		ints: func(x, y int64) (any, error) {
			if y == 0 {
				return nil, ErrDivisionByZero
			}

			return x % y, nil
		},
		flts: func(x, y float64) any { return math.Mod(x, y) },
		bigs: func(x, y *big.Int) (any, error) {
			if y.Sign() == 0 {
				return nil, ErrDivisionByZero
			}

			return new(big.Int).Rem(x, y), nil
		},
		decs: func(x, y *apd.Decimal) (*apd.Decimal, error) {
			if y.Form == apd.Finite && y.IsZero() {
				return nil, ErrDivisionByZero
			}

			d := new(apd.Decimal)
			_, err := decimalContext.Rem(d, x, y)

			return d, err
		},
	}
)

// Add returns a + b.
func Add(a, b any) (any, error) { return opAdd.apply(a, b) }

// Subtract returns a - b.
func Subtract(a, b any) (any, error) { return opSubtract.apply(a, b) }

// Multiply returns a * b.
func Multiply(a, b any) (any, error) { return opMultiply.apply(a, b) }

// Divide returns a / b. Integer division truncates toward zero and returns
// [ErrDivisionByZero] for a zero divisor; float division follows IEEE 754.
func Divide(a, b any) (any, error) { return opDivide.apply(a, b) }

// Remainder returns the remainder of a / b, with the sign of a.
func Remainder(a, b any) (any, error) { return opRemainder.apply(a, b) }

// Negate returns -a.
func Negate(a any) (any, error) {
	n, err := numeric(a)
	if err != nil {
		return nil, err
	}

	switch t := n.(type) {
	case int64:
		if t == math.MinInt64 {
			return new(big.Int).Neg(big.NewInt(t)), nil
		}

		return -t, nil
	case float64:
		return -t, nil
	case *big.Int:
		return new(big.Int).Neg(t), nil
	default:
		return new(apd.Decimal).Neg(t.(*apd.Decimal)), nil
	}
}

// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
//
// Two textual operands (strings or nodes) compare as numbers when both parse
// as numbers and lexically otherwise. All other operands compare as numbers
// in a representation that holds both exactly. The order is total: NaN
// equals NaN and sorts before every other number.
func Compare(a, b any) (int, error) {
	if sa, ok := text(a); ok {
		if sb, ok := text(b); ok {
			x, errx := ParseNumber(sa)
			y, erry := ParseNumber(sb)

			if errx != nil || erry != nil {
				return strings.Compare(sa, sb), nil
			}

			return compareNumbers(x, y)
		}
	}

	x, err := numeric(a)
	if err != nil {
		return 0, err
	}

	y, err := numeric(b)
	if err != nil {
		return 0, err
	}

	return compareNumbers(x, y)
}

func compareNumbers(x, y any) (int, error) {
	switch SelectNumericType(KindOf(x), KindOf(y), true) {
	case KindInt:
		return cmp.Compare(x.(int64), y.(int64)), nil

	case KindFloat:
		return cmp.Compare(x.(float64), y.(float64)), nil

	case KindBigInt:
		bx, _ := bigOf(x)
		by, _ := bigOf(y)

		return bx.Cmp(by), nil

	default:
		dx, err := decimalOf(x)
		if err != nil {
			return 0, err
		}

		dy, err := decimalOf(y)
		if err != nil {
			return 0, err
		}

		return compareDecimals(dx, dy), nil
	}
}

func compareDecimals(x, y *apd.Decimal) int {
	xnan := x.Form == apd.NaN || x.Form == apd.NaNSignaling
	ynan := y.Form == apd.NaN || y.Form == apd.NaNSignaling

	switch {
	case xnan && ynan:
		return 0
	case xnan:
		return -1
	case ynan:
		return 1
	default:
		return x.Cmp(y)
	}
}

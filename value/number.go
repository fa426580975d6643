package value

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd"
)

// DecimalPrecision is the number of significant digits kept by decimal
// arithmetic, matching IEEE 754 decimal128.
const DecimalPrecision = 34

//nolint:gochecknoglobals
var decimalContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(DecimalPrecision)
	c.Rounding = apd.RoundHalfEven

	return c
}()

// ParseNumber reads s as a number. Integers that fit in 64 bits yield int64
// and larger integers yield *big.Int. Anything else strconv.ParseFloat accepts
// yields float64, unless its magnitude is out of range, in which case it
// yields *apd.Decimal.
func ParseNumber(s string) (any, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil, fmt.Errorf("%w: %q", ErrNumberFormat, s)
	}

	i, err := strconv.ParseInt(t, 10, 64)
	if err == nil {
		return i, nil
	}

	if errors.Is(err, strconv.ErrRange) {
		if z, ok := new(big.Int).SetString(t, 10); ok {
			return z, nil
		}
	}

	f, err := strconv.ParseFloat(t, 64)
	if err == nil {
		return f, nil
	}

	if errors.Is(err, strconv.ErrRange) {
		if d, _, derr := apd.NewFromString(t); derr == nil {
			return d, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNumberFormat, s)
}

// normalize returns the canonical numeric representation of a Go number.
// ok is false if v is not a Go number.
func normalize(v any) (n any, ok bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return normalize(uint64(t))
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return new(big.Int).SetUint64(t), true
		}

		return int64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case *big.Int:
		if t == nil {
			return new(big.Int), true
		}

		return t, true
	case *apd.Decimal:
		if t == nil {
			return new(apd.Decimal), true
		}

		return t, true
	default:
		return nil, false
	}
}

// numeric coerces a dynamic value to its canonical numeric representation.
// Null reads as 0 and booleans as 0 or 1. Strings and nodes are parsed, and
// a single-element list reads as its element.
func numeric(v any) (any, error) {
	if n, ok := normalize(v); ok {
		return n, nil
	}

	switch t := v.(type) {
	case nil:
		return int64(0), nil
	case bool:
		if t {
			return int64(1), nil
		}

		return int64(0), nil
	case string:
		return ParseNumber(t)
	case Node:
		return ParseNumber(t.StringValue())
	case []any:
		if len(t) == 1 {
			return numeric(t[0])
		}

		return nil, fmt.Errorf("%w: list of %d elements", ErrNumberFormat, len(t))
	default:
		return nil, fmt.Errorf("%w: %T", ErrNumberFormat, v)
	}
}

// text returns the string form of values that compare as text: strings,
// nodes and single-element lists of either.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case Node:
		return t.StringValue(), true
	case []any:
		if len(t) == 1 {
			return text(t[0])
		}
	}

	return "", false
}

// Bool returns the truth value of v. Null, false, zero, the empty string,
// the empty list and strings reading as false or zero are false. NaN and all
// other values are true.
func Bool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return textBool(t)
	case Node:
		return textBool(t.StringValue())
	case []any:
		return len(t) > 0
	}

	if n, ok := normalize(v); ok {
		return !isZero(n)
	}

	return true
}

func textBool(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}

	if b, err := strconv.ParseBool(t); err == nil {
		return b
	}

	if n, err := ParseNumber(t); err == nil {
		return !isZero(n)
	}

	return true
}

func isZero(n any) bool {
	switch t := n.(type) {
	case int64:
		return t == 0
	case float64:
		return t == 0
	case *big.Int:
		return t.Sign() == 0
	case *apd.Decimal:
		return t.Form == apd.Finite && t.IsZero()
	default:
		return false
	}
}

// Int returns v as an int64, truncating any fractional part.
func Int(v any) (int64, error) {
	n, err := numeric(v)
	if err != nil {
		return 0, err
	}

	return intOf(n)
}

// Float returns v as a float64. Precision may be lost for large integers and
// decimals.
func Float(v any) (float64, error) {
	n, err := numeric(v)
	if err != nil {
		return 0, err
	}

	return floatOf(n)
}

// BigInt returns v as a *big.Int, truncating any fractional part.
func BigInt(v any) (*big.Int, error) {
	n, err := numeric(v)
	if err != nil {
		return nil, err
	}

	return bigOf(n)
}

// Decimal returns v as an *apd.Decimal. Floats convert through their
// shortest decimal representation.
func Decimal(v any) (*apd.Decimal, error) {
	n, err := numeric(v)
	if err != nil {
		return nil, err
	}

	return decimalOf(n)
}

// IsNaN reports whether v is a floating-point or decimal NaN.
func IsNaN(v any) bool {
	n, ok := normalize(v)
	if !ok {
		return false
	}

	switch t := n.(type) {
	case float64:
		return math.IsNaN(t)
	case *apd.Decimal:
		return t.Form == apd.NaN || t.Form == apd.NaNSignaling
	default:
		return false
	}
}

// IsIntegral reports whether v is a number without a fractional part.
// NaN and infinities are not integral.
func IsIntegral(v any) bool {
	n, ok := normalize(v)
	if !ok {
		return false
	}

	switch t := n.(type) {
	case float64:
		return !math.IsInf(t, 0) && t == math.Trunc(t)
	case *apd.Decimal:
		if t.Form != apd.Finite {
			return false
		}

		frac := new(apd.Decimal)
		t.Modf(nil, frac)

		return frac.IsZero()
	default:
		return true
	}
}

func intOf(n any) (int64, error) {
	switch t := n.(type) {
	case int64:
		return t, nil
	case float64:
		if math.IsNaN(t) {
			return 0, fmt.Errorf("%w: NaN", ErrNumberFormat)
		}

		if t >= math.MaxInt64 || t < math.MinInt64 {
			return 0, fmt.Errorf("%w: %g", ErrRange, t)
		}

		return int64(t), nil
	default:
		z, err := bigOf(n)
		if err != nil {
			return 0, err
		}

		if !z.IsInt64() {
			return 0, fmt.Errorf("%w: %s", ErrRange, z)
		}

		return z.Int64(), nil
	}
}

func floatOf(n any) (float64, error) {
	switch t := n.(type) {
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(t).Float64()

		return f, nil
	case *apd.Decimal:
		f, err := t.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrNumberFormat, t)
		}

		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNumberFormat, n)
	}
}

func bigOf(n any) (*big.Int, error) {
	switch t := n.(type) {
	case int64:
		return big.NewInt(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: %s", ErrNumberFormat, formatFloat(t))
		}

		z, _ := big.NewFloat(t).Int(nil)

		return z, nil
	case *big.Int:
		return t, nil
	case *apd.Decimal:
		if t.Form != apd.Finite {
			return nil, fmt.Errorf("%w: %s", ErrNumberFormat, formatDecimal(t))
		}

		integ := new(apd.Decimal)
		t.Modf(integ, nil)

		z := new(big.Int).Set(&integ.Coeff)
		if integ.Exponent > 0 {
			scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(integ.Exponent)), nil)
			z.Mul(z, scale)
		}

		if t.Negative {
			z.Neg(z)
		}

		return z, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNumberFormat, n)
	}
}

func decimalOf(n any) (*apd.Decimal, error) {
	switch t := n.(type) {
	case int64:
		return apd.New(t, 0), nil
	case float64:
		d, err := new(apd.Decimal).SetFloat64(t)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNumberFormat, formatFloat(t))
		}

		return d, nil
	case *big.Int:
		return apd.NewWithBigInt(new(big.Int).Set(t), 0), nil
	case *apd.Decimal:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNumberFormat, n)
	}
}

// String returns the string form of v. Null yields the empty string, nodes
// yield their string value and lists are written as "[a, b, c]". Floats and
// decimals are written without an exponent unless their magnitude is
// extreme. NaN and infinities are written as "NaN", "Infinity" and
// "-Infinity".
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case Node:
		return t.StringValue()
	case []any:
		elems := make([]string, len(t))
		for i, e := range t {
			elems[i] = String(e)
		}

		return "[" + strings.Join(elems, ", ") + "]"
	}

	n, ok := normalize(v)
	if !ok {
		return fmt.Sprint(v)
	}

	switch t := n.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatFloat(t)
	case *big.Int:
		return t.String()
	default:
		return formatDecimal(t.(*apd.Decimal))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if a := math.Abs(f); a != 0 && (a < 1e-7 || a >= 1e21) {
		return strconv.FormatFloat(f, 'E', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatDecimal(d *apd.Decimal) string {
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return "NaN"
	case apd.Infinite:
		if d.Negative {
			return "-Infinity"
		}

		return "Infinity"
	}

	if d.IsZero() {
		return "0"
	}

	if adj := int64(d.Exponent) + d.NumDigits() - 1; adj < -7 || adj >= 21 {
		r, _ := new(apd.Decimal).Reduce(d)

		return r.Text('E')
	}

	return d.Text('f')
}

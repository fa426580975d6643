package value

// Convert casts v to the representation of kind, returning fallback if the
// cast fails or kind is not a target representation.
//
// Numeric targets truncate fractional parts toward zero where the target is
// integral. KindString uses [String], KindBool uses [Bool] and KindList
// uses [List]. KindNull always yields nil.
func Convert(kind Kind, v, fallback any) any {
	var (
		out any
		err error
	)

	switch kind {
	case KindNull:
		return nil
	case KindBool:
		return Bool(v)
	case KindString:
		return String(v)
	case KindList:
		return List(v)
	case KindInt:
		out, err = Int(v)
	case KindFloat:
		out, err = Float(v)
	case KindBigInt:
		out, err = BigInt(v)
	case KindDecimal:
		out, err = Decimal(v)
	default:
		return fallback
	}

	if err != nil {
		return fallback
	}

	return out
}

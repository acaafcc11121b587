package template

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/stream"
)

// convert returns v as a value of the instruction kind.
func convert(kind Kind, v field.Value) (field.Value, error) {
	if v.Kind() == kind.ValueKind() {
		return v, nil
	}

	switch kind {
	case KindInt16:
		n, err := v.AsInt16()
		return field.NewInt16(n), err
	case KindUInt16:
		n, err := v.AsUInt16()
		return field.NewUInt16(n), err
	case KindInt32:
		n, err := v.AsInt32()
		return field.NewInt32(n), err
	case KindUInt32:
		n, err := v.AsUInt32()
		return field.NewUInt32(n), err
	case KindInt64:
		n, err := v.AsInt64()
		return field.NewInt64(n), err
	case KindUInt64:
		n, err := v.AsUInt64()
		return field.NewUInt64(n), err
	case KindDecimal:
		d, err := v.AsDecimal()
		return field.NewDecimalValue(d), err
	case KindASCII:
		s, err := v.AsString()
		return field.NewASCII(s), err
	case KindUnicode:
		s, err := v.AsString()
		return field.NewUnicode(s), err
	case KindByteVector:
		b, err := v.AsBytes()
		return field.NewByteVector(b), err
	default:
		return nil, fmt.Errorf("%w: %s is not a scalar kind", errs.ErrTypeMismatch, kind)
	}
}

// zero returns the type default used as delta and tail base.
func zero(kind Kind) field.Value {
	switch kind {
	case KindInt16:
		return field.NewInt16(0)
	case KindUInt16:
		return field.NewUInt16(0)
	case KindInt32:
		return field.NewInt32(0)
	case KindUInt32:
		return field.NewUInt32(0)
	case KindInt64:
		return field.NewInt64(0)
	case KindUInt64:
		return field.NewUInt64(0)
	case KindDecimal:
		return field.NewDecimalValue(field.Decimal{})
	case KindASCII:
		return field.NewASCII("")
	case KindUnicode:
		return field.NewUnicode("")
	default:
		return field.NewByteVector(nil)
	}
}

func signedValue(kind Kind, n int64) (field.Value, error) {
	switch kind {
	case KindInt16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, fmt.Errorf("%w: %d does not fit int16", errs.ErrValueOverflow, n)
		}

		return field.NewInt16(int16(n)), nil
	case KindInt32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d does not fit int32", errs.ErrValueOverflow, n)
		}

		return field.NewInt32(int32(n)), nil
	default:
		return field.NewInt64(n), nil
	}
}

func unsignedValue(kind Kind, n uint64) (field.Value, error) {
	switch kind {
	case KindUInt16:
		if n > math.MaxUint16 {
			return nil, fmt.Errorf("%w: %d does not fit uInt16", errs.ErrValueOverflow, n)
		}

		return field.NewUInt16(uint16(n)), nil
	case KindUInt32:
		if n > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d does not fit uInt32", errs.ErrValueOverflow, n)
		}

		return field.NewUInt32(uint32(n)), nil
	default:
		return field.NewUInt64(n), nil
	}
}

func textValue(kind Kind, b []byte) field.Value {
	switch kind {
	case KindASCII:
		return field.NewASCII(string(b))
	case KindUnicode:
		return field.NewUnicode(string(b))
	default:
		return field.NewByteVector(b)
	}
}

// readValue reads one value of kind. null is only reported for nullable encodings.
func readValue(kind Kind, src *stream.Source, nullable bool) (v field.Value, null bool, err error) {
	switch kind {
	case KindInt16, KindInt32, KindInt64:
		var n int64
		if nullable {
			n, null, err = src.ReadNullableInt64()
		} else {
			n, err = src.ReadInt64()
		}
		if err != nil || null {
			return nil, null, err
		}
		v, err = signedValue(kind, n)

		return v, false, err
	case KindUInt16, KindUInt32, KindUInt64:
		var n uint64
		if nullable {
			n, null, err = src.ReadNullableUInt64()
		} else {
			n, err = src.ReadUInt64()
		}
		if err != nil || null {
			return nil, null, err
		}
		v, err = unsignedValue(kind, n)

		return v, false, err
	case KindDecimal:
		var exp int64
		if nullable {
			exp, null, err = src.ReadNullableInt64()
		} else {
			exp, err = src.ReadInt64()
		}
		if err != nil || null {
			return nil, null, err
		}
		mantissa, err := src.ReadInt64()
		if err != nil {
			return nil, false, err
		}
		if exp < field.MinExponent || exp > field.MaxExponent {
			return nil, false, fmt.Errorf("%w: decimal exponent %d", errs.ErrValueOverflow, exp)
		}

		return field.NewDecimalValue(field.NewDecimal(mantissa, int32(exp))), false, nil
	case KindASCII:
		var s string
		if nullable {
			s, null, err = src.ReadNullableASCII()
		} else {
			s, err = src.ReadASCII()
		}
		if err != nil || null {
			return nil, null, err
		}

		return field.NewASCII(s), false, nil
	default:
		var b []byte
		if nullable {
			b, null, err = src.ReadNullableByteVector()
		} else {
			b, err = src.ReadByteVector()
		}
		if err != nil || null {
			return nil, null, err
		}
		if kind == KindByteVector {
			b = slices.Clone(b)
		}

		return textValue(kind, b), false, nil
	}
}

// writeValue writes v, already converted to kind.
func writeValue(kind Kind, dst *stream.Destination, v field.Value, nullable bool) error {
	switch kind {
	case KindInt16, KindInt32, KindInt64:
		n, err := v.AsInt64()
		if err != nil {
			return err
		}
		if nullable {
			return dst.WriteNullableInt64(n)
		}
		dst.WriteInt64(n)
	case KindUInt16, KindUInt32, KindUInt64:
		n, err := v.AsUInt64()
		if err != nil {
			return err
		}
		if nullable {
			return dst.WriteNullableUInt64(n)
		}
		dst.WriteUInt64(n)
	case KindDecimal:
		d, err := v.AsDecimal()
		if err != nil {
			return err
		}
		if !d.Valid() {
			return fmt.Errorf("%w: decimal exponent %d", errs.ErrValueOverflow, d.Exponent)
		}
		if nullable {
			if err := dst.WriteNullableInt64(int64(d.Exponent)); err != nil {
				return err
			}
		} else {
			dst.WriteInt64(int64(d.Exponent))
		}
		dst.WriteInt64(d.Mantissa)
	case KindASCII:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		if nullable {
			return dst.WriteNullableASCII(s)
		}

		return dst.WriteASCII(s)
	default:
		b, err := v.AsBytes()
		if err != nil {
			return err
		}
		if nullable {
			dst.WriteNullableByteVector(b)
		} else {
			dst.WriteByteVector(b)
		}
	}

	return nil
}

// increment returns v+1.
func increment(kind Kind, v field.Value) (field.Value, error) {
	if kind.ValueKind().IsSigned() {
		n, err := v.AsInt64()
		if err != nil {
			return nil, err
		}
		if n == math.MaxInt64 {
			return nil, fmt.Errorf("%w: increment of %d", errs.ErrValueOverflow, n)
		}

		return signedValue(kind, n+1)
	}

	n, err := v.AsUInt64()
	if err != nil {
		return nil, err
	}
	if n == math.MaxUint64 {
		return nil, fmt.Errorf("%w: increment of %d", errs.ErrValueOverflow, n)
	}

	return unsignedValue(kind, n+1)
}

// addIntegerDelta returns base+delta.
func addIntegerDelta(kind Kind, base field.Value, delta int64) (field.Value, error) {
	if kind.ValueKind().IsSigned() {
		b, err := base.AsInt64()
		if err != nil {
			return nil, err
		}
		r := b + delta
		if (delta > 0 && r < b) || (delta < 0 && r > b) {
			return nil, fmt.Errorf("%w: %d%+d", errs.ErrValueOverflow, b, delta)
		}

		return signedValue(kind, r)
	}

	b, err := base.AsUInt64()
	if err != nil {
		return nil, err
	}
	if delta >= 0 {
		r := b + uint64(delta)
		if r < b {
			return nil, fmt.Errorf("%w: %d%+d", errs.ErrValueOverflow, b, delta)
		}

		return unsignedValue(kind, r)
	}
	m := uint64(-(delta + 1)) + 1
	if m > b {
		return nil, fmt.Errorf("%w: %d%+d", errs.ErrValueOverflow, b, delta)
	}

	return unsignedValue(kind, b-m)
}

// integerDelta returns v-base as a signed delta.
func integerDelta(kind Kind, base, v field.Value) (int64, error) {
	if kind.ValueKind().IsSigned() {
		b, err := base.AsInt64()
		if err != nil {
			return 0, err
		}
		n, err := v.AsInt64()
		if err != nil {
			return 0, err
		}
		d := n - b
		if (n^b)&(n^d) < 0 {
			return 0, fmt.Errorf("%w: delta %d-%d", errs.ErrNotEncodable, n, b)
		}

		return d, nil
	}

	b, err := base.AsUInt64()
	if err != nil {
		return 0, err
	}
	n, err := v.AsUInt64()
	if err != nil {
		return 0, err
	}
	if n >= b {
		d := n - b
		if d > math.MaxInt64 {
			return 0, fmt.Errorf("%w: delta %d-%d", errs.ErrNotEncodable, n, b)
		}

		return int64(d), nil
	}
	d := b - n
	switch {
	case d > 1<<63:
		return 0, fmt.Errorf("%w: delta %d-%d", errs.ErrNotEncodable, n, b)
	case d == 1<<63:
		return math.MinInt64, nil
	default:
		return -int64(d), nil
	}
}

// addDecimalDelta applies an exponent and mantissa delta to base.
func addDecimalDelta(base field.Value, expDelta, mantDelta int64) (field.Value, error) {
	b, err := base.AsDecimal()
	if err != nil {
		return nil, err
	}
	exp := int64(b.Exponent) + expDelta
	if exp < field.MinExponent || exp > field.MaxExponent {
		return nil, fmt.Errorf("%w: decimal exponent %d", errs.ErrValueOverflow, exp)
	}
	m := b.Mantissa + mantDelta
	if (mantDelta > 0 && m < b.Mantissa) || (mantDelta < 0 && m > b.Mantissa) {
		return nil, fmt.Errorf("%w: decimal mantissa %d%+d", errs.ErrValueOverflow, b.Mantissa, mantDelta)
	}

	return field.NewDecimalValue(field.NewDecimal(m, int32(exp))), nil
}

// decimalDelta returns the exponent and mantissa deltas from base to v.
func decimalDelta(base, v field.Value) (expDelta, mantDelta int64, err error) {
	b, err := base.AsDecimal()
	if err != nil {
		return 0, 0, err
	}
	d, err := v.AsDecimal()
	if err != nil {
		return 0, 0, err
	}
	if !d.Valid() {
		return 0, 0, fmt.Errorf("%w: decimal exponent %d", errs.ErrValueOverflow, d.Exponent)
	}
	mantDelta = d.Mantissa - b.Mantissa
	if (d.Mantissa^b.Mantissa)&(d.Mantissa^mantDelta) < 0 {
		return 0, 0, fmt.Errorf("%w: mantissa delta %d-%d", errs.ErrNotEncodable, d.Mantissa, b.Mantissa)
	}

	return int64(d.Exponent) - int64(b.Exponent), mantDelta, nil
}

// applyStringDelta removes subtract bytes from the back of base (from the front when
// subtract is negative, removing -subtract-1 bytes) and appends or prepends diff.
func applyStringDelta(kind Kind, base field.Value, subtract int64, diff []byte) (field.Value, error) {
	b, err := base.AsBytes()
	if err != nil {
		return nil, err
	}

	front := subtract < 0
	n := subtract
	if front {
		n = -subtract - 1
	}
	if n > int64(len(b)) {
		return nil, fmt.Errorf("%w: subtraction length %d exceeds base length %d", errs.ErrInvalidStringDelta, n, len(b))
	}

	out := make([]byte, 0, len(b)-int(n)+len(diff))
	if front {
		out = append(out, diff...)
		out = append(out, b[n:]...)
	} else {
		out = append(out, b[:len(b)-int(n)]...)
		out = append(out, diff...)
	}

	return textValue(kind, out), nil
}

// stringDelta computes the shortest subtraction length and diff turning base into v.
func stringDelta(base, v field.Value) (subtract int64, diff []byte, err error) {
	b, err := base.AsBytes()
	if err != nil {
		return 0, nil, err
	}
	s, err := v.AsBytes()
	if err != nil {
		return 0, nil, err
	}

	prefix := 0
	for prefix < len(b) && prefix < len(s) && b[prefix] == s[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(b) && suffix < len(s) && b[len(b)-1-suffix] == s[len(s)-1-suffix] {
		suffix++
	}

	if prefix >= suffix {
		return int64(len(b) - prefix), s[prefix:], nil
	}

	return -int64(len(b)-suffix) - 1, s[:len(s)-suffix], nil
}

// applyTail replaces the end of base with tail. A tail longer than base replaces it entirely.
func applyTail(kind Kind, base field.Value, tail []byte) (field.Value, error) {
	b, err := base.AsBytes()
	if err != nil {
		return nil, err
	}
	if len(tail) >= len(b) {
		return textValue(kind, tail), nil
	}

	out := make([]byte, 0, len(b))
	out = append(out, b[:len(b)-len(tail)]...)
	out = append(out, tail...)

	return textValue(kind, out), nil
}

// tailOf returns the shortest tail turning base into v.
func tailOf(base, v field.Value) ([]byte, error) {
	b, err := base.AsBytes()
	if err != nil {
		return nil, err
	}
	s, err := v.AsBytes()
	if err != nil {
		return nil, err
	}
	if len(s) > len(b) {
		return s, nil
	}
	if len(s) < len(b) {
		return nil, fmt.Errorf("%w: tail cannot shorten %q to %q", errs.ErrNotEncodable, b, s)
	}

	prefix := 0
	for prefix < len(b) && b[prefix] == s[prefix] {
		prefix++
	}

	return s[prefix:], nil
}

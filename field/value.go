package field

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/arloliu/fastcodec/errs"
)

// Kind tags the concrete container behind a Value.
type Kind uint8

const (
	KindInt16 Kind = iota + 1
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindDecimal
	KindASCII
	KindUnicode
	KindByteVector
	KindGroup
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindInt16:
		return "int16"
	case KindUInt16:
		return "uInt16"
	case KindInt32:
		return "int32"
	case KindUInt32:
		return "uInt32"
	case KindInt64:
		return "int64"
	case KindUInt64:
		return "uInt64"
	case KindDecimal:
		return "decimal"
	case KindASCII:
		return "ascii"
	case KindUnicode:
		return "unicode"
	case KindByteVector:
		return "byteVector"
	case KindGroup:
		return "group"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// IsInteger reports whether k is one of the integer kinds.
func (k Kind) IsInteger() bool {
	return k >= KindInt16 && k <= KindUInt64
}

// IsSigned reports whether k is a signed integer kind.
func (k Kind) IsSigned() bool {
	return k == KindInt16 || k == KindInt32 || k == KindInt64
}

// IsText reports whether k is a string or byte vector kind.
func (k Kind) IsText() bool {
	return k == KindASCII || k == KindUnicode || k == KindByteVector
}

// Value is a typed field value.
//
// Each accessor converts to the requested representation or returns errs.ErrTypeMismatch when
// the container cannot represent it, and errs.ErrValueOverflow when an integer conversion would
// not fit the requested width.
type Value interface {
	Kind() Kind
	AsInt16() (int16, error)
	AsUInt16() (uint16, error)
	AsInt32() (int32, error)
	AsUInt32() (uint32, error)
	AsInt64() (int64, error)
	AsUInt64() (uint64, error)
	AsDecimal() (Decimal, error)
	AsString() (string, error)
	AsBytes() ([]byte, error)
	AsGroup() (Accessor, error)
	AsSequence() (SequenceAccessor, error)
	String() string
}

// mismatch supplies the failing accessors; containers embed it and override what they support.
type mismatch struct{ kind Kind }

func (m mismatch) Kind() Kind { return m.kind }

func (m mismatch) fail(want string) error {
	return fmt.Errorf("%w: %s value is not convertible to %s", errs.ErrTypeMismatch, m.kind, want)
}

func (m mismatch) AsInt16() (int16, error)               { return 0, m.fail("int16") }
func (m mismatch) AsUInt16() (uint16, error)             { return 0, m.fail("uInt16") }
func (m mismatch) AsInt32() (int32, error)               { return 0, m.fail("int32") }
func (m mismatch) AsUInt32() (uint32, error)             { return 0, m.fail("uInt32") }
func (m mismatch) AsInt64() (int64, error)               { return 0, m.fail("int64") }
func (m mismatch) AsUInt64() (uint64, error)             { return 0, m.fail("uInt64") }
func (m mismatch) AsDecimal() (Decimal, error)           { return Decimal{}, m.fail("decimal") }
func (m mismatch) AsString() (string, error)             { return "", m.fail("string") }
func (m mismatch) AsBytes() ([]byte, error)              { return nil, m.fail("byteVector") }
func (m mismatch) AsGroup() (Accessor, error)            { return nil, m.fail("group") }
func (m mismatch) AsSequence() (SequenceAccessor, error) { return nil, m.fail("sequence") }

// integer holds every integer kind. Signed kinds keep the value in i, unsigned in u.
type integer struct {
	mismatch
	i int64
	u uint64
}

// NewInt16 creates an int16 value.
func NewInt16(v int16) Value { return integer{mismatch: mismatch{KindInt16}, i: int64(v)} }

// NewUInt16 creates a uInt16 value.
func NewUInt16(v uint16) Value { return integer{mismatch: mismatch{KindUInt16}, u: uint64(v)} }

// NewInt32 creates an int32 value.
func NewInt32(v int32) Value { return integer{mismatch: mismatch{KindInt32}, i: int64(v)} }

// NewUInt32 creates a uInt32 value.
func NewUInt32(v uint32) Value { return integer{mismatch: mismatch{KindUInt32}, u: uint64(v)} }

// NewInt64 creates an int64 value.
func NewInt64(v int64) Value { return integer{mismatch: mismatch{KindInt64}, i: v} }

// NewUInt64 creates a uInt64 value.
func NewUInt64(v uint64) Value { return integer{mismatch: mismatch{KindUInt64}, u: v} }

func (v integer) overflow(want string) error {
	return fmt.Errorf("%w: %s does not fit %s", errs.ErrValueOverflow, v.String(), want)
}

func (v integer) AsInt16() (int16, error) {
	if v.kind.IsSigned() {
		if v.i < math.MinInt16 || v.i > math.MaxInt16 {
			return 0, v.overflow("int16")
		}

		return int16(v.i), nil
	}
	if v.u > math.MaxInt16 {
		return 0, v.overflow("int16")
	}

	return int16(v.u), nil //nolint:gosec
}

func (v integer) AsUInt16() (uint16, error) {
	if v.kind.IsSigned() {
		if v.i < 0 || v.i > math.MaxUint16 {
			return 0, v.overflow("uInt16")
		}

		return uint16(v.i), nil
	}
	if v.u > math.MaxUint16 {
		return 0, v.overflow("uInt16")
	}

	return uint16(v.u), nil
}

func (v integer) AsInt32() (int32, error) {
	if v.kind.IsSigned() {
		if v.i < math.MinInt32 || v.i > math.MaxInt32 {
			return 0, v.overflow("int32")
		}

		return int32(v.i), nil
	}
	if v.u > math.MaxInt32 {
		return 0, v.overflow("int32")
	}

	return int32(v.u), nil //nolint:gosec
}

func (v integer) AsUInt32() (uint32, error) {
	if v.kind.IsSigned() {
		if v.i < 0 || v.i > math.MaxUint32 {
			return 0, v.overflow("uInt32")
		}

		return uint32(v.i), nil
	}
	if v.u > math.MaxUint32 {
		return 0, v.overflow("uInt32")
	}

	return uint32(v.u), nil
}

func (v integer) AsInt64() (int64, error) {
	if v.kind.IsSigned() {
		return v.i, nil
	}
	if v.u > math.MaxInt64 {
		return 0, v.overflow("int64")
	}

	return int64(v.u), nil
}

func (v integer) AsUInt64() (uint64, error) {
	if v.kind.IsSigned() {
		if v.i < 0 {
			return 0, v.overflow("uInt64")
		}

		return uint64(v.i), nil
	}

	return v.u, nil
}

func (v integer) AsDecimal() (Decimal, error) {
	m, err := v.AsInt64()
	if err != nil {
		return Decimal{}, err
	}

	return Decimal{Mantissa: m}, nil
}

func (v integer) AsString() (string, error) { return v.String(), nil }

func (v integer) String() string {
	if v.kind.IsSigned() {
		return strconv.FormatInt(v.i, 10)
	}

	return strconv.FormatUint(v.u, 10)
}

type decimalValue struct {
	mismatch
	d Decimal
}

// NewDecimalValue creates a decimal value.
func NewDecimalValue(d Decimal) Value { return decimalValue{mismatch: mismatch{KindDecimal}, d: d} }

func (v decimalValue) AsDecimal() (Decimal, error) { return v.d, nil }
func (v decimalValue) AsString() (string, error)   { return v.d.String(), nil }
func (v decimalValue) String() string              { return v.d.String() }

type text struct {
	mismatch
	s string
}

// NewASCII creates an ASCII string value.
func NewASCII(s string) Value { return text{mismatch: mismatch{KindASCII}, s: s} }

// NewUnicode creates a UTF-8 string value.
func NewUnicode(s string) Value { return text{mismatch: mismatch{KindUnicode}, s: s} }

func (v text) AsString() (string, error) { return v.s, nil }
func (v text) AsBytes() ([]byte, error)  { return []byte(v.s), nil }
func (v text) String() string            { return v.s }

type byteVector struct {
	mismatch
	b []byte
}

// NewByteVector creates a byte vector value. The slice is not copied.
func NewByteVector(b []byte) Value { return byteVector{mismatch: mismatch{KindByteVector}, b: b} }

func (v byteVector) AsBytes() ([]byte, error)  { return v.b, nil }
func (v byteVector) AsString() (string, error) { return string(v.b), nil }
func (v byteVector) String() string            { return fmt.Sprintf("%x", v.b) }

type groupValue struct {
	mismatch
	g Accessor
}

// NewGroup wraps a completed nested field set as a value.
func NewGroup(g Accessor) Value { return groupValue{mismatch: mismatch{KindGroup}, g: g} }

func (v groupValue) AsGroup() (Accessor, error) { return v.g, nil }
func (v groupValue) String() string             { return fmt.Sprintf("group(%d fields)", v.g.Len()) }

type sequenceValue struct {
	mismatch
	s SequenceAccessor
}

// NewSequence wraps a completed sequence as a value.
func NewSequence(s SequenceAccessor) Value {
	return sequenceValue{mismatch: mismatch{KindSequence}, s: s}
}

func (v sequenceValue) AsSequence() (SequenceAccessor, error) { return v.s, nil }
func (v sequenceValue) String() string                        { return fmt.Sprintf("sequence(%d entries)", v.s.Len()) }

// Equal reports whether a and b hold the same kind and content. Nil values are equal only to nil.
// Groups and sequences compare by identity of the underlying accessor.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case integer:
		y, ok := b.(integer)
		return ok && x.i == y.i && x.u == y.u
	case decimalValue:
		y, ok := b.(decimalValue)
		return ok && x.d == y.d
	case text:
		y, ok := b.(text)
		return ok && x.s == y.s
	case byteVector:
		y, ok := b.(byteVector)
		return ok && bytes.Equal(x.b, y.b)
	case groupValue:
		y, ok := b.(groupValue)
		return ok && x.g == y.g
	case sequenceValue:
		y, ok := b.(sequenceValue)
		return ok && x.s == y.s
	default:
		return false
	}
}

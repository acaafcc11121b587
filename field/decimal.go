package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/fastcodec/errs"
)

// Exponent bounds of a FAST scaled number.
const (
	MinExponent = -63
	MaxExponent = 63
)

// Decimal is a scaled number: Mantissa × 10^Exponent.
type Decimal struct {
	Mantissa int64
	Exponent int32
}

// NewDecimal creates a decimal value from mantissa and exponent.
func NewDecimal(mantissa int64, exponent int32) Decimal {
	return Decimal{Mantissa: mantissa, Exponent: exponent}
}

// ParseDecimal parses a textual decimal such as "1.25", "-0.5", "100" or "15e-1".
//
// The fraction digits become a negative exponent; no normalization is performed, so
// "1.50" parses to mantissa 150 exponent -2.
func ParseDecimal(text string) (Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Decimal{}, fmt.Errorf("%w: empty decimal", errs.ErrInvalidInitialValue)
	}

	var exponent int64
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil {
			return Decimal{}, fmt.Errorf("%w: decimal exponent %q", errs.ErrInvalidInitialValue, text)
		}
		exponent = e
		s = s[:i]
	}

	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		frac := s[dot+1:]
		exponent -= int64(len(frac))
		s = s[:dot] + frac
	}

	mantissa, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: decimal %q", errs.ErrInvalidInitialValue, text)
	}

	if exponent < MinExponent || exponent > MaxExponent {
		return Decimal{}, fmt.Errorf("%w: decimal exponent %d out of range", errs.ErrInvalidInitialValue, exponent)
	}

	return Decimal{Mantissa: mantissa, Exponent: int32(exponent)}, nil
}

// Float64 returns the approximate floating point value.
func (d Decimal) Float64() float64 {
	return float64(d.Mantissa) * math.Pow10(int(d.Exponent))
}

// Valid reports whether the exponent is within the FAST range.
func (d Decimal) Valid() bool {
	return d.Exponent >= MinExponent && d.Exponent <= MaxExponent
}

// String formats the decimal in plain positional notation.
func (d Decimal) String() string {
	digits := strconv.FormatInt(d.Mantissa, 10)
	if d.Exponent >= 0 {
		if d.Mantissa == 0 {
			return "0"
		}

		return digits + strings.Repeat("0", int(d.Exponent))
	}

	sign := ""
	if d.Mantissa < 0 {
		sign = "-"
		digits = digits[1:]
	}

	scale := int(-d.Exponent)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	point := len(digits) - scale

	return sign + digits[:point] + "." + digits[point:]
}

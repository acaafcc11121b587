// Package field provides field identities and the typed value containers exchanged between the
// template engine and message builders.
//
// # Values
//
// Every container implements Value and exposes type-tagged accessors:
//
//	v := field.NewUInt32(100)
//	n, err := v.AsInt64()      // 100, nil
//	_, err = v.AsString()      // "100", nil
//	_, err = v.AsGroup()       // errs.ErrTypeMismatch
//
// Integer accessors convert across widths and report errs.ErrValueOverflow when the value does
// not fit. Decimals are scaled numbers (mantissa × 10^exponent) with the exponent limited to
// [-63, 63].
//
// # Identities
//
// An Identity is immutable and shared by pointer. Instructions, dictionary keys and decoded
// fields referring to the same logical field point at the same Identity.
package field

package errs

import (
	"errors"
	"fmt"
)

// Code is a FAST error code such as "D9" or "R4".
//
// The first letter selects the class: 'S' static (template definition), 'D' dynamic
// (data dependent) and 'R' reportable.
type Code string

// FAST 1.1 error codes used by the codec.
const (
	CodeS1 Code = "S1" // invalid template structure
	CodeS2 Code = "S2" // operator incompatible with field type
	CodeS3 Code = "S3" // initial value cannot be converted to the field type
	CodeS4 Code = "S4" // constant operator without initial value
	CodeS5 Code = "S5" // mandatory default operator without initial value

	CodeD2  Code = "D2"  // integer value out of range for its field type
	CodeD3  Code = "D3"  // decimal value out of range
	CodeD4  Code = "D4"  // previous value type mismatch
	CodeD5  Code = "D5"  // mandatory field with no previous or initial value
	CodeD6  Code = "D6"  // mandatory field with empty previous value
	CodeD7  Code = "D7"  // subtraction length larger than base value
	CodeD8  Code = "D8"  // referenced template does not exist
	CodeD9  Code = "D9"  // template id not found
	CodeD10 Code = "D10" // value cannot be expressed with the field operator

	CodeR4 Code = "R4" // integer overflow while decoding
	CodeR6 Code = "R6" // integer with redundant leading bytes
	CodeR7 Code = "R7" // presence map overlong
	CodeR9 Code = "R9" // string overlong

	// CodeR10 marks a sequence length above the decoder's configured limit.
	CodeR10 Code = "R10"

	// CodeE1 marks a mandatory field missing from the field set being encoded.
	CodeE1 Code = "E1"

	// CodeU1 marks an unsupported capability: encoding a dynamic template reference.
	CodeU1 Code = "U1"
)

// Class returns the category sentinel for the code.
func (c Code) Class() error {
	if c == "" {
		return ErrDynamic
	}

	switch c[0] {
	case 'S':
		return ErrDefinition
	case 'R':
		return ErrReportable
	default:
		return ErrDynamic
	}
}

// FatalError is the error produced by a codec's fatal-report channel.
//
// It carries the FAST error code, a human readable message and, when known, the qualified
// name of the field being processed.
type FatalError struct {
	Code    Code
	Message string
	Field   string
	cause   error
}

// NewFatal creates a FatalError. cause may be nil; when set it is reachable through errors.Is.
func NewFatal(code Code, message string, fieldName string, cause error) *FatalError {
	return &FatalError{Code: code, Message: message, Field: fieldName, cause: cause}
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[ERR %s] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[ERR %s] %s (field %s)", e.Code, e.Message, e.Field)
}

// Unwrap exposes both the code class and the underlying cause.
func (e *FatalError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Code.Class()}
	}

	return []error{e.Code.Class(), e.cause}
}

// CodeOf returns the FAST error code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Code, true
	}

	return "", false
}

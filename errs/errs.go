// Package errs defines the sentinel errors and FAST error codes shared by all fastcodec packages.
//
// Call sites wrap a sentinel with context using fmt.Errorf("%w: ...", errs.ErrX) so callers can
// test the category with errors.Is. Errors reported through a codec's fatal channel are
// *FatalError values carrying a FAST error code and the identity of the offending field.
package errs

import "errors"

// Category sentinels.
var (
	// ErrDefinition is the category of every error raised while building or finalizing a template set.
	ErrDefinition = errors.New("template definition error")
	// ErrDynamic is the category of data-dependent decode/encode errors.
	ErrDynamic = errors.New("dynamic codec error")
	// ErrReportable is the category of recoverable conditions reported by the codec.
	ErrReportable = errors.New("reportable codec error")
)

// Definition errors.
var (
	ErrAlreadyFinalized       = errors.New("segment body already finalized")
	ErrLengthNotAllowed       = errors.New("length instruction not allowed in this segment")
	ErrLengthNotFirst         = errors.New("length instruction must be the first instruction")
	ErrDuplicateLength        = errors.New("length instruction already defined")
	ErrTemplateNotFound       = errors.New("template not found")
	ErrDuplicateTemplate      = errors.New("template already registered")
	ErrUnsupportedOperator    = errors.New("operator not supported for this field")
	ErrMissingInitialValue    = errors.New("operator requires an initial value")
	ErrInvalidInitialValue    = errors.New("invalid initial value")
	ErrTemplateCycle          = errors.New("cyclic template reference")
	ErrRegistryNotFinalized   = errors.New("template registry not finalized")
	ErrInvalidTemplate        = errors.New("invalid template")
	ErrDictionaryKeyCollision = errors.New("dictionary key hash collision")
)

// Runtime errors.
var (
	ErrInsufficientData       = errors.New("insufficient data")
	ErrIntegerOverflow        = errors.New("integer overflow")
	ErrValueOverflow          = errors.New("value out of range for requested type")
	ErrTypeMismatch           = errors.New("value type mismatch")
	ErrMissingMandatory       = errors.New("mandatory field missing")
	ErrNoPreviousValue        = errors.New("no previous value")
	ErrEmptyPreviousValue     = errors.New("previous value is empty")
	ErrInvalidStringDelta     = errors.New("invalid string delta")
	ErrNotEncodable           = errors.New("value cannot be encoded with this operator")
	ErrDynamicTemplateEncode  = errors.New("encoding a dynamic template reference is not supported")
	ErrNestingTooDeep         = errors.New("template nesting too deep")
	ErrInvalidPresenceMap     = errors.New("invalid presence map")
	ErrConstantMismatch       = errors.New("value does not match constant")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrSequenceTooLong        = errors.New("sequence length exceeds limit")
	ErrInvalidBlock           = errors.New("invalid block")
	ErrChecksumMismatch       = errors.New("block checksum mismatch")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
)

package template

import "github.com/arloliu/fastcodec/field"

// Kind enumerates the closed set of field instruction variants.
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
	KindStaticTemplateRef
	KindDynamicTemplateRef
)

func (k Kind) String() string {
	switch k {
	case KindStaticTemplateRef:
		return "templateRef(static)"
	case KindDynamicTemplateRef:
		return "templateRef(dynamic)"
	default:
		return k.ValueKind().String()
	}
}

// ValueKind maps the instruction kind to the kind of value it produces.
// Template references produce groups (or nothing visible, when collapsed).
func (k Kind) ValueKind() field.Kind {
	switch k {
	case KindInt16:
		return field.KindInt16
	case KindUInt16:
		return field.KindUInt16
	case KindInt32:
		return field.KindInt32
	case KindUInt32:
		return field.KindUInt32
	case KindInt64:
		return field.KindInt64
	case KindUInt64:
		return field.KindUInt64
	case KindDecimal:
		return field.KindDecimal
	case KindASCII:
		return field.KindASCII
	case KindUnicode:
		return field.KindUnicode
	case KindByteVector:
		return field.KindByteVector
	case KindGroup, KindStaticTemplateRef, KindDynamicTemplateRef:
		return field.KindGroup
	case KindSequence:
		return field.KindSequence
	default:
		return 0
	}
}

// IsScalar reports whether k carries a single value with operator semantics.
func (k Kind) IsScalar() bool {
	return k >= KindInt16 && k <= KindByteVector
}

// IsTemplateRef reports whether k is a static or dynamic template reference.
func (k Kind) IsTemplateRef() bool {
	return k == KindStaticTemplateRef || k == KindDynamicTemplateRef
}

// Presence is the mandatory/optional flag of a field.
type Presence uint8

const (
	Mandatory Presence = iota
	Optional
)

func (p Presence) String() string {
	if p == Optional {
		return "optional"
	}

	return "mandatory"
}

package template

import (
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/internal/options"
)

// OpKind enumerates the FAST field operators.
type OpKind uint8

const (
	OpNone OpKind = iota
	OpConstant
	OpDefault
	OpCopy
	OpIncrement
	OpDelta
	OpTail
)

func (k OpKind) String() string {
	switch k {
	case OpNone:
		return "none"
	case OpConstant:
		return "constant"
	case OpDefault:
		return "default"
	case OpCopy:
		return "copy"
	case OpIncrement:
		return "increment"
	case OpDelta:
		return "delta"
	case OpTail:
		return "tail"
	default:
		return "unknown"
	}
}

// Stateful reports whether the operator reads or writes a dictionary entry.
func (k OpKind) Stateful() bool {
	return k == OpCopy || k == OpIncrement || k == OpDelta || k == OpTail
}

// Operator is a field operator together with its initial value and dictionary binding.
type Operator struct {
	kind       OpKind
	initial    field.Value
	dictionary string
	key        *field.Identity
}

// OperatorOption configures an Operator.
type OperatorOption = options.Option[*Operator]

// WithInitial sets the operator's initial value.
func WithInitial(v field.Value) OperatorOption {
	return options.NoError(func(op *Operator) {
		op.initial = v
	})
}

// WithDictionary binds the operator to a named dictionary: "global", "template", "type" or a
// user-defined name. Without it the enclosing segment's dictionary applies.
func WithDictionary(name string) OperatorOption {
	return options.NoError(func(op *Operator) {
		op.dictionary = name
	})
}

// WithKey sets the dictionary key. Without it the field identity is the key.
func WithKey(key *field.Identity) OperatorOption {
	return options.NoError(func(op *Operator) {
		op.key = key
	})
}

func newOperator(kind OpKind, opts []OperatorOption) Operator {
	op := Operator{kind: kind}
	// operator options never fail
	_ = options.Apply(&op, opts...)

	return op
}

// NoOperator returns the absence of an operator: the value is always on the wire.
func NoOperator() Operator {
	return Operator{kind: OpNone}
}

// Constant returns a constant operator with value v.
func Constant(v field.Value) Operator {
	return Operator{kind: OpConstant, initial: v}
}

// Default returns a default operator. v may be nil for optional fields.
func Default(v field.Value) Operator {
	return Operator{kind: OpDefault, initial: v}
}

// Copy returns a copy operator.
func Copy(opts ...OperatorOption) Operator {
	return newOperator(OpCopy, opts)
}

// Increment returns an increment operator. Only valid on integer fields.
func Increment(opts ...OperatorOption) Operator {
	return newOperator(OpIncrement, opts)
}

// Delta returns a delta operator.
func Delta(opts ...OperatorOption) Operator {
	return newOperator(OpDelta, opts)
}

// Tail returns a tail operator. Only valid on string and byte vector fields.
func Tail(opts ...OperatorOption) Operator {
	return newOperator(OpTail, opts)
}

// Kind returns the operator kind.
func (op Operator) Kind() OpKind { return op.kind }

// Initial returns the initial value, or nil.
func (op Operator) Initial() field.Value { return op.initial }

// Dictionary returns the explicit dictionary name, or "".
func (op Operator) Dictionary() string { return op.dictionary }

// Key returns the explicit dictionary key, or nil.
func (op Operator) Key() *field.Identity { return op.key }

// presenceMapBits returns the bits the operator consumes for a field with presence p.
func (op Operator) presenceMapBits(p Presence) int {
	switch op.kind {
	case OpNone, OpDelta:
		return 0
	case OpConstant:
		if p == Optional {
			return 1
		}

		return 0
	default:
		return 1
	}
}

// nullable reports whether a field with presence p and this operator uses nullable encodings.
func (op Operator) nullable(p Presence) bool {
	return p == Optional && op.kind != OpConstant
}

package template

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
)

// noSlot marks an instruction without a dictionary entry.
const noSlot = -1

// Instruction is one field instruction of a segment body.
//
// The variant is selected by Kind: scalar kinds carry an operator, groups and sequences own a
// nested SegmentBody, static template references name their target, and dynamic template
// references pick their target per message.
//
// Instructions are built while a template set is defined, mutated once by Finalize, and
// read-only afterwards.
type Instruction struct {
	kind     Kind
	identity *field.Identity
	presence Presence
	op       Operator

	appType   string
	appTypeNS string

	segment *SegmentBody // group and sequence bodies

	refName string // static template reference target
	refNS   string
	target  *Template

	slot      int
	bits      int
	finalized bool
}

func newInstruction(kind Kind, id *field.Identity, presence Presence, op Operator) *Instruction {
	return &Instruction{
		kind:     kind,
		identity: id,
		presence: presence,
		op:       op,
		slot:     noSlot,
	}
}

// NewScalar creates a scalar instruction. kind must be one of the integer, decimal, string or
// byte vector kinds.
func NewScalar(kind Kind, id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(kind, id, presence, op)
}

// NewInt16 creates an int16 field instruction. The wire form is the same as int32; only the
// value range differs.
func NewInt16(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindInt16, id, presence, op)
}

// NewUInt16 creates a uInt16 field instruction.
func NewUInt16(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindUInt16, id, presence, op)
}

// NewInt32 creates an int32 field instruction.
func NewInt32(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindInt32, id, presence, op)
}

// NewUInt32 creates a uInt32 field instruction.
func NewUInt32(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindUInt32, id, presence, op)
}

// NewInt64 creates an int64 field instruction.
func NewInt64(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindInt64, id, presence, op)
}

// NewUInt64 creates a uInt64 field instruction.
func NewUInt64(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindUInt64, id, presence, op)
}

// NewDecimal creates a decimal field instruction.
func NewDecimal(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindDecimal, id, presence, op)
}

// NewASCII creates an ASCII string field instruction.
func NewASCII(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindASCII, id, presence, op)
}

// NewUnicode creates a unicode string field instruction.
func NewUnicode(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindUnicode, id, presence, op)
}

// NewByteVector creates a byte vector field instruction.
func NewByteVector(id *field.Identity, presence Presence, op Operator) *Instruction {
	return newInstruction(KindByteVector, id, presence, op)
}

// NewGroup creates a group instruction owning body.
func NewGroup(id *field.Identity, presence Presence, body *SegmentBody) *Instruction {
	in := newInstruction(KindGroup, id, presence, NoOperator())
	in.segment = body
	in.appType, in.appTypeNS = body.ApplicationType(), body.ApplicationTypeNamespace()

	return in
}

// NewSequence creates a sequence instruction owning body, which must come from NewSequenceBody.
// The sequence's presence becomes the body's length policy.
func NewSequence(id *field.Identity, presence Presence, body *SegmentBody) *Instruction {
	in := newInstruction(KindSequence, id, presence, NoOperator())
	in.segment = body
	in.appType, in.appTypeNS = body.ApplicationType(), body.ApplicationTypeNamespace()
	body.setLengthPolicy(presence == Mandatory)

	return in
}

// NewStaticTemplateRef creates a reference to the template name in namespace.
func NewStaticTemplateRef(id *field.Identity, name, namespace string) *Instruction {
	in := newInstruction(KindStaticTemplateRef, id, Mandatory, NoOperator())
	in.refName, in.refNS = name, namespace

	return in
}

// NewDynamicTemplateRef creates a reference whose target is chosen per message.
func NewDynamicTemplateRef(id *field.Identity) *Instruction {
	return newInstruction(KindDynamicTemplateRef, id, Mandatory, NoOperator())
}

// Kind returns the instruction variant.
func (in *Instruction) Kind() Kind { return in.kind }

// Identity returns the field identity.
func (in *Instruction) Identity() *field.Identity { return in.identity }

// Presence returns the presence flag.
func (in *Instruction) Presence() Presence { return in.presence }

// Operator returns the field operator.
func (in *Instruction) Operator() Operator { return in.op }

// Segment returns the nested body of a group or sequence, or nil.
func (in *Instruction) Segment() *SegmentBody { return in.segment }

// TemplateRef returns the name and namespace of a static reference's target.
func (in *Instruction) TemplateRef() (name, namespace string) { return in.refName, in.refNS }

// Target returns the template resolved for a static reference by Finalize.
func (in *Instruction) Target() *Template { return in.target }

// DictionarySlot returns the dictionary slot assigned by IndexDictionaries, or -1.
func (in *Instruction) DictionarySlot() int { return in.slot }

// SetOperator replaces the operator. It must be called before Finalize.
func (in *Instruction) SetOperator(op Operator) error {
	if in.finalized {
		return definitionError(errs.CodeS1, in.identity, errs.ErrAlreadyFinalized,
			"cannot change the operator of a finalized instruction")
	}
	in.op = op

	return nil
}

// ApplicationType returns the instruction's application type. For groups and sequences it is
// the nested body's type.
func (in *Instruction) ApplicationType() (name, namespace string) {
	if in.segment != nil {
		return in.segment.ApplicationType(), in.segment.ApplicationTypeNamespace()
	}

	return in.appType, in.appTypeNS
}

// SetApplicationType sets the application type; groups and sequences forward it to their body.
func (in *Instruction) SetApplicationType(name, namespace string) {
	in.appType, in.appTypeNS = name, namespace
	if in.segment != nil {
		in.segment.SetApplicationType(name, namespace)
	}
}

// PresenceMapBitsRequired returns the presence map bits this instruction consumes in the
// enclosing segment. Valid after Finalize.
func (in *Instruction) PresenceMapBitsRequired() int {
	return in.bits
}

// FieldCount returns the number of fields this instruction adds to the enclosing field set.
//
// Template references report 1: their real expansion depends on the target and, for dynamic
// references, on the message, so this is an estimate used only to pre-size field sets.
func (in *Instruction) FieldCount() int {
	return 1
}

// Finalize validates the instruction, resolves template references against reg and computes
// its presence map bit requirement. It is idempotent.
func (in *Instruction) Finalize(reg *Registry) error {
	switch in.kind {
	case KindGroup:
		if err := in.finalizeNested(reg); err != nil {
			return err
		}
		in.bits = 0
		if in.presence == Optional {
			in.bits = 1
		}
	case KindSequence:
		if err := in.finalizeNested(reg); err != nil {
			return err
		}
		in.bits = in.segment.Length().PresenceMapBitsRequired()
	case KindStaticTemplateRef:
		if err := in.checkNoOperator(); err != nil {
			return err
		}
		target, ok := reg.FindByName(in.refName, in.refNS)
		if !ok {
			return definitionError(errs.CodeD8, in.identity, errs.ErrTemplateNotFound,
				"static template reference to %s not found", qualify(in.refName, in.refNS))
		}
		if err := target.Finalize(reg); err != nil {
			return err
		}
		in.target = target
		// The target's fields share the enclosing presence map; its template id bit does not.
		in.bits = target.fieldBits
	case KindDynamicTemplateRef:
		if err := in.checkNoOperator(); err != nil {
			return err
		}
		in.bits = 0
	default:
		if in.finalized {
			return nil
		}
		if err := in.validateOperator(); err != nil {
			return err
		}
		in.bits = in.op.presenceMapBits(in.presence)
	}
	in.finalized = true

	return nil
}

// minWireBytes is a lower bound of the bytes the instruction reads. Operators that may take
// the value from the presence map or the dictionary can read nothing.
func (in *Instruction) minWireBytes() int {
	switch in.kind {
	case KindGroup:
		if in.presence == Optional {
			return 0
		}

		return in.segment.entryMinBytes()
	case KindSequence:
		return in.segment.length.minWireBytes()
	case KindStaticTemplateRef:
		if in.target == nil {
			return 0
		}

		return in.target.minBytes
	case KindDynamicTemplateRef:
		return 1
	default:
		if in.op.kind == OpNone || in.op.kind == OpDelta {
			return 1
		}

		return 0
	}
}

func (in *Instruction) finalizeNested(reg *Registry) error {
	if err := in.checkNoOperator(); err != nil {
		return err
	}
	if in.kind == KindSequence && in.segment.Length() == nil {
		in.segment.setImplicitLength(in.identity, in.presence)
	}

	return in.segment.Finalize(reg)
}

func (in *Instruction) checkNoOperator() error {
	if in.op.kind != OpNone {
		return definitionError(errs.CodeS2, in.identity, errs.ErrUnsupportedOperator,
			"%s operator is not supported on %s", in.op.kind, in.kind)
	}

	return nil
}

func (in *Instruction) validateOperator() error {
	if !in.kind.IsScalar() {
		return definitionError(errs.CodeS1, in.identity, errs.ErrInvalidTemplate, "unknown instruction kind %d", in.kind)
	}

	if in.op.initial != nil {
		v, err := convert(in.kind, in.op.initial)
		if err != nil {
			return definitionError(errs.CodeS3, in.identity, errs.ErrInvalidInitialValue,
				"initial value %s does not fit %s: %v", in.op.initial, in.kind, err)
		}
		in.op.initial = v
	}

	switch in.op.kind {
	case OpConstant:
		if in.op.initial == nil {
			return definitionError(errs.CodeS4, in.identity, errs.ErrMissingInitialValue,
				"constant operator requires an initial value")
		}
	case OpDefault:
		if in.op.initial == nil && in.presence == Mandatory {
			return definitionError(errs.CodeS5, in.identity, errs.ErrMissingInitialValue,
				"mandatory field with default operator requires an initial value")
		}
	case OpIncrement:
		if !in.kind.ValueKind().IsInteger() {
			return definitionError(errs.CodeS2, in.identity, errs.ErrUnsupportedOperator,
				"increment operator is not supported on %s", in.kind)
		}
	case OpTail:
		if !in.kind.ValueKind().IsText() {
			return definitionError(errs.CodeS2, in.identity, errs.ErrUnsupportedOperator,
				"tail operator is not supported on %s", in.kind)
		}
	case OpNone, OpCopy, OpDelta:
	default:
		return definitionError(errs.CodeS1, in.identity, errs.ErrUnsupportedOperator, "unknown operator %d", in.op.kind)
	}

	return nil
}

// IndexDictionaries registers the instruction's dictionary entry under scope. Nested bodies are
// indexed recursively; template references are indexed through their own templates.
func (in *Instruction) IndexDictionaries(ix *dictionary.Indexer, scope dictionary.Scope) {
	switch in.kind {
	case KindGroup, KindSequence:
		in.segment.IndexDictionaries(ix, scope)
	case KindStaticTemplateRef, KindDynamicTemplateRef:
	default:
		if !in.op.kind.Stateful() {
			return
		}
		if in.op.dictionary != "" {
			scope.Dictionary = in.op.dictionary
		}
		key := in.identity
		if in.op.key != nil {
			key = in.op.key
		}
		in.slot = ix.Index(scope, key)
	}
}

// InterpretValue parses text as the initial value of the instruction's operator.
// Groups, sequences and template references carry no operator and always fail.
func (in *Instruction) InterpretValue(text string) error {
	if !in.kind.IsScalar() {
		return definitionError(errs.CodeS2, in.identity, errs.ErrUnsupportedOperator,
			"%s does not accept an initial value", in.kind)
	}

	v, err := parseValue(in.kind, text)
	if err != nil {
		return definitionError(errs.CodeS3, in.identity, errs.ErrInvalidInitialValue,
			"cannot interpret %q as %s: %v", text, in.kind, err)
	}
	in.op.initial = v

	return nil
}

func parseValue(kind Kind, text string) (field.Value, error) {
	s := strings.TrimSpace(text)
	switch kind {
	case KindInt16:
		n, err := strconv.ParseInt(s, 10, 16)
		return field.NewInt16(int16(n)), err
	case KindUInt16:
		n, err := strconv.ParseUint(s, 10, 16)
		return field.NewUInt16(uint16(n)), err
	case KindInt32:
		n, err := strconv.ParseInt(s, 10, 32)
		return field.NewInt32(int32(n)), err
	case KindUInt32:
		n, err := strconv.ParseUint(s, 10, 32)
		return field.NewUInt32(uint32(n)), err
	case KindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		return field.NewInt64(n), err
	case KindUInt64:
		n, err := strconv.ParseUint(s, 10, 64)
		return field.NewUInt64(n), err
	case KindDecimal:
		d, err := field.ParseDecimal(s)
		return field.NewDecimalValue(d), err
	case KindASCII:
		return field.NewASCII(text), nil
	case KindUnicode:
		return field.NewUnicode(text), nil
	case KindByteVector:
		b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
		return field.NewByteVector(b), err
	default:
		return nil, fmt.Errorf("%s has no textual form", kind)
	}
}

func qualify(name, namespace string) string {
	if namespace == "" {
		return name
	}

	return namespace + "::" + name
}

func definitionError(code errs.Code, id *field.Identity, cause error, format string, args ...any) error {
	name := ""
	if id != nil {
		name = id.QualifiedName()
	}

	return errs.NewFatal(code, fmt.Sprintf(format, args...), name, fmt.Errorf("%w: %w", errs.ErrDefinition, cause))
}

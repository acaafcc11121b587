package template

import (
	"fmt"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
)

type finalizeState uint8

const (
	notStarted finalizeState = iota
	inProgress
	done
)

// SegmentBody is an ordered list of instructions: the body of a template, group or sequence.
//
// Instruction order is wire order and presence map bit order. A sequence body additionally
// owns the length instruction, which is decoded before the entries and therefore must be
// declared first.
type SegmentBody struct {
	name         string
	instructions []*Instruction
	length       *Instruction

	allowLength     bool
	mandatoryLength bool

	appType    string
	appTypeNS  string
	dictionary string

	state      finalizeState
	baseBits   int // bits consumed before the first instruction
	fieldBits  int
	fieldCount int
	minBytes   int // lower bound of the bytes the instructions read
}

// NewSegmentBody creates the body of a group. name is used in diagnostics only.
func NewSegmentBody(name string) *SegmentBody {
	return &SegmentBody{name: name}
}

func newSegmentBodyWithBits(name string, baseBits int) *SegmentBody {
	return &SegmentBody{name: name, baseBits: baseBits}
}

// NewSequenceBody creates a body that accepts a length instruction.
func NewSequenceBody(name string) *SegmentBody {
	return &SegmentBody{name: name, allowLength: true, mandatoryLength: true}
}

// Name returns the diagnostic name of the body.
func (sb *SegmentBody) Name() string { return sb.name }

// Instructions returns the field instructions in declared order. The length instruction is
// not included.
func (sb *SegmentBody) Instructions() []*Instruction { return sb.instructions }

// Length returns the length instruction of a sequence body, or nil.
func (sb *SegmentBody) Length() *Instruction { return sb.length }

// Instruction returns the first field instruction named name.
//
// The lookup is a linear scan. Bodies hold few instructions and their order is significant,
// so no name index is kept.
func (sb *SegmentBody) Instruction(name string) (*Instruction, bool) {
	for _, in := range sb.instructions {
		if in.identity.Name() == name {
			return in, true
		}
	}

	return nil, false
}

// InstructionAt returns the i-th field instruction in declared order.
//
// Parameters:
//   - i: Zero-based position; the length instruction is not counted
//
// Returns:
//   - *Instruction: The instruction at position i
//   - error: errs.ErrIndexOutOfRange when i is outside [0, len(Instructions()))
func (sb *SegmentBody) InstructionAt(i int) (*Instruction, error) {
	if i < 0 || i >= len(sb.instructions) {
		return nil, fmt.Errorf("%w: instruction %d of segment %s with %d instructions",
			errs.ErrIndexOutOfRange, i, sb.name, len(sb.instructions))
	}

	return sb.instructions[i], nil
}

// ApplicationType returns the application type name.
func (sb *SegmentBody) ApplicationType() string { return sb.appType }

// ApplicationTypeNamespace returns the application type namespace.
func (sb *SegmentBody) ApplicationTypeNamespace() string { return sb.appTypeNS }

// Dictionary returns the body's dictionary name, or "" to inherit the enclosing one.
func (sb *SegmentBody) Dictionary() string { return sb.dictionary }

// SetDictionary sets the dictionary used by the body's stateful instructions that name none.
func (sb *SegmentBody) SetDictionary(name string) {
	sb.dictionary = name
}

// Finalized reports whether Finalize completed.
func (sb *SegmentBody) Finalized() bool { return sb.state == done }

// AddInstruction appends in. An instruction without its own application type inherits the
// body's current one.
func (sb *SegmentBody) AddInstruction(in *Instruction) error {
	if sb.state != notStarted {
		return definitionError(errs.CodeS1, in.identity, errs.ErrAlreadyFinalized,
			"cannot add an instruction to finalized segment %s", sb.name)
	}

	if name, _ := in.ApplicationType(); name == "" {
		in.SetApplicationType(sb.appType, sb.appTypeNS)
	}
	sb.instructions = append(sb.instructions, in)

	return nil
}

// AddLengthInstruction sets the length instruction of a sequence body.
//
// The instruction's presence is forced to the sequence's presence.
//
// Parameters:
//   - in: uInt32 instruction holding the entry count
//
// Returns:
//   - error: A definition error wrapping errs.ErrLengthNotAllowed when the body does not
//     accept a length, errs.ErrLengthNotFirst when a field instruction was already added,
//     or errs.ErrDuplicateLength when a length instruction is already set
func (sb *SegmentBody) AddLengthInstruction(in *Instruction) error {
	switch {
	case sb.state != notStarted:
		return definitionError(errs.CodeS1, in.identity, errs.ErrAlreadyFinalized,
			"cannot add a length instruction to finalized segment %s", sb.name)
	case !sb.allowLength:
		return definitionError(errs.CodeS1, in.identity, errs.ErrLengthNotAllowed,
			"segment %s does not accept a length instruction", sb.name)
	case len(sb.instructions) > 0:
		return definitionError(errs.CodeS1, in.identity, errs.ErrLengthNotFirst,
			"length instruction must precede the fields of segment %s", sb.name)
	case sb.length != nil:
		return definitionError(errs.CodeS1, in.identity, errs.ErrDuplicateLength,
			"segment %s already has length instruction %s", sb.name, sb.length.identity)
	case in.kind != KindUInt32:
		return definitionError(errs.CodeS1, in.identity, errs.ErrInvalidTemplate,
			"length instruction must be uInt32, got %s", in.kind)
	}

	in.presence = sb.lengthPresence()
	sb.length = in

	return nil
}

func (sb *SegmentBody) lengthPresence() Presence {
	if sb.mandatoryLength {
		return Mandatory
	}

	return Optional
}

func (sb *SegmentBody) setLengthPolicy(mandatory bool) {
	sb.allowLength = true
	sb.mandatoryLength = mandatory
	if sb.length != nil {
		sb.length.presence = sb.lengthPresence()
	}
}

func (sb *SegmentBody) setImplicitLength(seq *field.Identity, presence Presence) {
	id := field.NewIdentity(seq.Name()+"Length", seq.Namespace())
	sb.length = newInstruction(KindUInt32, id, presence, NoOperator())
}

// SetApplicationType sets the body's application type.
//
// Children whose type is empty, or still equal to the type the body had before this call,
// are relabelled; children with an explicit different type keep it.
func (sb *SegmentBody) SetApplicationType(name, namespace string) {
	prevType, prevNS := sb.appType, sb.appTypeNS
	sb.appType, sb.appTypeNS = name, namespace

	for _, in := range sb.instructions {
		childType, childNS := in.ApplicationType()
		if childType == "" || (childType == prevType && childNS == prevNS) {
			in.SetApplicationType(name, namespace)
		}
	}
}

// Finalize finalizes the length instruction and every field instruction in declared order,
// resolving template references through reg, and computes the body's presence map bits:
// its base bits plus the bits of every field instruction. A sequence's length instruction is
// read with the enclosing presence map, so its bit belongs to the sequence instruction.
//
// Finalize is idempotent. A call that arrives while the same body is still being finalized
// (a template that reaches itself through template references) returns at once; the
// registry decides whether that is reported as an error.
//
// Parameters:
//   - reg: Registry resolving static template references; may be nil for bodies without them
//
// Returns:
//   - error: The first definition error of an instruction, or errs.ErrTemplateCycle from a
//     registry created with WithStrictCycles
func (sb *SegmentBody) Finalize(reg *Registry) error {
	switch sb.state {
	case done:
		return nil
	case inProgress:
		return reg.cycleDetected(sb)
	}

	sb.state = inProgress
	if sb.length != nil {
		if err := sb.length.Finalize(reg); err != nil {
			sb.state = notStarted
			return err
		}
	}

	bits := 0
	count := 0
	minBytes := 0
	for _, in := range sb.instructions {
		if err := in.Finalize(reg); err != nil {
			sb.state = notStarted
			return err
		}
		bits += in.PresenceMapBitsRequired()
		count += in.FieldCount()
		minBytes += in.minWireBytes()
	}
	sb.fieldBits = bits
	sb.fieldCount = count
	sb.minBytes = minBytes
	sb.state = done

	return nil
}

// PresenceMapBitsRequired returns the number of presence map bits the body consumes: the base
// bits (the template id bit for templates) plus its instructions' bits. Before Finalize only
// the base bits are counted.
func (sb *SegmentBody) PresenceMapBitsRequired() int {
	return sb.baseBits + sb.fieldBits
}

// entryMinBytes is the least a nested occurrence of the body can take on the wire: its
// presence map, when it has one, plus its instructions.
func (sb *SegmentBody) entryMinBytes() int {
	if sb.PresenceMapBitsRequired() > 0 {
		return 1 + sb.minBytes
	}

	return sb.minBytes
}

// FieldCount returns the number of fields the body adds to a field set, used to pre-size
// builders. Template references count as one field each.
func (sb *SegmentBody) FieldCount() int {
	if sb.state != done {
		return len(sb.instructions)
	}

	return sb.fieldCount
}

// IndexDictionaries registers every stateful instruction of the body with ix.
//
// The body's own dictionary name and application type override the inherited ones in scope.
func (sb *SegmentBody) IndexDictionaries(ix *dictionary.Indexer, scope dictionary.Scope) {
	if sb.dictionary != "" {
		scope.Dictionary = sb.dictionary
	}
	if sb.appType != "" {
		scope.TypeName, scope.TypeNamespace = sb.appType, sb.appTypeNS
	}

	if sb.length != nil {
		sb.length.IndexDictionaries(ix, scope)
	}
	for _, in := range sb.instructions {
		in.IndexDictionaries(ix, scope)
	}
}

// Decode decodes every instruction of the body from src into b, consuming bits from pm.
func (sb *SegmentBody) Decode(d Decoder, src *stream.Source, pm *pmap.PresenceMap, b message.Builder) error {
	for _, in := range sb.instructions {
		if err := in.Decode(d, src, pm, b); err != nil {
			return err
		}
	}

	return nil
}

// Encode encodes the fields of acc described by the body to dst, appending bits to pm.
func (sb *SegmentBody) Encode(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, acc field.Accessor) error {
	for _, in := range sb.instructions {
		if err := in.Encode(e, dst, pm, acc); err != nil {
			return err
		}
	}

	return nil
}

package message

import "github.com/arloliu/fastcodec/field"

// Sequence is an ordered list of entries sharing one segment layout.
type Sequence struct {
	lengthID  *field.Identity
	appType   string
	appTypeNS string
	entries   []field.Accessor
}

var (
	_ SequenceBuilder        = (*Sequence)(nil)
	_ field.SequenceAccessor = (*Sequence)(nil)
)

// NewSequence creates an empty sequence whose length field is lengthID.
func NewSequence(lengthID *field.Identity, capacity int) *Sequence {
	return NewTypedSequence(lengthID, "", "", capacity)
}

// NewTypedSequence creates an empty sequence whose entries default to an application type.
func NewTypedSequence(lengthID *field.Identity, appType, appTypeNamespace string, capacity int) *Sequence {
	if capacity < 0 {
		capacity = 0
	}

	return &Sequence{
		lengthID:  lengthID,
		appType:   appType,
		appTypeNS: appTypeNamespace,
		entries:   make([]field.Accessor, 0, capacity),
	}
}

// Append adds a completed entry.
func (s *Sequence) Append(entry field.Accessor) {
	s.entries = append(s.entries, entry)
}

// LengthIdentity implements field.SequenceAccessor.
func (s *Sequence) LengthIdentity() *field.Identity { return s.lengthID }

// Len implements field.SequenceAccessor.
func (s *Sequence) Len() int { return len(s.entries) }

// Entry implements field.SequenceAccessor.
func (s *Sequence) Entry(i int) field.Accessor { return s.entries[i] }

// StartEntry implements SequenceBuilder. An empty appType falls back to the sequence's type.
func (s *Sequence) StartEntry(appType, appTypeNamespace string, size int) Builder {
	if appType == "" {
		appType, appTypeNamespace = s.appType, s.appTypeNS
	}

	return NewTypedFieldSet(appType, appTypeNamespace, size)
}

// EndEntry implements SequenceBuilder.
func (s *Sequence) EndEntry(entry Builder) {
	if acc, ok := entry.(field.Accessor); ok {
		s.entries = append(s.entries, acc)
	}
}

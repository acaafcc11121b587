package message

import (
	"iter"

	"github.com/arloliu/fastcodec/field"
)

// Capacity growth strategy constants.
const (
	// DefaultFieldSetCapacity is used when no size hint is given.
	DefaultFieldSetCapacity = 8

	// growthThreshold is the size above which growth switches from 2x to 1.25x.
	growthThreshold = 256
)

// Field is one (identity, value) entry of a FieldSet.
type Field struct {
	Identity *field.Identity
	Value    field.Value
}

// FieldSet is an ordered, append-only collection of decoded fields.
//
// Fields keep wire order and are never removed or reordered once added. Lookup by name is a
// linear scan: messages have few fields and the scan keeps order as the only source of truth.
//
// A FieldSet handed to a consumer as a completed message must be treated as read-only.
type FieldSet struct {
	appType   string
	appTypeNS string
	fields    []Field
}

var (
	_ Builder        = (*FieldSet)(nil)
	_ field.Accessor = (*FieldSet)(nil)
)

// NewFieldSet creates an empty field set pre-sized for capacity fields.
func NewFieldSet(capacity int) *FieldSet {
	if capacity <= 0 {
		capacity = DefaultFieldSetCapacity
	}

	return &FieldSet{fields: make([]Field, 0, capacity)}
}

// NewTypedFieldSet creates an empty field set carrying an application type.
func NewTypedFieldSet(appType, appTypeNamespace string, capacity int) *FieldSet {
	fs := NewFieldSet(capacity)
	fs.SetApplicationType(appType, appTypeNamespace)

	return fs
}

// SetApplicationType sets the application type of the field set.
func (fs *FieldSet) SetApplicationType(name, namespace string) {
	fs.appType = name
	fs.appTypeNS = namespace
}

// ApplicationType returns the application type name.
func (fs *FieldSet) ApplicationType() string { return fs.appType }

// ApplicationTypeNamespace returns the application type namespace.
func (fs *FieldSet) ApplicationTypeNamespace() string { return fs.appTypeNS }

// AddField appends a field to the tail.
//
// Capacity grows 2x while small and 1.25x once above growthThreshold entries.
func (fs *FieldSet) AddField(id *field.Identity, v field.Value) {
	if len(fs.fields) == cap(fs.fields) {
		fs.grow()
	}
	fs.fields = append(fs.fields, Field{Identity: id, Value: v})
}

func (fs *FieldSet) grow() {
	curCap := cap(fs.fields)
	newCap := curCap * 2
	if curCap >= growthThreshold {
		newCap = curCap + curCap/4
	}
	if newCap < DefaultFieldSetCapacity {
		newCap = DefaultFieldSetCapacity
	}

	grown := make([]Field, len(fs.fields), newCap)
	copy(grown, fs.fields)
	fs.fields = grown
}

// Len returns the number of fields.
func (fs *FieldSet) Len() int { return len(fs.fields) }

// Cap returns the current capacity.
func (fs *FieldSet) Cap() int { return cap(fs.fields) }

// At returns the i-th field. It panics if i is out of range.
func (fs *FieldSet) At(i int) (*field.Identity, field.Value) {
	f := fs.fields[i]
	return f.Identity, f.Value
}

// Field returns the value of the first field named name.
func (fs *FieldSet) Field(name string) (field.Value, bool) {
	for i := range fs.fields {
		if fs.fields[i].Identity.Name() == name {
			return fs.fields[i].Value, true
		}
	}

	return nil, false
}

// IsPresent reports whether a field named name exists and holds a value.
func (fs *FieldSet) IsPresent(name string) bool {
	v, ok := fs.Field(name)

	return ok && v != nil
}

// Identity returns the identity of the first field named name.
func (fs *FieldSet) Identity(name string) (*field.Identity, bool) {
	for i := range fs.fields {
		if fs.fields[i].Identity.Name() == name {
			return fs.fields[i].Identity, true
		}
	}

	return nil, false
}

// All returns an iterator over the fields in wire order.
func (fs *FieldSet) All() iter.Seq2[*field.Identity, field.Value] {
	return func(yield func(*field.Identity, field.Value) bool) {
		for _, f := range fs.fields {
			if !yield(f.Identity, f.Value) {
				return
			}
		}
	}
}

// Clear empties the field set and ensures room for capacity fields without reallocating.
// The application type is kept.
func (fs *FieldSet) Clear(capacity int) {
	clear(fs.fields)
	if capacity > cap(fs.fields) {
		fs.fields = make([]Field, 0, capacity)
		return
	}
	fs.fields = fs.fields[:0]
}

// Swap exchanges the contents of two field sets. Values themselves are not copied.
func (fs *FieldSet) Swap(other *FieldSet) {
	fs.appType, other.appType = other.appType, fs.appType
	fs.appTypeNS, other.appTypeNS = other.appTypeNS, fs.appTypeNS
	fs.fields, other.fields = other.fields, fs.fields
}

// NewNestedBuilder creates an independent field set for a nested scope.
func (fs *FieldSet) NewNestedBuilder(appType, appTypeNamespace string, size int) *FieldSet {
	return NewTypedFieldSet(appType, appTypeNamespace, size)
}

// AddValue implements Builder.
func (fs *FieldSet) AddValue(id *field.Identity, v field.Value) {
	fs.AddField(id, v)
}

// StartGroup implements Builder.
func (fs *FieldSet) StartGroup(_ *field.Identity, appType, appTypeNamespace string, size int) Builder {
	return fs.NewNestedBuilder(appType, appTypeNamespace, size)
}

// EndGroup implements Builder. group must be a builder returned by StartGroup.
func (fs *FieldSet) EndGroup(id *field.Identity, group Builder) {
	if acc, ok := group.(field.Accessor); ok {
		fs.AddField(id, field.NewGroup(acc))
	}
}

// StartSequence implements Builder.
func (fs *FieldSet) StartSequence(_ *field.Identity, appType, appTypeNamespace string, lengthID *field.Identity, length int) SequenceBuilder {
	return NewTypedSequence(lengthID, appType, appTypeNamespace, length)
}

// EndSequence implements Builder. seq must be a builder returned by StartSequence.
func (fs *FieldSet) EndSequence(id *field.Identity, seq SequenceBuilder) {
	if acc, ok := seq.(field.SequenceAccessor); ok {
		fs.AddField(id, field.NewSequence(acc))
	}
}

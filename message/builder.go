package message

import "github.com/arloliu/fastcodec/field"

// Builder receives decoded fields.
//
// The template engine is polymorphic over Builder: FieldSet materializes a full tree, but a
// streaming implementation that never stores the message is equally valid. Nested scopes
// (groups, sequence entries, nested templates) get their own Builder from StartGroup or
// SequenceBuilder.StartEntry and are handed back through EndGroup or EndEntry when complete.
type Builder interface {
	// ApplicationType returns the application type of the scope being built.
	ApplicationType() string
	// ApplicationTypeNamespace returns the namespace of the application type.
	ApplicationTypeNamespace() string
	// AddValue appends one decoded field.
	AddValue(id *field.Identity, v field.Value)
	// StartGroup opens a nested scope pre-sized for size fields.
	StartGroup(id *field.Identity, appType, appTypeNamespace string, size int) Builder
	// EndGroup closes a scope opened by StartGroup on this builder.
	EndGroup(id *field.Identity, group Builder)
	// StartSequence opens a sequence of length entries.
	StartSequence(id *field.Identity, appType, appTypeNamespace string, lengthID *field.Identity, length int) SequenceBuilder
	// EndSequence closes a sequence opened by StartSequence on this builder.
	EndSequence(id *field.Identity, seq SequenceBuilder)
}

// SequenceBuilder receives the entries of one sequence.
type SequenceBuilder interface {
	// StartEntry opens the scope of the next entry, pre-sized for size fields.
	StartEntry(appType, appTypeNamespace string, size int) Builder
	// EndEntry closes an entry opened by StartEntry.
	EndEntry(entry Builder)
}

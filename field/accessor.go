package field

// Accessor is the read-only view of a decoded message or nested group.
//
// Lookups by name never fail with an error: a missing field is a normal outcome for optional
// fields and is reported through the boolean result.
type Accessor interface {
	// ApplicationType returns the application type name of the field set.
	ApplicationType() string
	// ApplicationTypeNamespace returns the namespace of the application type.
	ApplicationTypeNamespace() string
	// Len returns the number of fields present.
	Len() int
	// At returns the identity and value of the i-th field in wire order.
	At(i int) (*Identity, Value)
	// Field returns the value of the first field whose local name is name.
	Field(name string) (Value, bool)
	// Identity returns the identity of the first field whose local name is name.
	Identity(name string) (*Identity, bool)
}

// SequenceAccessor is the read-only view of a decoded sequence.
type SequenceAccessor interface {
	// LengthIdentity returns the identity of the sequence length field.
	LengthIdentity() *Identity
	// Len returns the number of entries.
	Len() int
	// Entry returns the i-th entry.
	Entry(i int) Accessor
}

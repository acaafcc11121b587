package field

// Identity names one logical field: a local name, a namespace and an optional auxiliary id.
//
// Identities are immutable and shared by pointer between every instruction, dictionary key and
// decoded field referring to the same logical field.
type Identity struct {
	name      string
	namespace string
	id        string
	qualified string
}

// NewIdentity creates an identity for name in namespace. namespace may be empty.
func NewIdentity(name, namespace string) *Identity {
	return NewIdentityWithID(name, namespace, "")
}

// NewIdentityWithID creates an identity carrying an auxiliary id (the template file's "id" attribute).
func NewIdentityWithID(name, namespace, id string) *Identity {
	qualified := name
	if namespace != "" {
		qualified = namespace + "::" + name
	}

	return &Identity{
		name:      name,
		namespace: namespace,
		id:        id,
		qualified: qualified,
	}
}

// Name returns the local name.
func (i *Identity) Name() string { return i.name }

// Namespace returns the namespace, possibly empty.
func (i *Identity) Namespace() string { return i.namespace }

// ID returns the auxiliary id, possibly empty.
func (i *Identity) ID() string { return i.id }

// QualifiedName returns "namespace::name", or just the name when the namespace is empty.
func (i *Identity) QualifiedName() string { return i.qualified }

// String implements fmt.Stringer.
func (i *Identity) String() string { return i.qualified }

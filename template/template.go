package template

import (
	"github.com/arloliu/fastcodec/dictionary"
)

// Template is a named segment body registered in a Registry.
type Template struct {
	*SegmentBody

	id        uint32
	name      string
	namespace string
	reset     bool
}

// templateIDBits is the presence map bit that marks the template id of a message.
const templateIDBits = 1

// NewTemplate creates an empty template. Its body starts with the template id bit.
func NewTemplate(id uint32, name, namespace string) *Template {
	return &Template{
		SegmentBody: newSegmentBodyWithBits(name, templateIDBits),
		id:          id,
		name:        name,
		namespace:   namespace,
	}
}

// ID returns the template id carried on the wire.
func (t *Template) ID() uint32 { return t.id }

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Namespace returns the template namespace.
func (t *Template) Namespace() string { return t.namespace }

// QualifiedName returns "namespace::name", or the bare name without a namespace.
func (t *Template) QualifiedName() string { return qualify(t.name, t.namespace) }

// SetReset marks the template as resetting the session dictionary before each message.
func (t *Template) SetReset(reset bool) { t.reset = reset }

// Reset reports whether messages of this template reset the dictionary.
func (t *Template) Reset() bool { return t.reset }

func (t *Template) indexDictionaries(ix *dictionary.Indexer) {
	t.IndexDictionaries(ix, dictionary.Scope{
		TemplateName:      t.name,
		TemplateNamespace: t.namespace,
	})
}

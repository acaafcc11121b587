package codec

import (
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/template"
)

// Message is one decoded message.
type Message struct {
	Template *template.Template
	Fields   *message.FieldSet
}

// TemplateID returns the id of the template the message was encoded with.
func (m *Message) TemplateID() uint32 {
	return m.Template.ID()
}

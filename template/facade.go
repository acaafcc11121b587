package template

import (
	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
)

// Reporter turns a runtime failure into the error returned to the caller.
//
// Every instruction reports through it so a codec can tag, log or count failures in one place.
type Reporter interface {
	ReportFatal(code errs.Code, message string, id *field.Identity, cause error) error
}

// Decoder is the decode-side facade the instructions drive.
type Decoder interface {
	Reporter

	// FindTemplate resolves a template by name and namespace.
	FindTemplate(name, namespace string) (*Template, bool)
	// Dictionary returns the session dictionary holding previous values.
	Dictionary() *dictionary.Dictionary
	// DecodeSegmentBody decodes body from src into b using the already decoded presence map pm.
	DecodeSegmentBody(src *stream.Source, pm *pmap.PresenceMap, body *SegmentBody, b message.Builder) error
	// DecodeNestedTemplate decodes a template chosen by the data itself (presence map and
	// template id on the wire). A template of b's application type is decoded into b itself,
	// any other becomes a group named id.
	DecodeNestedTemplate(src *stream.Source, b message.Builder, id *field.Identity) error
	// MaxPresenceMapBytes returns the longest presence map accepted from the wire, 0 for no limit.
	MaxPresenceMapBytes() int
	// MaxSequenceLength returns the largest sequence length accepted from the wire, 0 for no limit.
	MaxSequenceLength() int
}

// Encoder is the encode-side facade the instructions drive.
type Encoder interface {
	Reporter

	// FindTemplate resolves a template by name and namespace.
	FindTemplate(name, namespace string) (*Template, bool)
	// Dictionary returns the session dictionary holding previous values.
	Dictionary() *dictionary.Dictionary
	// EncodeSegmentBody encodes the fields of acc described by body to dst, appending the
	// presence bits to pm.
	EncodeSegmentBody(dst *stream.Destination, pm *pmap.PresenceMap, body *SegmentBody, acc field.Accessor) error
}

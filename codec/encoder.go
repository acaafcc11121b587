package codec

import (
	"fmt"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
	"github.com/arloliu/fastcodec/template"
)

// Encoder encodes field sets as FAST messages against a finalized template registry.
//
// Like Decoder it owns per-session dictionary state and is NOT thread-safe. An Encoder and a
// Decoder built from the same registry stay in step as long as they see the same messages.
type Encoder struct {
	cfg  *Config
	reg  *template.Registry
	dict *dictionary.Dictionary

	lastTemplateID uint32
	hasTemplateID  bool
	depth          int
}

var _ template.Encoder = (*Encoder)(nil)

// NewEncoder creates an encoder for reg.
//
// Parameters:
//   - reg: Finalized template registry
//   - opts: Encoder options
//
// Returns:
//   - *Encoder: New encoder with an empty dictionary
//   - error: errs.ErrRegistryNotFinalized or an invalid option
func NewEncoder(reg *template.Registry, opts ...Option) (*Encoder, error) {
	if !reg.Finalized() {
		return nil, errs.ErrRegistryNotFinalized
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		cfg:  cfg,
		reg:  reg,
		dict: reg.NewDictionary(),
	}, nil
}

// Reset returns the session to its initial state.
func (e *Encoder) Reset() {
	e.dict.Reset()
	e.hasTemplateID = false
	e.lastTemplateID = 0
	e.cfg.logger.Debug().Msg("encoder session reset")
}

// EncodeMessage appends one message of template templateID built from the fields of acc.
//
// The presence map is only known once the body has been encoded, so the body goes to a
// pooled scratch buffer first and dst receives presence map, template id and body in wire
// order. Nothing is written to dst when encoding fails, but instructions encoded before the
// failure have already updated the dictionary: call Reset before encoding the next message
// of a stream the peer decodes.
//
// Parameters:
//   - dst: Destination the encoded message is appended to
//   - templateID: Wire id of a template in the encoder's registry
//   - acc: Fields of the message, looked up by local name
//
// Returns:
//   - error: A *errs.FatalError with code D9 for an unknown template id, or the first error
//     reported by an instruction
func (e *Encoder) EncodeMessage(dst *stream.Destination, templateID uint32, acc field.Accessor) error {
	e.depth = 0

	t, ok := e.reg.FindByID(templateID)
	if !ok {
		return e.ReportFatal(errs.CodeD9, fmt.Sprintf("unknown template id %d", templateID), nil, errs.ErrTemplateNotFound)
	}
	if t.Reset() {
		e.dict.Reset()
		e.cfg.logger.Debug().Uint32("template_id", templateID).Msg("dictionary reset by template")
	}

	scratch := stream.NewDestination()
	defer scratch.Release()

	pm := pmap.New(t.PresenceMapBitsRequired())
	if e.hasTemplateID && e.lastTemplateID == templateID {
		pm.SetNextField(false)
	} else {
		pm.SetNextField(true)
		scratch.WriteUInt64(uint64(templateID))
	}

	if err := e.EncodeSegmentBody(scratch, pm, t.SegmentBody, acc); err != nil {
		return err
	}
	e.lastTemplateID, e.hasTemplateID = templateID, true

	pm.Encode(dst)
	_, err := dst.Write(scratch.Bytes())

	return err
}

// FindTemplate implements template.Encoder.
func (e *Encoder) FindTemplate(name, namespace string) (*template.Template, bool) {
	return e.reg.FindByName(name, namespace)
}

// Dictionary implements template.Encoder.
func (e *Encoder) Dictionary() *dictionary.Dictionary {
	return e.dict
}

// EncodeSegmentBody implements template.Encoder.
func (e *Encoder) EncodeSegmentBody(dst *stream.Destination, pm *pmap.PresenceMap, body *template.SegmentBody, acc field.Accessor) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.cfg.maxNesting {
		return fmt.Errorf("%w: segment %s deeper than %d", errs.ErrNestingTooDeep, body.Name(), e.cfg.maxNesting)
	}

	return body.Encode(e, dst, pm, acc)
}

// ReportFatal implements template.Reporter.
func (e *Encoder) ReportFatal(code errs.Code, message string, id *field.Identity, cause error) error {
	return e.cfg.reportFatal(code, message, id, cause)
}

package codec

import (
	"errors"
	"fmt"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
	"github.com/arloliu/fastcodec/template"
)

// Decoder decodes FAST messages against a finalized template registry.
//
// A Decoder owns the session state: the dictionary of previous values and the last template
// id. It is NOT thread-safe; use one Decoder per stream. The registry may be shared.
type Decoder struct {
	cfg  *Config
	reg  *template.Registry
	dict *dictionary.Dictionary

	lastTemplateID uint32
	hasTemplateID  bool
	depth          int
}

var _ template.Decoder = (*Decoder)(nil)

// NewDecoder creates a decoder for reg.
//
// Parameters:
//   - reg: Finalized template registry
//   - opts: Decoder options
//
// Returns:
//   - *Decoder: New decoder with an empty dictionary
//   - error: errs.ErrRegistryNotFinalized or an invalid option
func NewDecoder(reg *template.Registry, opts ...Option) (*Decoder, error) {
	if !reg.Finalized() {
		return nil, errs.ErrRegistryNotFinalized
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Decoder{
		cfg:  cfg,
		reg:  reg,
		dict: reg.NewDictionary(),
	}, nil
}

// Reset returns the session to its initial state: every dictionary entry becomes undefined
// and the last template id is forgotten.
func (d *Decoder) Reset() {
	d.dict.Reset()
	d.hasTemplateID = false
	d.lastTemplateID = 0
	d.cfg.logger.Debug().Msg("decoder session reset")
}

// DecodeMessage decodes the next message from src into a new field set.
//
// Parameters:
//   - src: Source positioned at the message's presence map
//
// Returns:
//   - *Message: The template and the decoded fields
//   - error: Wire errors such as errs.ErrInsufficientData, or a *errs.FatalError reported by
//     an instruction; src is left after the bytes already consumed
func (d *Decoder) DecodeMessage(src *stream.Source) (*Message, error) {
	fs := message.NewFieldSet(0)
	t, err := d.DecodeMessageInto(src, fs)
	if err != nil {
		return nil, err
	}

	return &Message{Template: t, Fields: fs}, nil
}

// DecodeMessageInto decodes the next message from src into fs, which is cleared first so one
// field set can be reused across messages.
//
// Returns:
//   - *template.Template: The template the message was encoded with
//   - error: Wire errors, or a *errs.FatalError reported by an instruction
func (d *Decoder) DecodeMessageInto(src *stream.Source, fs *message.FieldSet) (*template.Template, error) {
	d.depth = 0

	pm := &pmap.PresenceMap{}
	if err := pm.Decode(src, d.cfg.maxPresenceMapBytes); err != nil {
		return nil, d.presenceMapFailed(err)
	}

	t, err := d.decodeTemplateID(src, pm)
	if err != nil {
		return nil, err
	}
	if t.Reset() {
		d.dict.Reset()
		d.cfg.logger.Debug().Uint32("template_id", t.ID()).Msg("dictionary reset by template")
	}

	fs.Clear(t.FieldCount())
	fs.SetApplicationType(t.ApplicationType(), t.ApplicationTypeNamespace())
	if err := d.DecodeSegmentBody(src, pm, t.SegmentBody, fs); err != nil {
		return nil, err
	}

	return t, nil
}

// decodeTemplateID reads the template id, which the first presence map bit marks as present.
// A missing id repeats the previous message's id.
func (d *Decoder) decodeTemplateID(src *stream.Source, pm *pmap.PresenceMap) (*template.Template, error) {
	if pm.CheckNextField() {
		id, err := src.ReadUInt32()
		if err != nil {
			return nil, fmt.Errorf("template id: %w", err)
		}
		d.lastTemplateID, d.hasTemplateID = id, true
	} else if !d.hasTemplateID {
		return nil, d.ReportFatal(errs.CodeD5, "template id omitted with no previous template id", nil, errs.ErrNoPreviousValue)
	}

	t, ok := d.reg.FindByID(d.lastTemplateID)
	if !ok {
		return nil, d.ReportFatal(errs.CodeD9, fmt.Sprintf("unknown template id %d", d.lastTemplateID), nil, errs.ErrTemplateNotFound)
	}

	return t, nil
}

// FindTemplate implements template.Decoder.
func (d *Decoder) FindTemplate(name, namespace string) (*template.Template, bool) {
	return d.reg.FindByName(name, namespace)
}

// Dictionary implements template.Decoder.
func (d *Decoder) Dictionary() *dictionary.Dictionary {
	return d.dict
}

// DecodeSegmentBody implements template.Decoder.
func (d *Decoder) DecodeSegmentBody(src *stream.Source, pm *pmap.PresenceMap, body *template.SegmentBody, b message.Builder) error {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.cfg.maxNesting {
		return fmt.Errorf("%w: segment %s deeper than %d", errs.ErrNestingTooDeep, body.Name(), d.cfg.maxNesting)
	}

	return body.Decode(d, src, pm, b)
}

// DecodeNestedTemplate implements template.Decoder: it reads a presence map and template id
// and decodes that template. Like a static reference, a template of b's application type is
// decoded into b, any other becomes a group named id.
func (d *Decoder) DecodeNestedTemplate(src *stream.Source, b message.Builder, id *field.Identity) error {
	pm := &pmap.PresenceMap{}
	if err := pm.Decode(src, d.cfg.maxPresenceMapBytes); err != nil {
		return d.presenceMapFailed(err)
	}

	t, err := d.decodeTemplateID(src, pm)
	if err != nil {
		return err
	}

	if t.ApplicationType() == b.ApplicationType() && t.ApplicationTypeNamespace() == b.ApplicationTypeNamespace() {
		return d.DecodeSegmentBody(src, pm, t.SegmentBody, b)
	}

	group := b.StartGroup(id, t.ApplicationType(), t.ApplicationTypeNamespace(), t.FieldCount())
	if err := d.DecodeSegmentBody(src, pm, t.SegmentBody, group); err != nil {
		return err
	}
	b.EndGroup(id, group)

	return nil
}

// MaxPresenceMapBytes implements template.Decoder.
func (d *Decoder) MaxPresenceMapBytes() int {
	return d.cfg.maxPresenceMapBytes
}

// MaxSequenceLength implements template.Decoder.
func (d *Decoder) MaxSequenceLength() int {
	return d.cfg.maxSequenceLength
}

// ReportFatal implements template.Reporter.
func (d *Decoder) ReportFatal(code errs.Code, message string, id *field.Identity, cause error) error {
	return d.cfg.reportFatal(code, message, id, cause)
}

func (d *Decoder) presenceMapFailed(err error) error {
	if errors.Is(err, errs.ErrInvalidPresenceMap) {
		return d.ReportFatal(errs.CodeR7, err.Error(), nil, err)
	}

	return err
}

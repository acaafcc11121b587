package template

import (
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
)

// maxSequenceHint caps the capacity pre-allocated from an untrusted sequence length.
const maxSequenceHint = 1024

// DecodeNestedBody decodes body from src into b. A body that needs presence map bits starts
// with its own presence map, bounded by d.MaxPresenceMapBytes; other bodies have none on the
// wire.
func DecodeNestedBody(d Decoder, src *stream.Source, body *SegmentBody, b message.Builder) error {
	pm := pmap.New(0)
	if body.PresenceMapBitsRequired() > 0 {
		pm = pmap.New(body.PresenceMapBitsRequired())
		if err := pm.Decode(src, d.MaxPresenceMapBytes()); err != nil {
			if errors.Is(err, errs.ErrInvalidPresenceMap) {
				return d.ReportFatal(errs.CodeR7, fmt.Sprintf("segment %s: %v", body.name, err), nil, err)
			}

			return fmt.Errorf("segment %s: %w", body.name, err)
		}
	}

	return d.DecodeSegmentBody(src, pm, body, b)
}

// EncodeNestedBody is the inverse of DecodeNestedBody.
func EncodeNestedBody(e Encoder, dst *stream.Destination, body *SegmentBody, acc field.Accessor) error {
	if body.PresenceMapBitsRequired() == 0 {
		return e.EncodeSegmentBody(dst, pmap.New(0), body, acc)
	}

	scratch := stream.NewDestination()
	defer scratch.Release()

	pm := pmap.New(body.PresenceMapBitsRequired())
	if err := e.EncodeSegmentBody(scratch, pm, body, acc); err != nil {
		return err
	}
	pm.Encode(dst)
	_, err := dst.Write(scratch.Bytes())

	return err
}

func (in *Instruction) decodeGroup(d Decoder, src *stream.Source, pm *pmap.PresenceMap, b message.Builder) error {
	if in.presence == Optional && !pm.CheckNextField() {
		return nil
	}

	body := in.segment
	group := b.StartGroup(in.identity, body.appType, body.appTypeNS, body.FieldCount())
	if err := DecodeNestedBody(d, src, body, group); err != nil {
		return err
	}
	b.EndGroup(in.identity, group)

	return nil
}

func (in *Instruction) decodeSequence(d Decoder, src *stream.Source, pm *pmap.PresenceMap, b message.Builder) error {
	body := in.segment
	lengthIn := body.length

	lv, ok, err := lengthIn.decodeScalar(d, src, pm)
	if err != nil || !ok {
		return err
	}
	n, err := lv.AsUInt32()
	if err != nil {
		return d.ReportFatal(errs.CodeD4, err.Error(), lengthIn.identity, err)
	}
	if err := checkSequenceLength(d, src, body, n); err != nil {
		return err
	}

	hint := int(n)
	if hint > maxSequenceHint {
		hint = maxSequenceHint
	}
	seq := b.StartSequence(in.identity, body.appType, body.appTypeNS, lengthIn.identity, hint)
	for range n {
		entry := seq.StartEntry(body.appType, body.appTypeNS, body.FieldCount())
		if err := DecodeNestedBody(d, src, body, entry); err != nil {
			return err
		}
		seq.EndEntry(entry)
	}
	b.EndSequence(in.identity, seq)

	return nil
}

// checkSequenceLength rejects a wire length before any entry is built: above the decoder's
// limit, or longer than the remaining bytes can hold when every entry takes at least one.
func checkSequenceLength(d Decoder, src *stream.Source, body *SegmentBody, n uint32) error {
	if limit := d.MaxSequenceLength(); limit > 0 && uint64(n) > uint64(limit) {
		return d.ReportFatal(errs.CodeR10, fmt.Sprintf("sequence length %d above limit %d", n, limit),
			body.length.identity, errs.ErrSequenceTooLong)
	}
	if per := body.entryMinBytes(); per > 0 && uint64(n)*uint64(per) > uint64(src.Remaining()) {
		return fmt.Errorf("%w: sequence %s of %d entries needs at least %d bytes, %d left",
			errs.ErrInsufficientData, body.name, n, uint64(n)*uint64(per), src.Remaining())
	}

	return nil
}

// decodeStaticRef decodes the referenced template's body with the enclosing presence map.
//
// When the target has the builder's application type its fields go straight into b, so
// splitting a message across templates stays invisible to the application. Otherwise they
// become a group named by the reference identity.
func (in *Instruction) decodeStaticRef(d Decoder, src *stream.Source, pm *pmap.PresenceMap, b message.Builder) error {
	target, err := in.resolve(d)
	if err != nil {
		return err
	}

	if sameType(target.SegmentBody, b) {
		return d.DecodeSegmentBody(src, pm, target.SegmentBody, b)
	}

	group := b.StartGroup(in.identity, target.appType, target.appTypeNS, target.FieldCount())
	if err := d.DecodeSegmentBody(src, pm, target.SegmentBody, group); err != nil {
		return err
	}
	b.EndGroup(in.identity, group)

	return nil
}

type finder interface {
	Reporter
	FindTemplate(name, namespace string) (*Template, bool)
}

func (in *Instruction) resolve(f finder) (*Template, error) {
	target, ok := f.FindTemplate(in.refName, in.refNS)
	if !ok {
		return nil, f.ReportFatal(errs.CodeD8, fmt.Sprintf("template %s not found", qualify(in.refName, in.refNS)), in.identity, errs.ErrTemplateNotFound)
	}

	return target, nil
}

type typed interface {
	ApplicationType() string
	ApplicationTypeNamespace() string
}

func sameType(body *SegmentBody, b typed) bool {
	return body.appType == b.ApplicationType() && body.appTypeNS == b.ApplicationTypeNamespace()
}

func (in *Instruction) encodeGroup(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, acc field.Accessor) error {
	v, ok := acc.Field(in.identity.Name())
	if in.presence == Optional {
		pm.SetNextField(ok)
		if !ok {
			return nil
		}
	} else if !ok {
		return in.missing(e)
	}

	group, err := v.AsGroup()
	if err != nil {
		return e.ReportFatal(errs.CodeD4, err.Error(), in.identity, err)
	}

	return EncodeNestedBody(e, dst, in.segment, group)
}

func (in *Instruction) encodeSequence(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, acc field.Accessor) error {
	body := in.segment
	lengthIn := body.length

	v, ok := acc.Field(in.identity.Name())
	if !ok {
		if in.presence == Mandatory {
			return in.missing(e)
		}

		return lengthIn.encodeScalar(e, dst, pm, nil)
	}

	seq, err := v.AsSequence()
	if err != nil {
		return e.ReportFatal(errs.CodeD4, err.Error(), in.identity, err)
	}
	if uint64(seq.Len()) > math.MaxUint32 {
		return e.ReportFatal(errs.CodeD2, "sequence too long", in.identity, errs.ErrValueOverflow)
	}
	if err := lengthIn.encodeScalar(e, dst, pm, field.NewUInt32(uint32(seq.Len()))); err != nil {
		return err
	}
	for i := range seq.Len() {
		if err := EncodeNestedBody(e, dst, body, seq.Entry(i)); err != nil {
			return err
		}
	}

	return nil
}

// encodeStaticRef mirrors decodeStaticRef: a group field named by the reference identity is
// encoded as the target body, otherwise the target's fields are taken from acc itself.
func (in *Instruction) encodeStaticRef(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, acc field.Accessor) error {
	target, err := in.resolve(e)
	if err != nil {
		return err
	}

	src := acc
	if v, ok := acc.Field(in.identity.Name()); ok {
		if group, err := v.AsGroup(); err == nil {
			src = group
		}
	}

	return e.EncodeSegmentBody(dst, pm, target.SegmentBody, src)
}

func (in *Instruction) missing(r Reporter) error {
	return r.ReportFatal(errs.CodeE1, "mandatory field missing", in.identity, errs.ErrMissingMandatory)
}

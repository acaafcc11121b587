package template

import (
	"errors"
	"fmt"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
)

// Decode decodes the instruction's field from src into b.
func (in *Instruction) Decode(d Decoder, src *stream.Source, pm *pmap.PresenceMap, b message.Builder) error {
	switch in.kind {
	case KindGroup:
		return in.decodeGroup(d, src, pm, b)
	case KindSequence:
		return in.decodeSequence(d, src, pm, b)
	case KindStaticTemplateRef:
		return in.decodeStaticRef(d, src, pm, b)
	case KindDynamicTemplateRef:
		return d.DecodeNestedTemplate(src, b, in.identity)
	default:
		v, ok, err := in.decodeScalar(d, src, pm)
		if err != nil {
			return err
		}
		if ok {
			b.AddValue(in.identity, v)
		}

		return nil
	}
}

// decodeScalar returns the field value, or ok == false when the field is absent.
func (in *Instruction) decodeScalar(d Decoder, src *stream.Source, pm *pmap.PresenceMap) (field.Value, bool, error) {
	nullable := in.op.nullable(in.presence)

	switch in.op.kind {
	case OpNone:
		return in.read(d, src, nullable)

	case OpConstant:
		if in.presence == Optional && !pm.CheckNextField() {
			return nil, false, nil
		}

		return in.op.initial, true, nil

	case OpDefault:
		if pm.CheckNextField() {
			return in.read(d, src, nullable)
		}
		if in.op.initial == nil {
			return nil, false, nil
		}

		return in.op.initial, true, nil

	case OpCopy, OpIncrement, OpTail:
		return in.decodeFromPrevious(d, src, pm, nullable)

	case OpDelta:
		return in.decodeDelta(d, src, nullable)

	default:
		return nil, false, d.ReportFatal(errs.CodeS2, fmt.Sprintf("unknown operator %d", in.op.kind), in.identity, errs.ErrUnsupportedOperator)
	}
}

func (in *Instruction) read(d Decoder, src *stream.Source, nullable bool) (field.Value, bool, error) {
	v, null, err := readValue(in.kind, src, nullable)
	if err != nil {
		return nil, false, in.readFailed(d, err)
	}

	return v, !null, nil
}

// decodeFromPrevious implements copy, increment and tail: a set bit carries a new value (the
// tail of one for tail), a clear bit derives the value from the dictionary.
func (in *Instruction) decodeFromPrevious(d Decoder, src *stream.Source, pm *pmap.PresenceMap, nullable bool) (field.Value, bool, error) {
	dict := d.Dictionary()

	if pm.CheckNextField() {
		v, ok, err := in.read(d, src, nullable)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			dict.SetEmpty(in.slot)
			return nil, false, nil
		}
		if in.op.kind == OpTail {
			base, err := in.tailBase(d, dict)
			if err != nil {
				return nil, false, err
			}
			tail, _ := v.AsBytes()
			if v, err = applyTail(in.kind, base, tail); err != nil {
				return nil, false, d.ReportFatal(errs.CodeD4, err.Error(), in.identity, err)
			}
		}
		dict.Set(in.slot, v)

		return v, true, nil
	}

	prev, state := dict.Get(in.slot)
	switch state {
	case dictionary.Assigned:
		v, err := in.previous(d, prev)
		if err != nil {
			return nil, false, err
		}
		if in.op.kind == OpIncrement {
			if v, err = increment(in.kind, v); err != nil {
				return nil, false, d.ReportFatal(errs.CodeD2, err.Error(), in.identity, err)
			}
			dict.Set(in.slot, v)
		}

		return v, true, nil
	case dictionary.Empty:
		if in.presence == Mandatory {
			return nil, false, d.ReportFatal(errs.CodeD6, "previous value is empty", in.identity, errs.ErrEmptyPreviousValue)
		}

		return nil, false, nil
	default:
		if in.op.initial != nil {
			dict.Set(in.slot, in.op.initial)
			return in.op.initial, true, nil
		}
		if in.presence == Mandatory {
			return nil, false, d.ReportFatal(errs.CodeD5, "no previous or initial value", in.identity, errs.ErrNoPreviousValue)
		}
		dict.SetEmpty(in.slot)

		return nil, false, nil
	}
}

func (in *Instruction) decodeDelta(d Decoder, src *stream.Source, nullable bool) (field.Value, bool, error) {
	dict := d.Dictionary()
	kind := in.kind.ValueKind()

	var (
		v   field.Value
		err error
	)
	switch {
	case kind.IsInteger():
		delta, null, rerr := readDeltaInt(src, nullable)
		if rerr != nil || null {
			return nil, false, in.readFailedOrNil(d, rerr)
		}
		base, berr := in.deltaBase(d, dict)
		if berr != nil {
			return nil, false, berr
		}
		v, err = addIntegerDelta(in.kind, base, delta)
	case kind == field.KindDecimal:
		expDelta, null, rerr := readDeltaInt(src, nullable)
		if rerr != nil || null {
			return nil, false, in.readFailedOrNil(d, rerr)
		}
		mantDelta, rerr := src.ReadInt64()
		if rerr != nil {
			return nil, false, in.readFailed(d, rerr)
		}
		base, berr := in.deltaBase(d, dict)
		if berr != nil {
			return nil, false, berr
		}
		v, err = addDecimalDelta(base, expDelta, mantDelta)
	default:
		subtract, null, rerr := readDeltaInt(src, nullable)
		if rerr != nil || null {
			return nil, false, in.readFailedOrNil(d, rerr)
		}
		diff, rerr := readDeltaString(in.kind, src)
		if rerr != nil {
			return nil, false, in.readFailed(d, rerr)
		}
		base, berr := in.deltaBase(d, dict)
		if berr != nil {
			return nil, false, berr
		}
		if v, err = applyStringDelta(in.kind, base, subtract, diff); err != nil {
			return nil, false, d.ReportFatal(errs.CodeD7, err.Error(), in.identity, err)
		}
	}
	if err != nil {
		code := errs.CodeD2
		if kind == field.KindDecimal {
			code = errs.CodeD3
		}

		return nil, false, d.ReportFatal(code, err.Error(), in.identity, err)
	}
	dict.Set(in.slot, v)

	return v, true, nil
}

func readDeltaInt(src *stream.Source, nullable bool) (int64, bool, error) {
	if nullable {
		return src.ReadNullableInt64()
	}
	n, err := src.ReadInt64()

	return n, false, err
}

func readDeltaString(kind Kind, src *stream.Source) ([]byte, error) {
	if kind == KindASCII {
		s, err := src.ReadASCII()
		return []byte(s), err
	}

	return src.ReadByteVector()
}

// deltaBase returns the previous value, else the initial value, else the type default.
func (in *Instruction) deltaBase(d Decoder, dict *dictionary.Dictionary) (field.Value, error) {
	prev, state := dict.Get(in.slot)
	switch state {
	case dictionary.Assigned:
		return in.previous(d, prev)
	case dictionary.Empty:
		return nil, d.ReportFatal(errs.CodeD6, "delta base is empty", in.identity, errs.ErrEmptyPreviousValue)
	default:
		if in.op.initial != nil {
			return in.op.initial, nil
		}

		return zero(in.kind), nil
	}
}

// tailBase returns the previous value, else the initial value, else the type default.
func (in *Instruction) tailBase(d Decoder, dict *dictionary.Dictionary) (field.Value, error) {
	prev, state := dict.Get(in.slot)
	if state == dictionary.Assigned {
		return in.previous(d, prev)
	}
	if in.op.initial != nil {
		return in.op.initial, nil
	}

	return zero(in.kind), nil
}

// previous converts a dictionary value, which another instruction sharing the key may have
// stored with a different type.
func (in *Instruction) previous(r Reporter, prev field.Value) (field.Value, error) {
	v, err := convert(in.kind, prev)
	if err != nil {
		return nil, r.ReportFatal(errs.CodeD4, fmt.Sprintf("previous value %s does not fit %s", prev, in.kind), in.identity, err)
	}

	return v, nil
}

func (in *Instruction) readFailed(r Reporter, err error) error {
	switch {
	case errors.Is(err, errs.ErrIntegerOverflow):
		return r.ReportFatal(errs.CodeR4, err.Error(), in.identity, err)
	case errors.Is(err, errs.ErrValueOverflow):
		code := errs.CodeD2
		if in.kind == KindDecimal {
			code = errs.CodeD3
		}

		return r.ReportFatal(code, err.Error(), in.identity, err)
	default:
		return fmt.Errorf("decode %s: %w", in.identity, err)
	}
}

func (in *Instruction) readFailedOrNil(r Reporter, err error) error {
	if err == nil {
		return nil
	}

	return in.readFailed(r, err)
}

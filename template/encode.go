package template

import (
	"errors"
	"fmt"

	"github.com/arloliu/fastcodec/dictionary"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
)

// Encode encodes the instruction's field, looked up by name in acc, to dst.
func (in *Instruction) Encode(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, acc field.Accessor) error {
	switch in.kind {
	case KindGroup:
		return in.encodeGroup(e, dst, pm, acc)
	case KindSequence:
		return in.encodeSequence(e, dst, pm, acc)
	case KindStaticTemplateRef:
		return in.encodeStaticRef(e, dst, pm, acc)
	case KindDynamicTemplateRef:
		return e.ReportFatal(errs.CodeU1, "cannot encode a dynamic template reference", in.identity, errs.ErrDynamicTemplateEncode)
	default:
		v, ok := acc.Field(in.identity.Name())
		if !ok {
			v = nil
		}

		return in.encodeScalar(e, dst, pm, v)
	}
}

// encodeScalar encodes v; nil means the field is absent.
func (in *Instruction) encodeScalar(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, v field.Value) error {
	if v == nil {
		if in.presence == Mandatory && in.op.kind != OpConstant {
			return in.missing(e)
		}
	} else {
		cv, err := convert(in.kind, v)
		if err != nil {
			return e.ReportFatal(errs.CodeD4, fmt.Sprintf("value %s does not fit %s", v, in.kind), in.identity, err)
		}
		v = cv
	}

	nullable := in.op.nullable(in.presence)

	switch in.op.kind {
	case OpNone:
		return in.write(e, dst, v, nullable)

	case OpConstant:
		if v != nil && !field.Equal(v, in.op.initial) {
			return e.ReportFatal(errs.CodeD10, fmt.Sprintf("value %s differs from constant %s", v, in.op.initial), in.identity, errs.ErrConstantMismatch)
		}
		if in.presence == Optional {
			pm.SetNextField(v != nil)
		}

		return nil

	case OpDefault:
		if (v == nil && in.op.initial == nil) || (v != nil && field.Equal(v, in.op.initial)) {
			pm.SetNextField(false)
			return nil
		}
		pm.SetNextField(true)

		return in.write(e, dst, v, nullable)

	case OpCopy, OpIncrement, OpTail:
		return in.encodeFromPrevious(e, dst, pm, v, nullable)

	case OpDelta:
		return in.encodeDelta(e, dst, v, nullable)

	default:
		return e.ReportFatal(errs.CodeS2, fmt.Sprintf("unknown operator %d", in.op.kind), in.identity, errs.ErrUnsupportedOperator)
	}
}

// write writes v, or the null marker when v is nil.
func (in *Instruction) write(r Reporter, dst *stream.Destination, v field.Value, nullable bool) error {
	if v == nil {
		dst.WriteNull()
		return nil
	}
	if err := writeValue(in.kind, dst, v, nullable); err != nil {
		return in.writeFailed(r, err)
	}

	return nil
}

func (in *Instruction) encodeFromPrevious(e Encoder, dst *stream.Destination, pm *pmap.PresenceMap, v field.Value, nullable bool) error {
	dict := e.Dictionary()
	prev, state := dict.Get(in.slot)

	if v == nil {
		switch {
		case state == dictionary.Empty:
			pm.SetNextField(false)
		case state == dictionary.Undefined && in.op.initial == nil:
			pm.SetNextField(false)
			dict.SetEmpty(in.slot)
		default:
			pm.SetNextField(true)
			dst.WriteNull()
			dict.SetEmpty(in.slot)
		}

		return nil
	}

	switch state {
	case dictionary.Assigned:
		p, err := in.previous(e, prev)
		if err != nil {
			return err
		}
		expected := p
		if in.op.kind == OpIncrement {
			if expected, err = increment(in.kind, p); err != nil {
				expected = nil
			}
		}
		if expected != nil && field.Equal(v, expected) {
			pm.SetNextField(false)
			if in.op.kind == OpIncrement {
				dict.Set(in.slot, v)
			}

			return nil
		}
	case dictionary.Undefined:
		if in.op.initial != nil && field.Equal(v, in.op.initial) {
			pm.SetNextField(false)
			dict.Set(in.slot, v)

			return nil
		}
	}

	pm.SetNextField(true)
	wire := v
	if in.op.kind == OpTail {
		base, err := in.encodeTailBase(e, prev, state)
		if err != nil {
			return err
		}
		tail, err := tailOf(base, v)
		if err != nil {
			return e.ReportFatal(errs.CodeD10, err.Error(), in.identity, err)
		}
		wire = textValue(in.kind, tail)
	}
	if err := in.write(e, dst, wire, nullable); err != nil {
		return err
	}
	dict.Set(in.slot, v)

	return nil
}

func (in *Instruction) encodeTailBase(r Reporter, prev field.Value, state dictionary.State) (field.Value, error) {
	if state == dictionary.Assigned {
		return in.previous(r, prev)
	}
	if in.op.initial != nil {
		return in.op.initial, nil
	}

	return zero(in.kind), nil
}

func (in *Instruction) encodeDelta(e Encoder, dst *stream.Destination, v field.Value, nullable bool) error {
	if v == nil {
		dst.WriteNull()
		return nil
	}

	dict := e.Dictionary()
	var base field.Value
	prev, state := dict.Get(in.slot)
	switch state {
	case dictionary.Assigned:
		p, err := in.previous(e, prev)
		if err != nil {
			return err
		}
		base = p
	case dictionary.Empty:
		return e.ReportFatal(errs.CodeD6, "delta base is empty", in.identity, errs.ErrEmptyPreviousValue)
	default:
		base = in.op.initial
		if base == nil {
			base = zero(in.kind)
		}
	}

	kind := in.kind.ValueKind()
	switch {
	case kind.IsInteger():
		delta, err := integerDelta(in.kind, base, v)
		if err != nil {
			return e.ReportFatal(errs.CodeD10, err.Error(), in.identity, err)
		}
		if err := writeDeltaInt(dst, delta, nullable); err != nil {
			return in.writeFailed(e, err)
		}
	case kind == field.KindDecimal:
		expDelta, mantDelta, err := decimalDelta(base, v)
		if err != nil {
			return e.ReportFatal(errs.CodeD10, err.Error(), in.identity, err)
		}
		if err := writeDeltaInt(dst, expDelta, nullable); err != nil {
			return in.writeFailed(e, err)
		}
		dst.WriteInt64(mantDelta)
	default:
		subtract, diff, err := stringDelta(base, v)
		if err != nil {
			return e.ReportFatal(errs.CodeD10, err.Error(), in.identity, err)
		}
		if err := writeDeltaInt(dst, subtract, nullable); err != nil {
			return in.writeFailed(e, err)
		}
		if in.kind == KindASCII {
			if err := dst.WriteASCII(string(diff)); err != nil {
				return in.writeFailed(e, err)
			}
		} else {
			dst.WriteByteVector(diff)
		}
	}
	dict.Set(in.slot, v)

	return nil
}

func writeDeltaInt(dst *stream.Destination, n int64, nullable bool) error {
	if nullable {
		return dst.WriteNullableInt64(n)
	}
	dst.WriteInt64(n)

	return nil
}

func (in *Instruction) writeFailed(r Reporter, err error) error {
	if errors.Is(err, errs.ErrValueOverflow) || errors.Is(err, errs.ErrIntegerOverflow) {
		return r.ReportFatal(errs.CodeD2, err.Error(), in.identity, err)
	}

	return r.ReportFatal(errs.CodeD10, err.Error(), in.identity, err)
}

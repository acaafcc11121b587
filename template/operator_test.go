package template_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fastcodec/codec"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/stream"
	"github.com/arloliu/fastcodec/template"
)

func TestScalarOperators_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		in     func() *template.Instruction
		values []field.Value // nil means absent
		wire   []byte
	}{
		{
			name: "CopyMandatory",
			in: func() *template.Instruction {
				return template.NewUInt32(id("v"), template.Mandatory, template.Copy())
			},
			values: []field.Value{field.NewUInt32(5), field.NewUInt32(5), field.NewUInt32(6)},
			wire:   []byte{0xe0, 0x81, 0x85, 0x80, 0xa0, 0x86},
		},
		{
			name: "CopyWithInitial",
			in: func() *template.Instruction {
				return template.NewUInt32(id("v"), template.Mandatory, template.Copy(template.WithInitial(field.NewUInt32(10))))
			},
			values: []field.Value{field.NewUInt32(10), field.NewUInt32(10)},
			wire:   []byte{0xc0, 0x81, 0x80},
		},
		{
			name: "CopyOptionalByteVector",
			in: func() *template.Instruction {
				return template.NewByteVector(id("v"), template.Optional, template.Copy())
			},
			values: []field.Value{field.NewByteVector([]byte{1, 2}), field.NewByteVector([]byte{1, 2}), nil, nil},
			wire:   []byte{0xe0, 0x81, 0x83, 0x01, 0x02, 0x80, 0xa0, 0x80, 0x80},
		},
		{
			name: "IncrementMandatory",
			in: func() *template.Instruction {
				return template.NewUInt32(id("v"), template.Mandatory, template.Increment())
			},
			values: []field.Value{field.NewUInt32(5), field.NewUInt32(6), field.NewUInt32(8)},
			wire:   []byte{0xe0, 0x81, 0x85, 0x80, 0xa0, 0x88},
		},
		{
			name: "IncrementOptionalFromEmpty",
			in: func() *template.Instruction {
				return template.NewInt64(id("v"), template.Optional, template.Increment())
			},
			values: []field.Value{nil, field.NewInt64(5), field.NewInt64(6)},
			wire:   []byte{0xc0, 0x81, 0xa0, 0x86, 0x80},
		},
		{
			name: "IncrementUInt16",
			in: func() *template.Instruction {
				return template.NewUInt16(id("v"), template.Mandatory, template.Increment())
			},
			values: []field.Value{field.NewUInt16(5), field.NewUInt16(6)},
			wire:   []byte{0xe0, 0x81, 0x85, 0x80},
		},
		{
			name: "DeltaInt16",
			in: func() *template.Instruction {
				return template.NewInt16(id("v"), template.Mandatory, template.Delta())
			},
			values: []field.Value{field.NewInt16(100), field.NewInt16(98)},
			wire:   []byte{0xc0, 0x81, 0x00, 0xe4, 0x80, 0xfe},
		},
		{
			name: "DeltaInteger",
			in: func() *template.Instruction {
				return template.NewInt64(id("v"), template.Mandatory, template.Delta())
			},
			values: []field.Value{field.NewInt64(100), field.NewInt64(98)},
			wire:   []byte{0xc0, 0x81, 0x00, 0xe4, 0x80, 0xfe},
		},
		{
			name: "DeltaDecimalOptional",
			in: func() *template.Instruction {
				return template.NewDecimal(id("v"), template.Optional, template.Delta())
			},
			values: []field.Value{
				field.NewDecimalValue(field.NewDecimal(125, -2)),
				field.NewDecimalValue(field.NewDecimal(130, -2)),
				nil,
			},
			wire: []byte{0xc0, 0x81, 0xfe, 0x00, 0xfd, 0x80, 0x81, 0x85, 0x80, 0x80},
		},
		{
			name: "DeltaASCII",
			in: func() *template.Instruction {
				return template.NewASCII(id("v"), template.Mandatory, template.Delta())
			},
			values: []field.Value{field.NewASCII("hello"), field.NewASCII("help!")},
			wire:   []byte{0xc0, 0x81, 0x80, 0x68, 0x65, 0x6c, 0x6c, 0xef, 0x80, 0x82, 0x70, 0xa1},
		},
		{
			name: "DeltaUnicodeFront",
			in: func() *template.Instruction {
				return template.NewUnicode(id("v"), template.Optional, template.Delta())
			},
			values: []field.Value{field.NewUnicode("bcd"), field.NewUnicode("abcd"), field.NewUnicode("xbcd"), nil},
		},
		{
			name: "DefaultMandatory",
			in: func() *template.Instruction {
				return template.NewUInt32(id("v"), template.Mandatory, template.Default(field.NewUInt32(7)))
			},
			values: []field.Value{field.NewUInt32(7), field.NewUInt32(9)},
			wire:   []byte{0xc0, 0x81, 0xa0, 0x89},
		},
		{
			name: "DefaultOptionalWithInitial",
			in: func() *template.Instruction {
				return template.NewASCII(id("v"), template.Optional, template.Default(field.NewASCII("USD")))
			},
			values: []field.Value{field.NewASCII("USD"), nil, field.NewASCII("EUR")},
		},
		{
			name: "ConstantOptional",
			in: func() *template.Instruction {
				return template.NewInt32(id("v"), template.Optional, template.Constant(field.NewInt32(3)))
			},
			values: []field.Value{field.NewInt32(3), nil},
			wire:   []byte{0xe0, 0x81, 0x80},
		},
		{
			name: "NoneOptional",
			in: func() *template.Instruction {
				return template.NewUInt32(id("v"), template.Optional, template.NoOperator())
			},
			values: []field.Value{field.NewUInt32(0), nil},
			wire:   []byte{0xc0, 0x81, 0x81, 0x80, 0x80},
		},
		{
			name: "TailASCII",
			in: func() *template.Instruction {
				return template.NewASCII(id("v"), template.Mandatory, template.Tail())
			},
			values: []field.Value{field.NewASCII("ABCD"), field.NewASCII("ABXY"), field.NewASCII("ABXY")},
			wire:   []byte{0xe0, 0x81, 0x41, 0x42, 0x43, 0xc4, 0xa0, 0x58, 0xd9, 0x80},
		},
		{
			name: "TailOptionalByteVector",
			in: func() *template.Instruction {
				return template.NewByteVector(id("v"), template.Optional, template.Tail())
			},
			values: []field.Value{field.NewByteVector([]byte("abc")), field.NewByteVector([]byte("abd")), nil, field.NewByteVector([]byte("xyz"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := template.NewTemplate(1, "T", "")
			require.NoError(t, tmpl.AddInstruction(tt.in()))
			enc, dec := session(t, finalized(t, tmpl))

			msgs := make([]field.Accessor, len(tt.values))
			for i, v := range tt.values {
				if v == nil {
					msgs[i] = fields("")
				} else {
					msgs[i] = fields("", "v", v)
				}
			}

			wire := encodeAll(t, enc, 1, msgs...)
			if tt.wire != nil {
				require.Equal(t, tt.wire, wire)
			}

			got := decodeAll(t, dec, wire, len(tt.values))
			for i, want := range tt.values {
				v, ok := got[i].Field("v")
				if want == nil {
					require.False(t, ok, "message %d", i)
					continue
				}
				require.True(t, ok, "message %d", i)
				require.True(t, field.Equal(want, v), "message %d: want %v, got %v", i, want, v)
			}
		})
	}
}

func TestScalarOperators_EncodeConvertsValues(t *testing.T) {
	tmpl := template.NewTemplate(1, "T", "")
	require.NoError(t, tmpl.AddInstruction(template.NewUInt32(id("v"), template.Mandatory, template.NoOperator())))
	enc, dec := session(t, finalized(t, tmpl))

	wire := encodeAll(t, enc, 1, fields("", "v", field.NewInt64(42)))
	got := decodeAll(t, dec, wire, 1)[0]
	v, _ := got.Field("v")
	require.Equal(t, field.KindUInt32, v.Kind())

	dst := stream.NewDestination()
	defer dst.Release()
	err := enc.EncodeMessage(dst, 1, fields("", "v", field.NewInt64(-1)))
	require.ErrorIs(t, err, errs.ErrValueOverflow)
	code, _ := errs.CodeOf(err)
	require.Equal(t, errs.CodeD4, code)
}

func TestScalarOperators_Errors(t *testing.T) {
	t.Run("MissingMandatory", func(t *testing.T) {
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewInt32(id("v"), template.Mandatory, template.Copy())))
		enc, _ := session(t, finalized(t, tmpl))

		dst := stream.NewDestination()
		defer dst.Release()
		err := enc.EncodeMessage(dst, 1, fields(""))
		require.ErrorIs(t, err, errs.ErrMissingMandatory)
		code, _ := errs.CodeOf(err)
		require.Equal(t, errs.CodeE1, code)
	})

	t.Run("ConstantMismatch", func(t *testing.T) {
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewASCII(id("v"), template.Mandatory, template.Constant(field.NewASCII("A")))))
		enc, _ := session(t, finalized(t, tmpl))

		dst := stream.NewDestination()
		defer dst.Release()
		require.ErrorIs(t, enc.EncodeMessage(dst, 1, fields("", "v", field.NewASCII("B"))), errs.ErrConstantMismatch)
		require.NoError(t, enc.EncodeMessage(dst, 1, fields("")))
	})

	t.Run("CopyWithoutPrevious", func(t *testing.T) {
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewUInt32(id("v"), template.Mandatory, template.Copy())))
		_, dec := session(t, finalized(t, tmpl))

		_, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81}))
		require.ErrorIs(t, err, errs.ErrNoPreviousValue)
		require.ErrorIs(t, err, errs.ErrDynamic)
		code, _ := errs.CodeOf(err)
		require.Equal(t, errs.CodeD5, code)
	})

	t.Run("CopyEmptyPreviousMandatory", func(t *testing.T) {
		// The optional field empties the shared dictionary entry the mandatory one reads.
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewUInt32(id("a"), template.Optional, template.Copy(template.WithKey(id("k"))))))
		require.NoError(t, tmpl.AddInstruction(template.NewUInt32(id("b"), template.Mandatory, template.Copy(template.WithKey(id("k"))))))
		_, dec := session(t, finalized(t, tmpl))

		// bits: template id, a present (null), b absent
		_, err := dec.DecodeMessage(stream.NewSource([]byte{0xe0, 0x81, 0x80}))
		require.ErrorIs(t, err, errs.ErrEmptyPreviousValue)
		code, _ := errs.CodeOf(err)
		require.Equal(t, errs.CodeD6, code)
	})

	t.Run("StringDeltaTooLong", func(t *testing.T) {
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewASCII(id("v"), template.Mandatory, template.Delta())))
		_, dec := session(t, finalized(t, tmpl))

		// subtract 3 from the empty base
		_, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x83, 0x80}))
		require.ErrorIs(t, err, errs.ErrInvalidStringDelta)
		code, _ := errs.CodeOf(err)
		require.Equal(t, errs.CodeD7, code)
	})

	t.Run("Int32Overflow", func(t *testing.T) {
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewInt32(id("v"), template.Mandatory, template.NoOperator())))
		_, dec := session(t, finalized(t, tmpl))

		// 2^35 does not fit int32
		_, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x02, 0x00, 0x00, 0x00, 0x00, 0x80}))
		require.ErrorIs(t, err, errs.ErrValueOverflow)
	})

	t.Run("UInt16Overflow", func(t *testing.T) {
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewUInt16(id("v"), template.Mandatory, template.NoOperator())))
		enc, dec := session(t, finalized(t, tmpl))

		// 65536
		_, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x04, 0x00, 0x80}))
		require.ErrorIs(t, err, errs.ErrValueOverflow)

		dst := stream.NewDestination()
		defer dst.Release()
		require.ErrorIs(t, enc.EncodeMessage(dst, 1, fields("", "v", field.NewUInt32(70000))), errs.ErrValueOverflow)
	})
}

func TestTemplate_ResetDictionary(t *testing.T) {
	tmpl := template.NewTemplate(1, "T", "")
	tmpl.SetReset(true)
	require.NoError(t, tmpl.AddInstruction(template.NewUInt32(id("v"), template.Mandatory, template.Copy())))
	enc, dec := session(t, finalized(t, tmpl))

	msgs := []field.Accessor{fields("", "v", field.NewUInt32(5)), fields("", "v", field.NewUInt32(5))}
	wire := encodeAll(t, enc, 1, msgs...)
	require.Equal(t, []byte{0xe0, 0x81, 0x85, 0xa0, 0x85}, wire)

	got := decodeAll(t, dec, wire, 2)
	requireSameFields(t, msgs[1], got[1])
}

func TestGroup_RoundTrip(t *testing.T) {
	body := template.NewSegmentBody("hdr")
	require.NoError(t, body.AddInstruction(template.NewUInt32(id("seq"), template.Mandatory, template.Increment())))
	require.NoError(t, body.AddInstruction(template.NewASCII(id("note"), template.Optional, template.NoOperator())))

	tmpl := template.NewTemplate(1, "T", "")
	tmpl.SetApplicationType("T", "")
	require.NoError(t, tmpl.AddInstruction(template.NewGroup(id("hdr"), template.Optional, body)))
	require.NoError(t, tmpl.AddInstruction(template.NewInt32(id("after"), template.Mandatory, template.NoOperator())))
	enc, dec := session(t, finalized(t, tmpl))

	hdr := fields("T", "seq", field.NewUInt32(1), "note", field.NewASCII("a"))
	msgs := []field.Accessor{
		fields("T", "hdr", field.NewGroup(hdr), "after", field.NewInt32(2)),
		fields("T", "after", field.NewInt32(3)),
	}

	wire := encodeAll(t, enc, 1, msgs...)
	require.Equal(t, []byte{0xe0, 0x81, 0xc0, 0x81, 0xe1, 0x82, 0x80, 0x83}, wire)

	got := decodeAll(t, dec, wire, 2)
	g, ok := got[0].Field("hdr")
	require.True(t, ok)
	group, err := g.AsGroup()
	require.NoError(t, err)
	require.Equal(t, "T", group.ApplicationType())
	requireSameFields(t, hdr, group)

	_, ok = got[1].Field("hdr")
	require.False(t, ok)
	requireSameFields(t, msgs[1], got[1])
}

func TestSequence_RoundTrip(t *testing.T) {
	body := template.NewSequenceBody("legs")
	require.NoError(t, body.AddLengthInstruction(template.NewUInt32(id("n"), template.Mandatory, template.NoOperator())))
	require.NoError(t, body.AddInstruction(template.NewInt64(id("px"), template.Mandatory, template.Delta())))
	require.NoError(t, body.AddInstruction(template.NewUInt32(id("qty"), template.Mandatory, template.Copy())))

	tmpl := template.NewTemplate(1, "Order", "")
	tmpl.SetApplicationType("Order", "")
	require.NoError(t, tmpl.AddInstruction(template.NewUInt64(id("id"), template.Mandatory, template.NoOperator())))
	require.NoError(t, tmpl.AddInstruction(template.NewSequence(id("legs"), template.Optional, body)))
	enc, dec := session(t, finalized(t, tmpl))

	legs := newLegs(
		fields("Order", "px", field.NewInt64(100), "qty", field.NewUInt32(5)),
		fields("Order", "px", field.NewInt64(101), "qty", field.NewUInt32(5)),
	)
	msgs := []field.Accessor{
		fields("Order", "id", field.NewUInt64(7), "legs", field.NewSequence(legs)),
		fields("Order", "id", field.NewUInt64(7)),
	}

	wire := encodeAll(t, enc, 1, msgs...)
	require.Equal(t, []byte{
		0xc0, 0x81, 0x87, // presence map, template id, id
		0x83,             // length 2, nullable
		0xc0, 0x00, 0xe4, 0x85, // entry 0: px +100, qty 5
		0x80, 0x81, // entry 1: px +1, qty copied
		0x80, 0x87, 0x80, // second message: id 7, no legs
	}, wire)

	got := decodeAll(t, dec, wire, 2)
	v, ok := got[0].Field("legs")
	require.True(t, ok)
	seq, err := v.AsSequence()
	require.NoError(t, err)
	require.Equal(t, "n", seq.LengthIdentity().Name())
	require.Equal(t, 2, seq.Len())
	for i := range seq.Len() {
		requireSameFields(t, legs.Entry(i), seq.Entry(i))
	}

	_, ok = got[1].Field("legs")
	require.False(t, ok)
}

func TestGroup_PresenceMapLimit(t *testing.T) {
	body := template.NewSegmentBody("hdr")
	require.NoError(t, body.AddInstruction(template.NewUInt32(id("v"), template.Mandatory, template.Copy(template.WithInitial(field.NewUInt32(10))))))
	tmpl := template.NewTemplate(1, "T", "")
	require.NoError(t, tmpl.AddInstruction(template.NewGroup(id("hdr"), template.Mandatory, body)))
	reg := finalized(t, tmpl)

	_, dec := session(t, reg, codec.WithMaxPresenceMapBytes(2))

	// two byte group presence map, v taken from its initial value
	msg, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x00, 0x80}))
	require.NoError(t, err)
	g, ok := msg.Fields.Field("hdr")
	require.True(t, ok)
	group, err := g.AsGroup()
	require.NoError(t, err)
	v, _ := group.Field("v")
	require.Equal(t, "10", v.String())

	_, err = dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x00, 0x00, 0x80}))
	require.ErrorIs(t, err, errs.ErrInvalidPresenceMap)
	code, _ := errs.CodeOf(err)
	require.Equal(t, errs.CodeR7, code)
}

func TestSequence_LengthLimits(t *testing.T) {
	build := func(entry *template.Instruction) *template.Registry {
		body := template.NewSequenceBody("legs")
		require.NoError(t, body.AddLengthInstruction(template.NewUInt32(id("n"), template.Mandatory, template.NoOperator())))
		require.NoError(t, body.AddInstruction(entry))
		tmpl := template.NewTemplate(1, "T", "")
		require.NoError(t, tmpl.AddInstruction(template.NewSequence(id("legs"), template.Mandatory, body)))

		return finalized(t, tmpl)
	}

	t.Run("EmptyEntriesCapped", func(t *testing.T) {
		reg := build(template.NewUInt32(id("k"), template.Mandatory, template.Constant(field.NewUInt32(1))))

		_, dec := session(t, reg, codec.WithMaxSequenceLength(4))
		msg, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x84}))
		require.NoError(t, err)
		v, _ := msg.Fields.Field("legs")
		seq, err := v.AsSequence()
		require.NoError(t, err)
		require.Equal(t, 4, seq.Len())

		_, err = dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x85}))
		require.ErrorIs(t, err, errs.ErrSequenceTooLong)
		code, _ := errs.CodeOf(err)
		require.Equal(t, errs.CodeR10, code)

		// 1048575 entries under the default limit
		_, dec = session(t, reg)
		_, err = dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x00, 0x3f, 0x7f, 0xff}))
		require.ErrorIs(t, err, errs.ErrSequenceTooLong)
	})

	t.Run("LengthBeyondRemainingBytes", func(t *testing.T) {
		reg := build(template.NewUInt32(id("qty"), template.Mandatory, template.NoOperator()))

		_, dec := session(t, reg, codec.WithMaxSequenceLength(0))
		_, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x8a, 0x81, 0x82, 0x83}))
		require.ErrorIs(t, err, errs.ErrInsufficientData)

		msg, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81, 0x83, 0x81, 0x82, 0x83}))
		require.NoError(t, err)
		v, _ := msg.Fields.Field("legs")
		seq, _ := v.AsSequence()
		require.Equal(t, 3, seq.Len())
	})
}

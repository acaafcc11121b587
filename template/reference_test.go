package template_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fastcodec/codec"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/pmap"
	"github.com/arloliu/fastcodec/stream"
	"github.com/arloliu/fastcodec/template"
)

func newQuoteRegistry(t *testing.T) *template.Registry {
	t.Helper()

	extra := template.NewTemplate(2, "StaticExtra", "")
	extra.SetApplicationType("Extra", "")
	require.NoError(t, extra.AddInstruction(template.NewASCII(id("venue"), template.Mandatory, template.NoOperator())))
	require.NoError(t, extra.AddInstruction(template.NewUInt32(id("flags"), template.Optional, template.NoOperator())))

	quote := template.NewTemplate(1, "Quote", "")
	quote.SetApplicationType("Quote", "")
	require.NoError(t, quote.AddInstruction(template.NewDecimal(id("price"), template.Optional, template.Delta())))
	require.NoError(t, quote.AddInstruction(template.NewUInt32(id("size"), template.Mandatory, template.NoOperator())))
	require.NoError(t, quote.AddInstruction(template.NewStaticTemplateRef(id("extra"), "StaticExtra", "")))

	return finalized(t, quote, extra)
}

func TestStaticTemplateRef_QuoteScenario(t *testing.T) {
	reg := newQuoteRegistry(t)
	enc, dec := session(t, reg)

	wire := []byte{
		0xc0,                   // presence map: template id present
		0x81,                   // template id 1
		0x80,                   // price: null delta
		0xe4,                   // size: 100
		0x58, 0x4e, 0x41, 0xd3, // venue: "XNAS"
		0x84,                   // flags: 3
	}

	msg, err := dec.DecodeMessage(stream.NewSource(wire))
	require.NoError(t, err)
	require.Equal(t, uint32(1), msg.TemplateID())

	fs := msg.Fields
	require.Equal(t, "Quote", fs.ApplicationType())
	require.Equal(t, 2, fs.Len())

	_, ok := fs.Field("price")
	require.False(t, ok)

	size, ok := fs.Field("size")
	require.True(t, ok)
	n, err := size.AsUInt32()
	require.NoError(t, err)
	require.Equal(t, uint32(100), n)

	extraID, _ := fs.At(1)
	require.Equal(t, "extra", extraID.Name())
	v, ok := fs.Field("extra")
	require.True(t, ok)
	group, err := v.AsGroup()
	require.NoError(t, err)
	require.Equal(t, "Extra", group.ApplicationType())
	require.Equal(t, 2, group.Len())
	venue, _ := group.Field("venue")
	require.Equal(t, "XNAS", venue.String())
	flags, _ := group.Field("flags")
	f, _ := flags.AsUInt32()
	require.Equal(t, uint32(3), f)

	t.Run("ReencodesIdentically", func(t *testing.T) {
		require.Equal(t, wire, encodeAll(t, enc, 1, fs))
	})
}

func TestStaticTemplateRef_CollapsesSameApplicationType(t *testing.T) {
	b := template.NewTemplate(2, "B", "")
	b.SetApplicationType("T", "")
	require.NoError(t, b.AddInstruction(template.NewUInt32(id("x"), template.Mandatory, template.Copy())))
	require.NoError(t, b.AddInstruction(template.NewASCII(id("y"), template.Mandatory, template.NoOperator())))

	a := template.NewTemplate(1, "A", "")
	a.SetApplicationType("T", "")
	require.NoError(t, a.AddInstruction(template.NewInt32(id("a"), template.Mandatory, template.NoOperator())))
	require.NoError(t, a.AddInstruction(template.NewStaticTemplateRef(id("b"), "B", "")))

	inline := template.NewTemplate(3, "Inline", "")
	inline.SetApplicationType("T", "")
	require.NoError(t, inline.AddInstruction(template.NewInt32(id("a"), template.Mandatory, template.NoOperator())))
	require.NoError(t, inline.AddInstruction(template.NewUInt32(id("x"), template.Mandatory, template.Copy())))
	require.NoError(t, inline.AddInstruction(template.NewASCII(id("y"), template.Mandatory, template.NoOperator())))

	reg := finalized(t, a, b, inline)
	require.Equal(t, inline.PresenceMapBitsRequired(), a.PresenceMapBitsRequired())

	input := fields("T", "a", field.NewInt32(-5), "x", field.NewUInt32(10), "y", field.NewASCII("hi"))

	encA, decA := session(t, reg)
	viaRef := encodeAll(t, encA, 1, input)
	encI, decI := session(t, reg)
	viaInline := encodeAll(t, encI, 3, input)

	require.Equal(t, []byte{0xe0, 0x81, 0xfb, 0x8a, 0x68, 0xe9}, viaRef)
	require.Equal(t, viaInline[2:], viaRef[2:])

	gotRef := decodeAll(t, decA, viaRef, 1)[0]
	gotInline := decodeAll(t, decI, viaInline, 1)[0]
	requireSameFields(t, gotInline, gotRef)
	requireSameFields(t, input, gotRef)
}

func TestStaticTemplateRef_NestsDifferentApplicationType(t *testing.T) {
	reg := newQuoteRegistry(t)
	enc, dec := session(t, reg)

	extra := fields("Extra", "venue", field.NewASCII("XLON"))
	quote := fields("Quote",
		"price", field.NewDecimalValue(field.NewDecimal(1015, -1)),
		"size", field.NewUInt32(7),
		"extra", field.NewGroup(extra),
	)

	got := decodeAll(t, dec, encodeAll(t, enc, 1, quote), 1)[0]
	require.Equal(t, 3, got.Len())
	price, ok := got.Field("price")
	require.True(t, ok)
	d, err := price.AsDecimal()
	require.NoError(t, err)
	require.Equal(t, field.NewDecimal(1015, -1), d)

	gid, gv := got.At(2)
	require.Equal(t, "extra", gid.Name())
	group, err := gv.AsGroup()
	require.NoError(t, err)
	require.Equal(t, "Extra", group.ApplicationType())
	requireSameFields(t, extra, group)
}

func TestStaticTemplateRef_UnresolvedAtDecode(t *testing.T) {
	reg := newQuoteRegistry(t)
	in := template.NewStaticTemplateRef(id("ghost"), "Ghost", "")
	_, dec := session(t, reg)

	err := in.Decode(dec, stream.NewSource(nil), pmap.New(0), fields("Quote"))
	require.ErrorIs(t, err, errs.ErrTemplateNotFound)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.CodeD8, code)
}

func newDynamicRegistry(t *testing.T) *template.Registry {
	t.Helper()

	outer := template.NewTemplate(1, "Outer", "")
	outer.SetApplicationType("Outer", "")
	require.NoError(t, outer.AddInstruction(template.NewUInt32(id("n"), template.Mandatory, template.NoOperator())))
	require.NoError(t, outer.AddInstruction(template.NewDynamicTemplateRef(id("payload"))))

	inner := template.NewTemplate(2, "Inner", "")
	inner.SetApplicationType("Inner", "")
	require.NoError(t, inner.AddInstruction(template.NewUInt32(id("z"), template.Mandatory, template.NoOperator())))

	only := template.NewTemplate(3, "OnlyDynamic", "")
	require.NoError(t, only.AddInstruction(template.NewDynamicTemplateRef(id("any"))))

	return finalized(t, outer, inner, only)
}

func TestDynamicTemplateRef_Decode(t *testing.T) {
	reg := newDynamicRegistry(t)
	_, dec := session(t, reg)

	wire := []byte{
		0xc0, 0x81, // outer presence map and template id 1
		0x85,       // n: 5
		0xc0, 0x82, // nested presence map and template id 2
		0x87,       // z: 7
	}
	got := decodeAll(t, dec, wire, 1)[0]
	require.Equal(t, 2, got.Len())

	v, ok := got.Field("payload")
	require.True(t, ok)
	group, err := v.AsGroup()
	require.NoError(t, err)
	require.Equal(t, "Inner", group.ApplicationType())
	z, _ := group.Field("z")
	n, _ := z.AsUInt32()
	require.Equal(t, uint32(7), n)
}

func TestDynamicTemplateRef_DecodeCollapsesSameApplicationType(t *testing.T) {
	outer := template.NewTemplate(1, "Outer", "")
	outer.SetApplicationType("T", "")
	require.NoError(t, outer.AddInstruction(template.NewUInt32(id("n"), template.Mandatory, template.NoOperator())))
	require.NoError(t, outer.AddInstruction(template.NewDynamicTemplateRef(id("payload"))))

	inner := template.NewTemplate(2, "Inner", "")
	inner.SetApplicationType("T", "")
	require.NoError(t, inner.AddInstruction(template.NewUInt32(id("z"), template.Mandatory, template.NoOperator())))

	_, dec := session(t, finalized(t, outer, inner))

	got := decodeAll(t, dec, []byte{0xc0, 0x81, 0x85, 0xc0, 0x82, 0x87}, 1)[0]
	requireSameFields(t, fields("T", "n", field.NewUInt32(5), "z", field.NewUInt32(7)), got)
	_, ok := got.Field("payload")
	require.False(t, ok)
}

func TestDynamicTemplateRef_EncodeAlwaysRejected(t *testing.T) {
	reg := newDynamicRegistry(t)
	enc, _ := session(t, reg)

	inner := fields("Inner", "z", field.NewUInt32(7))
	cases := map[string]struct {
		templateID uint32
		fs         field.Accessor
	}{
		"Populated":     {1, fields("Outer", "n", field.NewUInt32(5), "payload", field.NewGroup(inner))},
		"PayloadAbsent": {1, fields("Outer", "n", field.NewUInt32(5))},
		"Empty":         {3, fields("")},
		"Unrelated":     {3, fields("", "any", field.NewInt64(1))},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dst := stream.NewDestination()
			defer dst.Release()

			err := enc.EncodeMessage(dst, tc.templateID, tc.fs)
			require.ErrorIs(t, err, errs.ErrDynamicTemplateEncode)
			code, ok := errs.CodeOf(err)
			require.True(t, ok)
			require.Equal(t, errs.CodeU1, code)
			require.Zero(t, dst.Len())
		})
	}

	t.Run("Direct", func(t *testing.T) {
		dst := stream.NewDestination()
		defer dst.Release()

		err := template.NewDynamicTemplateRef(id("x")).Encode(enc, dst, pmap.New(0), fields(""))
		require.ErrorIs(t, err, errs.ErrDynamicTemplateEncode)
	})
}

func TestTemplateRef_NestingLimit(t *testing.T) {
	self := template.NewTemplate(1, "Self", "")
	self.SetApplicationType("T", "")
	require.NoError(t, self.AddInstruction(template.NewStaticTemplateRef(id("again"), "Self", "")))
	reg := finalized(t, self)

	enc, dec := session(t, reg, codec.WithMaxNesting(8))

	_, err := dec.DecodeMessage(stream.NewSource([]byte{0xc0, 0x81}))
	require.ErrorIs(t, err, errs.ErrNestingTooDeep)

	dst := stream.NewDestination()
	defer dst.Release()
	require.ErrorIs(t, enc.EncodeMessage(dst, 1, fields("T")), errs.ErrNestingTooDeep)
}

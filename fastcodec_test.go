package fastcodec

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fastcodec/block"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/format"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/stream"
	"github.com/arloliu/fastcodec/template"
)

func quoteTemplate(t *testing.T) *template.Template {
	t.Helper()

	quote := template.NewTemplate(1, "Quote", "")
	quote.SetApplicationType("Quote", "")
	require.NoError(t, quote.AddInstruction(template.NewDecimal(FieldID("price"), template.Optional, template.Delta())))
	require.NoError(t, quote.AddInstruction(template.NewUInt32(FieldID("size"), template.Mandatory, template.NoOperator())))

	return quote
}

func quote(mantissa int64, size uint32) *message.FieldSet {
	fs := message.NewTypedFieldSet("Quote", "", 2)
	fs.AddField(FieldID("price"), field.NewDecimalValue(field.NewDecimal(mantissa, -2)))
	fs.AddField(FieldID("size"), field.NewUInt32(size))

	return fs
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(quoteTemplate(t))
	require.NoError(t, err)
	require.True(t, reg.Finalized())
	require.Equal(t, 1, reg.Len())

	_, err = NewRegistry(quoteTemplate(t), quoteTemplate(t))
	require.ErrorIs(t, err, errs.ErrDuplicateTemplate)

	dangling := template.NewTemplate(2, "Dangling", "")
	require.NoError(t, dangling.AddInstruction(template.NewStaticTemplateRef(FieldID("x"), "Missing", "")))
	_, err = NewRegistryWithOptions([]template.RegistryOption{template.WithStrictCycles()}, dangling)
	require.ErrorIs(t, err, errs.ErrTemplateNotFound)
}

func TestNewSession_RoundTrip(t *testing.T) {
	reg, err := NewRegistry(quoteTemplate(t))
	require.NoError(t, err)
	enc, dec, err := NewSession(reg)
	require.NoError(t, err)

	dst := stream.NewDestination()
	defer dst.Release()
	require.NoError(t, enc.EncodeMessage(dst, 1, quote(10150, 100)))

	msg, err := dec.DecodeMessage(stream.NewSource(dst.Bytes()))
	require.NoError(t, err)
	price, ok := msg.Fields.Field("price")
	require.True(t, ok)
	require.Equal(t, "101.50", price.String())

	_, _, err = NewSession(template.NewRegistry())
	require.ErrorIs(t, err, errs.ErrRegistryNotFinalized)
}

func TestDefaultBlockWriter(t *testing.T) {
	reg, err := NewRegistry(quoteTemplate(t))
	require.NoError(t, err)
	enc, dec, err := NewSession(reg)
	require.NoError(t, err)

	w, err := NewDefaultBlockWriter()
	require.NoError(t, err)
	defer w.Release()
	for i := range 20 {
		require.NoError(t, w.Encode(enc, 1, quote(10000+int64(i), uint32(i+1))))
	}
	frames, err := w.AppendFrame(nil)
	require.NoError(t, err)

	r, err := NewBlockReader(frames)
	require.NoError(t, err)
	b, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, format.CompressionS2, b.Compression)

	n := 0
	for msg, err := range b.Messages(dec) {
		require.NoError(t, err)
		size, _ := msg.Fields.Field("size")
		got, err := size.AsUInt32()
		require.NoError(t, err)
		require.Equal(t, uint32(n+1), got)
		n++
	}
	require.Equal(t, 20, n)

	_, err = r.Next()
	require.True(t, errors.Is(err, io.EOF))

	_, err = NewBlockWriter(block.WithCompression(format.CompressionType(9)))
	require.Error(t, err)
}

package template_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fastcodec/codec"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/message"
	"github.com/arloliu/fastcodec/stream"
	"github.com/arloliu/fastcodec/template"
)

func finalized(t *testing.T, templates ...*template.Template) *template.Registry {
	t.Helper()

	reg := template.NewRegistry()
	for _, tmpl := range templates {
		require.NoError(t, reg.Add(tmpl))
	}
	require.NoError(t, reg.Finalize())

	return reg
}

func session(t *testing.T, reg *template.Registry, opts ...codec.Option) (*codec.Encoder, *codec.Decoder) {
	t.Helper()

	enc, err := codec.NewEncoder(reg, opts...)
	require.NoError(t, err)
	dec, err := codec.NewDecoder(reg, opts...)
	require.NoError(t, err)

	return enc, dec
}

func encodeAll(t *testing.T, enc *codec.Encoder, templateID uint32, msgs ...field.Accessor) []byte {
	t.Helper()

	dst := stream.NewDestination()
	defer dst.Release()
	for _, m := range msgs {
		require.NoError(t, enc.EncodeMessage(dst, templateID, m))
	}

	return append([]byte(nil), dst.Bytes()...)
}

func decodeAll(t *testing.T, dec *codec.Decoder, wire []byte, n int) []*message.FieldSet {
	t.Helper()

	src := stream.NewSource(wire)
	out := make([]*message.FieldSet, 0, n)
	for range n {
		msg, err := dec.DecodeMessage(src)
		require.NoError(t, err)
		out = append(out, msg.Fields)
	}
	require.True(t, src.Empty(), "trailing bytes after %d messages", n)

	return out
}

// fields builds a field set from alternating names and values.
func fields(appType string, kv ...any) *message.FieldSet {
	fs := message.NewTypedFieldSet(appType, "", len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fs.AddField(id(kv[i].(string)), kv[i+1].(field.Value))
	}

	return fs
}

// requireSameFields asserts that two accessors hold the same names and values in order.
func requireSameFields(t *testing.T, want, got field.Accessor) {
	t.Helper()

	require.Equal(t, want.Len(), got.Len())
	for i := range want.Len() {
		wid, wv := want.At(i)
		gid, gv := got.At(i)
		require.Equal(t, wid.Name(), gid.Name())
		require.True(t, field.Equal(wv, gv), "field %s: want %v, got %v", wid.Name(), wv, gv)
	}
}

func newLegs(entries ...field.Accessor) *message.Sequence {
	seq := message.NewSequence(id("n"), len(entries))
	for _, e := range entries {
		seq.Append(e)
	}

	return seq
}

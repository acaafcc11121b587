package stream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fastcodec/errs"
)

func encode(fn func(d *Destination)) []byte {
	d := NewDestination()
	defer d.Release()
	fn(d)

	out := make([]byte, d.Len())
	copy(out, d.Bytes())

	return out
}

func TestUnsignedStopBit(t *testing.T) {
	tests := []struct {
		value uint64
		wire  []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x81}},
		{127, []byte{0xff}},
		{128, []byte{0x01, 0x80}},
		{942755, []byte{0x39, 0x45, 0xa3}},
		{math.MaxUint32, []byte{0x0f, 0x7f, 0x7f, 0x7f, 0xff}},
	}
	for _, tt := range tests {
		wire := encode(func(d *Destination) { d.WriteUInt64(tt.value) })
		require.Equal(t, tt.wire, wire, "encode %d", tt.value)

		got, err := NewSource(wire).ReadUInt64()
		require.NoError(t, err)
		require.Equal(t, tt.value, got)
	}

	t.Run("MaxUint64", func(t *testing.T) {
		wire := encode(func(d *Destination) { d.WriteUInt64(math.MaxUint64) })
		require.Len(t, wire, 10)
		got, err := NewSource(wire).ReadUInt64()
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), got)
	})

	t.Run("Overflow", func(t *testing.T) {
		wire := []byte{0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0x7f, 0xff}
		_, err := NewSource(wire).ReadUInt64()
		require.ErrorIs(t, err, errs.ErrIntegerOverflow)
	})

	t.Run("UInt32Overflow", func(t *testing.T) {
		wire := encode(func(d *Destination) { d.WriteUInt64(math.MaxUint32 + 1) })
		_, err := NewSource(wire).ReadUInt32()
		require.ErrorIs(t, err, errs.ErrIntegerOverflow)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := NewSource([]byte{0x39, 0x45}).ReadUInt64()
		require.ErrorIs(t, err, errs.ErrInsufficientData)
	})
}

func TestSignedStopBit(t *testing.T) {
	tests := []struct {
		value int64
		wire  []byte
	}{
		{0, []byte{0x80}},
		{-1, []byte{0xff}},
		{63, []byte{0xbf}},
		{64, []byte{0x00, 0xc0}},
		{-64, []byte{0xc0}},
		{-65, []byte{0x7f, 0xbf}},
		{942755, []byte{0x39, 0x45, 0xa3}},
		{-942755, []byte{0x46, 0x3a, 0xdd}},
		{8193, []byte{0x00, 0x40, 0x81}},
		{-8193, []byte{0x7f, 0x3f, 0xff}},
	}
	for _, tt := range tests {
		wire := encode(func(d *Destination) { d.WriteInt64(tt.value) })
		require.Equal(t, tt.wire, wire, "encode %d", tt.value)

		got, err := NewSource(wire).ReadInt64()
		require.NoError(t, err)
		require.Equal(t, tt.value, got)
	}

	for _, v := range []int64{math.MaxInt64, math.MinInt64, math.MaxInt32, math.MinInt32} {
		wire := encode(func(d *Destination) { d.WriteInt64(v) })
		got, err := NewSource(wire).ReadInt64()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	t.Run("Int32Overflow", func(t *testing.T) {
		wire := encode(func(d *Destination) { d.WriteInt64(math.MaxInt32 + 1) })
		_, err := NewSource(wire).ReadInt32()
		require.ErrorIs(t, err, errs.ErrIntegerOverflow)
	})
}

func TestNullableIntegers(t *testing.T) {
	t.Run("Unsigned", func(t *testing.T) {
		wire := encode(func(d *Destination) {
			d.WriteNull()
			require.NoError(t, d.WriteNullableUInt64(0))
			require.NoError(t, d.WriteNullableUInt64(942755))
			require.ErrorIs(t, d.WriteNullableUInt64(math.MaxUint64), errs.ErrIntegerOverflow)
		})
		require.Equal(t, []byte{0x80, 0x81, 0x39, 0x45, 0xa4}, wire)

		src := NewSource(wire)
		_, null, err := src.ReadNullableUInt64()
		require.NoError(t, err)
		require.True(t, null)

		v, null, err := src.ReadNullableUInt64()
		require.NoError(t, err)
		require.False(t, null)
		require.Equal(t, uint64(0), v)

		v, _, err = src.ReadNullableUInt64()
		require.NoError(t, err)
		require.Equal(t, uint64(942755), v)
		require.True(t, src.Empty())
	})

	t.Run("Signed", func(t *testing.T) {
		wire := encode(func(d *Destination) {
			require.NoError(t, d.WriteNullableInt64(-942755))
			require.NoError(t, d.WriteNullableInt64(0))
			d.WriteNull()
		})
		require.Equal(t, []byte{0x46, 0x3a, 0xdd, 0x81, 0x80}, wire)

		src := NewSource(wire)
		v, null, err := src.ReadNullableInt64()
		require.NoError(t, err)
		require.False(t, null)
		require.Equal(t, int64(-942755), v)

		v, null, err = src.ReadNullableInt64()
		require.NoError(t, err)
		require.False(t, null)
		require.Equal(t, int64(0), v)

		_, null, err = src.ReadNullableInt64()
		require.NoError(t, err)
		require.True(t, null)
	})
}

func TestASCII(t *testing.T) {
	t.Run("Mandatory", func(t *testing.T) {
		for _, s := range []string{"", "\x00", "A", "IBM", "\x00A"} {
			wire := encode(func(d *Destination) { require.NoError(t, d.WriteASCII(s)) })
			got, err := NewSource(wire).ReadASCII()
			require.NoError(t, err)
			require.Equal(t, s, got)
		}

		require.Equal(t, []byte{0x49, 0x42, 0xcd}, encode(func(d *Destination) { _ = d.WriteASCII("IBM") }))
		require.Equal(t, []byte{0x80}, encode(func(d *Destination) { _ = d.WriteASCII("") }))
	})

	t.Run("Nullable", func(t *testing.T) {
		wire := encode(func(d *Destination) {
			d.WriteNull()
			require.NoError(t, d.WriteNullableASCII(""))
			require.NoError(t, d.WriteNullableASCII("\x00"))
			require.NoError(t, d.WriteNullableASCII("ABC"))
		})

		src := NewSource(wire)
		_, null, err := src.ReadNullableASCII()
		require.NoError(t, err)
		require.True(t, null)

		for _, want := range []string{"", "\x00", "ABC"} {
			got, null, err := src.ReadNullableASCII()
			require.NoError(t, err)
			require.False(t, null)
			require.Equal(t, want, got)
		}
	})

	t.Run("NonASCII", func(t *testing.T) {
		d := NewDestination()
		defer d.Release()
		require.ErrorIs(t, d.WriteASCII("Zürich"), errs.ErrNotEncodable)
	})

	t.Run("Unterminated", func(t *testing.T) {
		_, err := NewSource([]byte{0x41, 0x42}).ReadASCII()
		require.ErrorIs(t, err, errs.ErrInsufficientData)
	})
}

func TestByteVector(t *testing.T) {
	wire := encode(func(d *Destination) {
		d.WriteByteVector([]byte{0xde, 0xad})
		d.WriteNullableByteVector(nil)
		d.WriteNull()
	})
	require.Equal(t, []byte{0x82, 0xde, 0xad, 0x81, 0x80}, wire)

	src := NewSource(wire)
	b, err := src.ReadByteVector()
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, b)

	b, null, err := src.ReadNullableByteVector()
	require.NoError(t, err)
	require.False(t, null)
	require.Empty(t, b)

	_, null, err = src.ReadNullableByteVector()
	require.NoError(t, err)
	require.True(t, null)

	_, err = NewSource([]byte{0x85, 0x01}).ReadByteVector()
	require.ErrorIs(t, err, errs.ErrInsufficientData)
}

func TestSource_Positioning(t *testing.T) {
	src := NewSource([]byte{0x01, 0x02, 0x83})
	require.Equal(t, 3, src.Remaining())

	b, err := src.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x01), b)
	require.Equal(t, 1, src.Offset())

	raw, err := src.ReadStopBitBytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x83}, raw)
	require.True(t, src.Empty())

	_, err = src.ReadByte()
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	src.Reset([]byte{0x81})
	require.Equal(t, 0, src.Offset())
	require.False(t, src.Empty())
}

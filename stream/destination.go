package stream

import (
	"fmt"
	"math"

	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/internal/pool"
)

// Destination appends FAST primitives to a pooled byte buffer.
//
// Call Release when the destination is no longer needed to return its buffer to the pool.
// Bytes returned before Release must not be used afterwards.
type Destination struct {
	buf *pool.ByteBuffer
}

// NewDestination creates a Destination backed by a pooled segment buffer.
func NewDestination() *Destination {
	return &Destination{buf: pool.GetSegmentBuffer()}
}

// Bytes returns the encoded bytes. The slice is valid until the next write, Reset or Release.
func (d *Destination) Bytes() []byte {
	return d.buf.Bytes()
}

// Len returns the number of encoded bytes.
func (d *Destination) Len() int {
	return d.buf.Len()
}

// Reset discards the encoded bytes and keeps the buffer.
func (d *Destination) Reset() {
	d.buf.Reset()
}

// Release returns the buffer to the pool. The destination must not be used afterwards.
func (d *Destination) Release() {
	if d.buf != nil {
		pool.PutSegmentBuffer(d.buf)
		d.buf = nil
	}
}

// WriteByte appends one raw byte.
func (d *Destination) WriteByte(b byte) error {
	return d.buf.WriteByte(b)
}

// Write appends raw bytes.
func (d *Destination) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

// WriteNull appends the null marker shared by every nullable type.
func (d *Destination) WriteNull() {
	_ = d.buf.WriteByte(StopBit)
}

// WriteUInt64 appends a stop-bit encoded unsigned integer.
func (d *Destination) WriteUInt64(v uint64) {
	var tmp [10]byte
	i := len(tmp) - 1
	tmp[i] = byte(v&dataMask) | StopBit
	v >>= 7
	for v > 0 {
		i--
		tmp[i] = byte(v & dataMask)
		v >>= 7
	}
	d.buf.MustWrite(tmp[i:])
}

// WriteInt64 appends a stop-bit encoded two's complement integer using the minimal number of
// bytes that preserves the sign bit.
func (d *Destination) WriteInt64(v int64) {
	var tmp [10]byte
	i := len(tmp) - 1
	tmp[i] = byte(v&dataMask) | StopBit
	v >>= 7
	for !(v == 0 && tmp[i]&signBit == 0) && !(v == -1 && tmp[i]&signBit != 0) {
		i--
		tmp[i] = byte(v & dataMask)
		v >>= 7
	}
	d.buf.MustWrite(tmp[i:])
}

// WriteNullableUInt64 appends n as n+1. The largest uint64 has no nullable representation.
func (d *Destination) WriteNullableUInt64(v uint64) error {
	if v == math.MaxUint64 {
		return fmt.Errorf("%w: %d has no nullable encoding", errs.ErrIntegerOverflow, v)
	}
	d.WriteUInt64(v + 1)

	return nil
}

// WriteNullableInt64 appends non-negative n as n+1 and negative n unchanged.
func (d *Destination) WriteNullableInt64(v int64) error {
	if v == math.MaxInt64 {
		return fmt.Errorf("%w: %d has no nullable encoding", errs.ErrIntegerOverflow, v)
	}
	if v >= 0 {
		v++
	}
	d.WriteInt64(v)

	return nil
}

// WriteASCII appends a non-nullable ASCII string.
func (d *Destination) WriteASCII(s string) error {
	switch s {
	case "":
		d.WriteNull()
		return nil
	case "\x00":
		d.buf.MustWrite([]byte{0x00, StopBit})
		return nil
	}

	return d.writeASCIIBody(s)
}

// WriteNullableASCII appends a nullable ASCII string. Use WriteNull for the null value.
func (d *Destination) WriteNullableASCII(s string) error {
	switch s {
	case "":
		d.buf.MustWrite([]byte{0x00, StopBit})
		return nil
	case "\x00":
		d.buf.MustWrite([]byte{0x00, 0x00, StopBit})
		return nil
	}

	return d.writeASCIIBody(s)
}

func (d *Destination) writeASCIIBody(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i]&StopBit != 0 {
			return fmt.Errorf("%w: byte 0x%02x at %d is not 7-bit ASCII", errs.ErrNotEncodable, s[i], i)
		}
	}
	d.buf.Grow(len(s))
	_, _ = d.buf.WriteString(s[:len(s)-1])
	_ = d.buf.WriteByte(s[len(s)-1] | StopBit)

	return nil
}

// WriteByteVector appends a non-nullable length-prefixed byte vector.
func (d *Destination) WriteByteVector(b []byte) {
	d.WriteUInt64(uint64(len(b)))
	d.buf.MustWrite(b)
}

// WriteNullableByteVector appends a byte vector with a nullable length.
func (d *Destination) WriteNullableByteVector(b []byte) {
	d.WriteUInt64(uint64(len(b)) + 1)
	d.buf.MustWrite(b)
}

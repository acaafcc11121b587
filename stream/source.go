package stream

import (
	"fmt"
	"math"

	"github.com/arloliu/fastcodec/errs"
)

// StopBit marks the last byte of a stop-bit encoded entity.
const StopBit = 0x80

const (
	dataMask = 0x7f
	signBit  = 0x40
)

// Source reads FAST primitives from an in-memory byte slice.
//
// A Source is not safe for concurrent use. It never copies the underlying data; byte vectors
// returned by ReadBytes alias the input slice.
type Source struct {
	data []byte
	pos  int
}

// NewSource creates a Source over data.
func NewSource(data []byte) *Source {
	return &Source{data: data}
}

// Reset repositions the source at the start of data.
func (s *Source) Reset(data []byte) {
	s.data = data
	s.pos = 0
}

// Offset returns the number of bytes consumed so far.
func (s *Source) Offset() int {
	return s.pos
}

// Remaining returns the number of unread bytes.
func (s *Source) Remaining() int {
	return len(s.data) - s.pos
}

// Empty reports whether every byte has been consumed.
func (s *Source) Empty() bool {
	return s.pos >= len(s.data)
}

// ReadByte reads one byte.
func (s *Source) ReadByte() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, fmt.Errorf("%w: at offset %d", errs.ErrInsufficientData, s.pos)
	}
	b := s.data[s.pos]
	s.pos++

	return b, nil
}

// ReadBytes reads n raw bytes. The returned slice aliases the source data.
func (s *Source) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > s.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			errs.ErrInsufficientData, n, s.pos, s.Remaining())
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n

	return b, nil
}

// ReadStopBitBytes reads bytes up to and including the one carrying the stop bit.
// The returned slice aliases the source data and still carries the stop bit.
func (s *Source) ReadStopBitBytes() ([]byte, error) {
	start := s.pos
	for i := start; i < len(s.data); i++ {
		if s.data[i]&StopBit != 0 {
			s.pos = i + 1
			return s.data[start:s.pos], nil
		}
	}

	return nil, fmt.Errorf("%w: unterminated stop-bit entity at offset %d", errs.ErrInsufficientData, start)
}

// ReadUInt64 reads a stop-bit encoded unsigned integer.
func (s *Source) ReadUInt64() (uint64, error) {
	var v uint64
	for {
		b, err := s.ReadByte()
		if err != nil {
			return 0, err
		}
		if v > math.MaxUint64>>7 {
			return 0, fmt.Errorf("%w: unsigned integer exceeds 64 bits", errs.ErrIntegerOverflow)
		}
		v = v<<7 | uint64(b&dataMask)
		if b&StopBit != 0 {
			return v, nil
		}
	}
}

// ReadInt64 reads a stop-bit encoded two's complement integer.
func (s *Source) ReadInt64() (int64, error) {
	b, err := s.ReadByte()
	if err != nil {
		return 0, err
	}

	var v int64
	if b&signBit != 0 {
		v = -1
	}

	for {
		if v < math.MinInt64>>7 || v > math.MaxInt64>>7 {
			return 0, fmt.Errorf("%w: signed integer exceeds 64 bits", errs.ErrIntegerOverflow)
		}
		v = v<<7 | int64(b&dataMask)
		if b&StopBit != 0 {
			return v, nil
		}
		if b, err = s.ReadByte(); err != nil {
			return 0, err
		}
	}
}

// ReadUInt32 reads a stop-bit encoded unsigned integer that must fit in 32 bits.
func (s *Source) ReadUInt32() (uint32, error) {
	v, err := s.ReadUInt64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d exceeds uInt32", errs.ErrIntegerOverflow, v)
	}

	return uint32(v), nil
}

// ReadInt32 reads a stop-bit encoded signed integer that must fit in 32 bits.
func (s *Source) ReadInt32() (int32, error) {
	v, err := s.ReadInt64()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d exceeds int32", errs.ErrIntegerOverflow, v)
	}

	return int32(v), nil
}

// ReadNullableUInt64 reads a nullable unsigned integer: 0 is null, n+1 encodes n.
func (s *Source) ReadNullableUInt64() (v uint64, null bool, err error) {
	v, err = s.ReadUInt64()
	if err != nil {
		return 0, false, err
	}
	if v == 0 {
		return 0, true, nil
	}

	return v - 1, false, nil
}

// ReadNullableInt64 reads a nullable signed integer: 0 is null, non-negative n is sent as n+1.
func (s *Source) ReadNullableInt64() (v int64, null bool, err error) {
	v, err = s.ReadInt64()
	if err != nil {
		return 0, false, err
	}
	switch {
	case v == 0:
		return 0, true, nil
	case v > 0:
		return v - 1, false, nil
	default:
		return v, false, nil
	}
}

// ReadASCII reads a non-nullable ASCII string.
//
// A lone 0x80 is the empty string and 0x00 0x80 is the string "\x00".
func (s *Source) ReadASCII() (string, error) {
	raw, err := s.ReadStopBitBytes()
	if err != nil {
		return "", err
	}
	if raw[0] == StopBit {
		return "", nil
	}

	return asciiString(raw), nil
}

// ReadNullableASCII reads a nullable ASCII string.
//
// A lone 0x80 is null, 0x00 0x80 is the empty string and 0x00 0x00 0x80 is "\x00".
func (s *Source) ReadNullableASCII() (v string, null bool, err error) {
	raw, err := s.ReadStopBitBytes()
	if err != nil {
		return "", false, err
	}
	if raw[0] == StopBit {
		return "", true, nil
	}
	if raw[0] == 0 && len(raw) == 2 && raw[1] == StopBit {
		return "", false, nil
	}
	if raw[0] == 0 && len(raw) == 3 && raw[1] == 0 && raw[2] == StopBit {
		return "\x00", false, nil
	}

	return asciiString(raw), false, nil
}

// ReadByteVector reads a non-nullable length-prefixed byte vector.
func (s *Source) ReadByteVector() ([]byte, error) {
	n, err := s.ReadUInt32()
	if err != nil {
		return nil, err
	}

	return s.ReadBytes(int(n))
}

// ReadNullableByteVector reads a byte vector whose length is nullable.
func (s *Source) ReadNullableByteVector() (v []byte, null bool, err error) {
	n, null, err := s.ReadNullableUInt64()
	if err != nil || null {
		return nil, null, err
	}
	if n > math.MaxUint32 {
		return nil, false, fmt.Errorf("%w: byte vector length %d", errs.ErrIntegerOverflow, n)
	}
	v, err = s.ReadBytes(int(n))

	return v, false, err
}

func asciiString(raw []byte) string {
	if len(raw) == 2 && raw[0] == 0 && raw[1] == StopBit {
		return "\x00"
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)
	buf[len(buf)-1] &= dataMask

	return string(buf)
}

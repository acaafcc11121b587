package block

import (
	"fmt"

	"github.com/arloliu/fastcodec/endian"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/format"
)

// Frame layout:
//
//	magic(2) | compression(1) | flags(1) | count(4) | rawLen(4) | payloadLen(4) | checksum(8) | payload
//
// Integers use the byte order named by flags. checksum is the xxHash64 of the uncompressed
// payload, which is the plain concatenation of count encoded messages.
const (
	HeaderSize = 24

	magic0 byte = 'F'
	magic1 byte = 'B'
)

// Header describes one block frame.
type Header struct {
	Compression format.CompressionType
	Engine      endian.EndianEngine
	Count       uint32 // number of messages
	RawLen      uint32 // uncompressed payload length
	PayloadLen  uint32 // payload length on the wire
	Checksum    uint64
}

func (h *Header) append(dst []byte) []byte {
	dst = append(dst, magic0, magic1, byte(h.Compression), endian.Flag(h.Engine))
	dst = h.Engine.AppendUint32(dst, h.Count)
	dst = h.Engine.AppendUint32(dst, h.RawLen)
	dst = h.Engine.AppendUint32(dst, h.PayloadLen)

	return h.Engine.AppendUint64(dst, h.Checksum)
}

// parseHeader reads the header at the start of data.
func parseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than a header", errs.ErrInvalidBlock, len(data))
	}
	if data[0] != magic0 || data[1] != magic1 {
		return Header{}, fmt.Errorf("%w: bad magic %#02x%02x", errs.ErrInvalidBlock, data[0], data[1])
	}

	h := Header{Compression: format.CompressionType(data[2])}
	if !h.Compression.Valid() {
		return Header{}, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, h.Compression)
	}
	engine, err := endian.FromFlags(data[3])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", errs.ErrInvalidBlock, err)
	}
	h.Engine = engine
	h.Count = engine.Uint32(data[4:8])
	h.RawLen = engine.Uint32(data[8:12])
	h.PayloadLen = engine.Uint32(data[12:16])
	h.Checksum = engine.Uint64(data[16:24])

	return h, nil
}

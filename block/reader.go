package block

import (
	"fmt"
	"io"
	"iter"

	"github.com/rs/zerolog"

	"github.com/arloliu/fastcodec/codec"
	"github.com/arloliu/fastcodec/compress"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/internal/hash"
	"github.com/arloliu/fastcodec/internal/options"
	"github.com/arloliu/fastcodec/stream"
)

// Reader walks the frames of a byte slice.
type Reader struct {
	data      []byte
	off       int
	maxRawLen int
	logger    zerolog.Logger
}

// Block is one validated frame.
type Block struct {
	Header
	// Payload is the uncompressed concatenation of Count encoded messages.
	Payload []byte
}

// NewReader creates a Reader over data, which must stay unmodified while blocks read from it
// are in use.
func NewReader(data []byte, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		data:      data,
		maxRawLen: DefaultMaxRawLength,
		logger:    zerolog.Nop(),
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Next returns the next block, or io.EOF after the last one.
//
// Returns:
//   - *Block: Header and uncompressed payload
//   - error: io.EOF, errs.ErrInvalidBlock, errs.ErrUnsupportedCompression,
//     errs.ErrChecksumMismatch or a decompression error
func (r *Reader) Next() (*Block, error) {
	if r.off == len(r.data) {
		return nil, io.EOF
	}

	b, n, err := r.parse(r.data[r.off:])
	if err != nil {
		r.logger.Debug().Int("offset", r.off).Err(err).Msg("block rejected")
		return nil, fmt.Errorf("block at offset %d: %w", r.off, err)
	}
	r.off += n

	return b, nil
}

func (r *Reader) parse(data []byte) (*Block, int, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, 0, err
	}
	if int64(h.RawLen) > int64(r.maxRawLen) {
		return nil, 0, fmt.Errorf("%w: raw length %d exceeds limit %d", errs.ErrInvalidBlock, h.RawLen, r.maxRawLen)
	}
	end := HeaderSize + int(h.PayloadLen)
	if len(data) < end {
		return nil, 0, fmt.Errorf("%w: payload truncated (%d of %d bytes)", errs.ErrInvalidBlock, len(data)-HeaderSize, h.PayloadLen)
	}

	c, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, 0, err
	}
	payload, err := c.Decompress(data[HeaderSize:end], int(h.RawLen))
	if err != nil {
		return nil, 0, fmt.Errorf("decompress %s payload: %w", h.Compression, err)
	}
	if sum := hash.Sum(payload); sum != h.Checksum {
		return nil, 0, fmt.Errorf("%w: got %016x, header says %016x", errs.ErrChecksumMismatch, sum, h.Checksum)
	}

	return &Block{Header: h, Payload: payload}, end, nil
}

// Source returns a stream over the block's messages.
func (b *Block) Source() *stream.Source {
	return stream.NewSource(b.Payload)
}

// Messages decodes the block's messages with dec in order. Iteration stops after the first
// error. A block whose payload holds more or fewer than Count messages yields
// errs.ErrInvalidBlock.
func (b *Block) Messages(dec *codec.Decoder) iter.Seq2[*codec.Message, error] {
	return func(yield func(*codec.Message, error) bool) {
		src := b.Source()
		for i := range b.Count {
			if src.Empty() {
				yield(nil, fmt.Errorf("%w: payload ends after %d of %d messages", errs.ErrInvalidBlock, i, b.Count))
				return
			}
			msg, err := dec.DecodeMessage(src)
			if err != nil {
				yield(nil, fmt.Errorf("message %d: %w", i, err))
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
		if !src.Empty() {
			yield(nil, fmt.Errorf("%w: %d bytes after %d messages", errs.ErrInvalidBlock, src.Remaining(), b.Count))
		}
	}
}

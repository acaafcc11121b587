package block

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/arloliu/fastcodec/compress"
	"github.com/arloliu/fastcodec/endian"
	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/format"
	"github.com/arloliu/fastcodec/internal/hash"
	"github.com/arloliu/fastcodec/internal/options"
	"github.com/arloliu/fastcodec/internal/pool"
	"github.com/arloliu/fastcodec/stream"
)

// MessageEncoder encodes one message; *codec.Encoder implements it.
type MessageEncoder interface {
	EncodeMessage(dst *stream.Destination, templateID uint32, acc field.Accessor) error
}

// Writer accumulates encoded messages and emits them as block frames.
//
// A Writer is NOT thread-safe. Call Release when done to return its buffer to the pool.
type Writer struct {
	compression format.CompressionType
	engine      endian.EndianEngine
	maxRawLen   int
	logger      zerolog.Logger

	codec compress.Codec
	buf   *pool.ByteBuffer
	count uint32
}

// NewWriter creates a Writer.
//
// Parameters:
//   - opts: Writer options (compression, byte order, size limit, logger)
//
// Returns:
//   - *Writer: Empty writer
//   - error: Invalid option
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		compression: format.CompressionNone,
		engine:      endian.GetLittleEndianEngine(),
		maxRawLen:   DefaultMaxRawLength,
		logger:      zerolog.Nop(),
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(w.compression)
	if err != nil {
		return nil, err
	}
	w.codec = codec
	w.buf = pool.GetBlockBuffer()

	return w, nil
}

// Append adds one encoded message to the pending block.
func (w *Writer) Append(msg []byte) error {
	if w.buf.Len()+len(msg) > w.maxRawLen {
		return fmt.Errorf("%w: payload would exceed %d bytes", errs.ErrInvalidBlock, w.maxRawLen)
	}
	if w.count == math.MaxUint32 {
		return fmt.Errorf("%w: too many messages", errs.ErrInvalidBlock)
	}
	w.buf.MustWrite(msg)
	w.count++

	return nil
}

// Encode encodes one message with enc and appends it to the pending block.
func (w *Writer) Encode(enc MessageEncoder, templateID uint32, acc field.Accessor) error {
	dst := stream.NewDestination()
	defer dst.Release()

	if err := enc.EncodeMessage(dst, templateID, acc); err != nil {
		return err
	}

	return w.Append(dst.Bytes())
}

// Count returns the number of pending messages.
func (w *Writer) Count() int { return int(w.count) }

// Len returns the uncompressed length of the pending payload.
func (w *Writer) Len() int { return w.buf.Len() }

// AppendFrame appends the pending messages to dst as one frame and starts a new block.
// Nothing is appended when no message is pending.
//
// Returns:
//   - []byte: dst extended with the frame
//   - error: Compression failure; the pending messages are kept
func (w *Writer) AppendFrame(dst []byte) ([]byte, error) {
	if w.count == 0 {
		return dst, nil
	}

	raw := w.buf.Bytes()
	payload, err := w.codec.Compress(raw)
	if err != nil {
		return dst, fmt.Errorf("compress block: %w", err)
	}

	h := Header{
		Compression: w.compression,
		Engine:      w.engine,
		Count:       w.count,
		RawLen:      uint32(len(raw)),     //nolint: gosec
		PayloadLen:  uint32(len(payload)), //nolint: gosec
		Checksum:    hash.Sum(raw),
	}
	dst = h.append(dst)
	dst = append(dst, payload...)

	w.logger.Debug().
		Uint32("messages", h.Count).
		Uint32("raw_bytes", h.RawLen).
		Uint32("payload_bytes", h.PayloadLen).
		Stringer("compression", h.Compression).
		Msg("block flushed")

	w.buf.Reset()
	w.count = 0

	return dst, nil
}

// Release returns the pending buffer to the pool. The Writer must not be used afterwards.
func (w *Writer) Release() {
	pool.PutBlockBuffer(w.buf)
	w.buf = nil
}

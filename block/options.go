package block

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/fastcodec/endian"
	"github.com/arloliu/fastcodec/format"
	"github.com/arloliu/fastcodec/internal/options"
)

// DefaultMaxRawLength bounds the uncompressed payload of one block.
const DefaultMaxRawLength = 64 << 20

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*Reader]

// WithCompression sets the payload codec.
// Default is format.CompressionNone.
func WithCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if !c.Valid() {
			return fmt.Errorf("invalid compression type: %s", c)
		}
		w.compression = c

		return nil
	})
}

// WithEndian sets the byte order of the header integers.
// Default is little-endian.
func WithEndian(engine endian.EndianEngine) WriterOption {
	return options.NoError(func(w *Writer) {
		w.engine = engine
	})
}

// WithMaxRawLength sets the largest uncompressed payload the Writer accumulates; Append fails
// with errs.ErrInvalidBlock beyond it.
// Default is DefaultMaxRawLength.
func WithMaxRawLength(n int) WriterOption {
	return options.New(func(w *Writer) error {
		if n <= 0 {
			return fmt.Errorf("invalid max raw length %d: must be positive", n)
		}
		w.maxRawLen = n

		return nil
	})
}

// WithReaderMaxRawLength sets the largest uncompressed payload a frame may declare.
// Default is DefaultMaxRawLength.
func WithReaderMaxRawLength(n int) ReaderOption {
	return options.New(func(r *Reader) error {
		if n <= 0 {
			return fmt.Errorf("invalid max raw length %d: must be positive", n)
		}
		r.maxRawLen = n

		return nil
	})
}

// WithWriterLogger sets the logger receiving one debug line per flushed block.
func WithWriterLogger(logger zerolog.Logger) WriterOption {
	return options.NoError(func(w *Writer) {
		w.logger = logger
	})
}

// WithReaderLogger sets the logger receiving rejected frames at debug level.
func WithReaderLogger(logger zerolog.Logger) ReaderOption {
	return options.NoError(func(r *Reader) {
		r.logger = logger
	})
}

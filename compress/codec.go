package compress

import (
	"fmt"

	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/format"
)

// Compressor compresses a block payload: the concatenated wire form of a run of FAST
// messages.
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice may alias data (NoOpCompressor does) and is otherwise newly
	// allocated. data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload produced by the matching Compressor.
type Decompressor interface {
	// Decompress returns the original payload of data. size is the uncompressed length
	// recorded in the block header; codecs use it to size their output and reject payloads
	// that expand to a different length.
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both directions and reports the compression type it implements.
type Codec interface {
	Compressor
	Decompressor
	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for compressionType. Built-in codecs are stateless and
// safe for concurrent use.
//
// Returns:
//   - Codec: Shared codec instance
//   - error: errs.ErrUnsupportedCompression for an unknown type
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

func checkSize(codec format.CompressionType, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: decompressed %d bytes, header says %d", codec, got, want)
	}

	return nil
}

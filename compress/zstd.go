package compress

import "github.com/arloliu/fastcodec/format"

// ZstdCompressor compresses payloads with Zstandard. It trades speed for the best ratio of
// the built-in codecs, which suits archived message captures.
//
// The default build uses the pure Go klauspost/compress implementation; building with the
// gozstd tag switches to the cgo libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type implements Codec.
func (c ZstdCompressor) Type() format.CompressionType { return format.CompressionZstd }

package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/fastcodec/format"
)

// S2Compressor compresses payloads with S2.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Type implements Codec.
func (c S2Compressor) Type() format.CompressionType { return format.CompressionS2 }

// Compress compresses data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses data using S2 decompression.
func (c S2Compressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, checkSize(format.CompressionS2, 0, size)
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if err := checkSize(format.CompressionS2, n, size); err != nil {
		return nil, err
	}

	return s2.Decode(make([]byte, n), data)
}

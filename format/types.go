// Package format defines the wire enums shared by the block and compress packages.
package format

import "fmt"

// CompressionType identifies the codec applied to a block payload. It is stored in one byte
// of the block header.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // payload stored as encoded
	CompressionZstd CompressionType = 0x2 // Zstandard
	CompressionS2   CompressionType = 0x3 // S2, the Snappy-compatible klauspost codec
	CompressionLZ4  CompressionType = 0x4 // LZ4 block format
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint8(c))
	}
}

// Valid reports whether c names a known compression type.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// ParseCompressionType returns the compression type named s, case-sensitively matching the
// String form.
func ParseCompressionType(s string) (CompressionType, error) {
	for c := CompressionNone; c <= CompressionLZ4; c++ {
		if c.String() == s {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown compression type %q", s)
}

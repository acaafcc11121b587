// Package endian selects the byte order of the fixed-width integers in a block header.
//
// FAST messages themselves are byte-order free (stop-bit encoded); only the block framing
// carries fixed-width fields. Little-endian is the default:
//
//	w, err := block.NewWriter(block.WithEndian(endian.GetBigEndianEngine()))
//
// The engine is recorded in the header flags so a Reader needs no configuration.
package endian

import (
	"encoding/binary"
	"fmt"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary. It is satisfied
// by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// FlagBigEndian is the header flag bit set when the block was written big-endian.
const FlagBigEndian byte = 0x01

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine.Uint16([]byte{0x01, 0x00}) == 0x0100
}

// Flag returns the header flag bits describing engine.
func Flag(engine EndianEngine) byte {
	if IsBigEndian(engine) {
		return FlagBigEndian
	}

	return 0
}

// FromFlags returns the engine described by header flags. Bits other than FlagBigEndian
// must be clear.
func FromFlags(flags byte) (EndianEngine, error) {
	if flags&^FlagBigEndian != 0 {
		return nil, fmt.Errorf("unknown header flags %#02x", flags)
	}
	if flags&FlagBigEndian != 0 {
		return binary.BigEndian, nil
	}

	return binary.LittleEndian, nil
}

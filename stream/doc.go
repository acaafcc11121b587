// Package stream implements the byte-level primitives of the FAST transfer encoding.
//
// Integers are stop-bit encoded: seven data bits per byte, most significant group first, with
// the high bit (0x80) set on the last byte. Signed integers are two's complement and carry the
// sign in bit 0x40 of the first byte. Nullable integers shift non-negative values up by one so
// that a single 0x80 byte can represent null.
//
// ASCII strings are stop-bit encoded byte sequences. Unicode strings and byte vectors are a
// length (uInt32, nullable when the field is nullable) followed by raw bytes.
//
// Example:
//
//	dst := stream.NewDestination()
//	defer dst.Release()
//	dst.WriteUInt64(942755)        // 0x39 0x45 0xa3
//	dst.WriteInt64(-942755)        // 0x46 0x3a 0xdd
//
//	src := stream.NewSource(dst.Bytes())
//	u, _ := src.ReadUInt64()
//	i, _ := src.ReadInt64()
package stream

// Package pmap implements the FAST presence map: a bit vector recording which fields of one
// segment are present on the wire.
//
// Bits are consumed and produced in strict instruction order. On the wire the map is stop-bit
// encoded with seven bits per byte, most significant bit first. Bits past the last transmitted
// byte read as zero, so the encoder trims trailing all-zero bytes.
package pmap

import (
	"fmt"

	"github.com/arloliu/fastcodec/errs"
	"github.com/arloliu/fastcodec/stream"
)

const bitsPerByte = 7

// PresenceMap is a cursor over a presence map bit vector.
//
// The same type is used for decoding (Decode then CheckNextField) and encoding (Reset,
// SetNextField, Encode). A PresenceMap is not safe for concurrent use.
type PresenceMap struct {
	groups []byte // seven data bits per element, stop bit cleared
	pos    int    // next bit to read or write
	size   int    // number of bits written while encoding
}

// New creates an empty presence map sized for bits bits.
func New(bits int) *PresenceMap {
	pm := &PresenceMap{}
	pm.Reset(bits)

	return pm
}

// Reset clears the map and pre-sizes it for bits bits.
func (pm *PresenceMap) Reset(bits int) {
	n := (bits + bitsPerByte - 1) / bitsPerByte
	if n < 1 {
		n = 1
	}
	if cap(pm.groups) < n {
		pm.groups = make([]byte, n)
	} else {
		pm.groups = pm.groups[:n]
		clear(pm.groups)
	}
	pm.pos = 0
	pm.size = 0
}

// Decode reads a stop-bit encoded presence map from src and rewinds the cursor.
//
// maxBytes limits the accepted length; zero means unlimited. A longer map fails with
// errs.ErrInvalidPresenceMap.
func (pm *PresenceMap) Decode(src *stream.Source, maxBytes int) error {
	raw, err := src.ReadStopBitBytes()
	if err != nil {
		return fmt.Errorf("presence map: %w", err)
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit %d", errs.ErrInvalidPresenceMap, len(raw), maxBytes)
	}

	if cap(pm.groups) < len(raw) {
		pm.groups = make([]byte, len(raw))
	} else {
		pm.groups = pm.groups[:len(raw)]
	}
	for i, b := range raw {
		pm.groups[i] = b &^ stream.StopBit
	}
	pm.pos = 0
	pm.size = len(raw) * bitsPerByte

	return nil
}

// CheckNextField consumes the next bit and reports whether it is set.
// Bits past the transmitted map read as false.
func (pm *PresenceMap) CheckNextField() bool {
	idx := pm.pos / bitsPerByte
	mask := byte(0x40) >> (pm.pos % bitsPerByte)
	pm.pos++
	if idx >= len(pm.groups) {
		return false
	}

	return pm.groups[idx]&mask != 0
}

// SetNextField appends one bit.
func (pm *PresenceMap) SetNextField(present bool) {
	idx := pm.pos / bitsPerByte
	if idx >= len(pm.groups) {
		pm.groups = append(pm.groups, make([]byte, idx-len(pm.groups)+1)...)
	}
	if present {
		pm.groups[idx] |= byte(0x40) >> (pm.pos % bitsPerByte)
	}
	pm.pos++
	pm.size = pm.pos
}

// Encode writes the map to dst, trimming trailing all-zero bytes. At least one byte is written.
func (pm *PresenceMap) Encode(dst *stream.Destination) {
	last := 0
	for i := len(pm.groups) - 1; i > 0; i-- {
		if pm.groups[i] != 0 {
			last = i
			break
		}
	}

	for i := 0; i < last; i++ {
		_ = dst.WriteByte(pm.groups[i])
	}
	_ = dst.WriteByte(pm.groups[last] | stream.StopBit)
}

// String renders the written or decoded bits, e.g. "1011".
func (pm *PresenceMap) String() string {
	n := pm.size
	if n == 0 {
		n = len(pm.groups) * bitsPerByte
	}
	out := make([]byte, n)
	for i := range out {
		if pm.groups[i/bitsPerByte]&(byte(0x40)>>(i%bitsPerByte)) != 0 {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}

	return string(out)
}

// Package hash provides the xxHash64 helpers used for dictionary keys and block checksums.
package hash

import "github.com/cespare/xxhash/v2"

// separator joins the parts of a qualified key. It cannot appear in template names.
const separator = "\x00"

// Qualified computes the xxHash64 of parts joined by a NUL separator.
//
// Joining with a separator keeps ("ab", "c") and ("a", "bc") distinct.
func Qualified(parts ...string) uint64 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.WriteString(separator)
		}
		_, _ = d.WriteString(p)
	}

	return d.Sum64()
}

// Sum computes the xxHash64 of a byte slice.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

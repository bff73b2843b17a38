// Package types defines the core parachain data structures shared by the
// witness trie, the storage view and the validation orchestrator.
package types

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the byte length of all digests in the system. The storage
// root contract is hard-wired to this length.
const HashLength = 32

// Hash is a 32-byte Blake2b-256 digest.
type Hash [HashLength]byte

// BytesToHash converts a byte slice to a Hash, left-padding when the slice
// is shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash parses a hex string (with optional 0x prefix) into a Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex representation.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes assigns the hash from a byte slice, keeping the rightmost 32
// bytes when the input is longer.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero reports whether the hash is the all-zero value. The all-zero hash
// doubles as the "root computation failed" sentinel and is never a
// legitimate storage root.
func (h Hash) IsZero() bool { return h == Hash{} }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// fromHex decodes a hex string, stripping an optional "0x" prefix.
func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

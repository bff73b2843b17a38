package trie

// Hex-prefix encoding of nibble paths. Trie keys travel in three forms:
// raw key bytes at the API boundary, hex nibbles (one byte per nibble, with
// a 0x10 terminator marking leaf keys) inside the in-memory nodes, and
// compact hex-prefix bytes inside serialized nodes. The compact form packs
// two flag bits into the first byte: leaf/extension and odd/even length.

const nibbleTerminator = 16

// hexToCompact packs a nibble path into hex-prefix bytes. The terminator,
// if present, becomes the leaf flag.
func hexToCompact(nibbles []byte) []byte {
	term := byte(0)
	if hasTerminator(nibbles) {
		term = 1
		nibbles = nibbles[:len(nibbles)-1]
	}
	out := make([]byte, len(nibbles)/2+1)
	out[0] = term << 5
	if len(nibbles)&1 == 1 {
		out[0] |= 1<<4 | nibbles[0]
		nibbles = nibbles[1:]
	}
	packNibbles(nibbles, out[1:])
	return out
}

// compactToHex unpacks hex-prefix bytes into a nibble path, restoring the
// terminator for leaf keys.
func compactToHex(compact []byte) []byte {
	if len(compact) == 0 {
		return compact
	}
	nibbles := keyToNibbles(compact)
	nibbles = nibbles[:len(nibbles)-1] // drop terminator added by keyToNibbles
	flags := nibbles[0]
	// Even-length paths carry a padding nibble after the flags nibble.
	skip := 2 - int(flags&1)
	if flags&2 != 0 {
		out := make([]byte, len(nibbles)-skip+1)
		copy(out, nibbles[skip:])
		out[len(out)-1] = nibbleTerminator
		return out
	}
	return nibbles[skip:]
}

// keyToNibbles expands raw key bytes into nibbles and appends the
// terminator.
func keyToNibbles(key []byte) []byte {
	out := make([]byte, len(key)*2+1)
	for i, b := range key {
		out[i*2] = b >> 4
		out[i*2+1] = b & 0x0f
	}
	out[len(out)-1] = nibbleTerminator
	return out
}

// packNibbles packs nibble pairs into bytes. len(nibbles) must be even.
func packNibbles(nibbles, out []byte) {
	for i := 0; i < len(nibbles); i += 2 {
		out[i/2] = nibbles[i]<<4 | nibbles[i+1]
	}
}

// hasTerminator reports whether the nibble path ends in the terminator.
func hasTerminator(nibbles []byte) bool {
	return len(nibbles) > 0 && nibbles[len(nibbles)-1] == nibbleTerminator
}

// commonPrefixLen returns the length of the shared prefix of a and b.
func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

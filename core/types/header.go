package types

import (
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// Header is a parachain block header. Digest logs are carried as opaque
// byte strings; their interpretation belongs to the consensus layer, not to
// state-proof validation.
type Header struct {
	ParentHash     Hash
	Number         uint64
	StateRoot      Hash
	ExtrinsicsRoot Hash
	Digest         [][]byte

	// Cache field, not serialized.
	hash atomic.Pointer[Hash]
}

// Hash returns the Blake2b-256 digest of the SCALE-encoded header.
func (h *Header) Hash() Hash {
	if cached := h.hash.Load(); cached != nil {
		return *cached
	}
	hash := Hash(blake2b.Sum256(h.EncodeSCALE()))
	h.hash.Store(&hash)
	return hash
}

// copyHeader deep-copies a header, dropping the hash cache.
func copyHeader(h *Header) *Header {
	if h == nil {
		return nil
	}
	cp := &Header{
		ParentHash:     h.ParentHash,
		Number:         h.Number,
		StateRoot:      h.StateRoot,
		ExtrinsicsRoot: h.ExtrinsicsRoot,
	}
	if h.Digest != nil {
		cp.Digest = make([][]byte, len(h.Digest))
		for i, log := range h.Digest {
			cp.Digest[i] = append([]byte(nil), log...)
		}
	}
	return cp
}

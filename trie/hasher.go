package trie

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/paraverify/paraverify/crypto"
)

// Node serialization uses RLP framing: a shortNode is a 2-element list
// [compactKey, val] and a fullNode a 17-element list [child0..child15,
// value]. Encodings shorter than 32 bytes are embedded inline in their
// parent instead of being stored by hash, exactly as in the Ethereum trie,
// except that the digest function here is Blake2b-256.

// hasher folds a dirty node tree into hash references, collecting the
// encoded nodes it produces.
type hasher struct {
	onNode func(hash []byte, enc []byte) // invoked for every stored node
}

// hash collapses n into a hashNode (or an inline node when small), caching
// computed hashes on the tree. force hashes the node even when its encoding
// is short; it is set for the root.
func (h *hasher) hash(n node, force bool) (node, node, error) {
	if hash, dirty := n.cache(); hash != nil && !dirty {
		return hash, n, nil
	}
	collapsed, cached, err := h.hashChildren(n)
	if err != nil {
		return nil, nil, err
	}
	hashed, err := h.store(collapsed, force)
	if err != nil {
		return nil, nil, err
	}
	if hn, ok := hashed.(hashNode); ok {
		switch cn := cached.(type) {
		case *shortNode:
			cn.flags.hash = hn
			cn.flags.dirty = false
		case *fullNode:
			cn.flags.hash = hn
			cn.flags.dirty = false
		}
	}
	return hashed, cached, nil
}

// hashChildren replaces the children of n with their hashes or inline
// encodings, returning a collapsed copy for serialization and a cached copy
// for continued in-memory use.
func (h *hasher) hashChildren(original node) (node, node, error) {
	switch n := original.(type) {
	case *shortNode:
		collapsed, cached := n.copy(), n.copy()
		collapsed.Key = hexToCompact(n.Key)
		if _, ok := n.Val.(valueNode); !ok {
			childH, childC, err := h.hash(n.Val, false)
			if err != nil {
				return nil, nil, err
			}
			collapsed.Val = childH
			cached.Val = childC
		}
		return collapsed, cached, nil
	case *fullNode:
		collapsed, cached := n.copy(), n.copy()
		for i := 0; i < 16; i++ {
			if n.Children[i] == nil {
				continue
			}
			childH, childC, err := h.hash(n.Children[i], false)
			if err != nil {
				return nil, nil, err
			}
			collapsed.Children[i] = childH
			cached.Children[i] = childC
		}
		return collapsed, cached, nil
	default:
		return original, original, nil
	}
}

// store serializes a collapsed node. Encodings of 32 bytes or more (or the
// forced root) are hashed, reported through onNode, and replaced by their
// hash reference; shorter encodings stay inline.
func (h *hasher) store(n node, force bool) (node, error) {
	switch n.(type) {
	case hashNode, valueNode:
		return n, nil
	}
	enc, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	if len(enc) < 32 && !force {
		return n, nil
	}
	digest := crypto.Blake2b256(enc)
	if h.onNode != nil {
		h.onNode(digest, enc)
	}
	return hashNode(digest), nil
}

// encodeNode serializes a collapsed node (keys already in compact form).
func encodeNode(n node) ([]byte, error) {
	switch n := n.(type) {
	case *shortNode:
		keyEnc, err := rlp.EncodeToBytes(n.Key)
		if err != nil {
			return nil, err
		}
		valEnc, err := encodeChild(n.Val)
		if err != nil {
			return nil, err
		}
		return wrapList(append(keyEnc, valEnc...)), nil
	case *fullNode:
		var payload []byte
		for i := 0; i < 17; i++ {
			enc, err := encodeChild(n.Children[i])
			if err != nil {
				return nil, err
			}
			payload = append(payload, enc...)
		}
		return wrapList(payload), nil
	case hashNode:
		return []byte(n), nil
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	default:
		return nil, errDecodeInvalid
	}
}

// encodeChild serializes a node for embedding in its parent's list. Empty
// slots become the RLP empty string; small nodes embed their raw encoding.
func encodeChild(n node) ([]byte, error) {
	if n == nil {
		return []byte{0x80}, nil
	}
	switch n := n.(type) {
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	case hashNode:
		return rlp.EncodeToBytes([]byte(n))
	case *shortNode, *fullNode:
		return encodeNode(n)
	default:
		return []byte{0x80}, nil
	}
}

// wrapList prefixes payload with an RLP list header.
func wrapList(payload []byte) []byte {
	n := len(payload)
	if n <= 55 {
		return append([]byte{0xc0 + byte(n)}, payload...)
	}
	var lenBytes []byte
	for v := uint64(n); v > 0; v >>= 8 {
		lenBytes = append([]byte{byte(v)}, lenBytes...)
	}
	out := append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
	return append(out, payload...)
}

// Package trie implements a base-16 Merkle Patricia trie over a
// content-addressed node store. Nodes are referenced by Blake2b-256 hash and
// resolved lazily, which lets the trie operate over a partial witness set:
// only the nodes a traversal actually touches need to be present.
package trie

// node is the in-memory representation of a trie node. hashNode references
// are resolved on demand through the backing NodeDatabase.
type node interface {
	cache() (hashNode, bool)
}

// nodeFlag caches the hash of a node and tracks whether it has been
// modified since it was last hashed.
type nodeFlag struct {
	hash  hashNode
	dirty bool
}

// shortNode is a leaf (terminated key, value child) or an extension
// (unterminated key, node child). Key is in hex-nibble form.
type shortNode struct {
	Key   []byte
	Val   node
	flags nodeFlag
}

// fullNode is a branch with sixteen nibble children plus a value slot at
// index 16.
type fullNode struct {
	Children [17]node
	flags    nodeFlag
}

// hashNode is an unresolved reference to a node stored by hash.
type hashNode []byte

// valueNode holds raw value bytes at a leaf or branch value slot.
type valueNode []byte

func (n *shortNode) cache() (hashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n *fullNode) cache() (hashNode, bool)  { return n.flags.hash, n.flags.dirty }
func (n hashNode) cache() (hashNode, bool)   { return nil, true }
func (n valueNode) cache() (hashNode, bool)  { return nil, true }

func (n *shortNode) copy() *shortNode {
	cp := *n
	return &cp
}

func (n *fullNode) copy() *fullNode {
	cp := *n
	return &cp
}

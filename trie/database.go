package trie

import (
	"errors"

	"github.com/paraverify/paraverify/core/types"
	"github.com/paraverify/paraverify/crypto"
)

var (
	// ErrNodeMissing is returned when a referenced trie node cannot be
	// found. Over a partial witness set this is an expected condition on
	// untouched paths, not a corruption signal.
	ErrNodeMissing = errors.New("trie: node not found in database")
)

// NodeReader retrieves serialized trie nodes by hash.
type NodeReader interface {
	Node(hash types.Hash) ([]byte, error)
}

// NodeWriter stores serialized trie nodes by hash.
type NodeWriter interface {
	Put(hash types.Hash, data []byte) error
}

// NodeDatabase is a content-addressed trie node store: every blob is keyed
// by its Blake2b-256 hash. Repeated insertion of the same blob bumps a
// reference count instead of erroring. An optional backing reader serves
// nodes not present in memory.
//
// The database is deliberately lock-free: the validation engine is
// single-threaded and a database lives for exactly one call.
type NodeDatabase struct {
	nodes map[types.Hash][]byte
	refs  map[types.Hash]int
	disk  NodeReader // nil for memory-only operation
}

// NewNodeDatabase creates an empty in-memory node database.
func NewNodeDatabase() *NodeDatabase {
	return &NodeDatabase{
		nodes: make(map[types.Hash][]byte),
		refs:  make(map[types.Hash]int),
	}
}

// NewBackedNodeDatabase creates a node database that falls back to the
// given reader for nodes absent from memory.
func NewBackedNodeDatabase(disk NodeReader) *NodeDatabase {
	db := NewNodeDatabase()
	db.disk = disk
	return db
}

// Insert stores a blob keyed by its content hash and returns that hash.
func (db *NodeDatabase) Insert(blob []byte) types.Hash {
	hash := crypto.Blake2b256Hash(blob)
	if _, ok := db.nodes[hash]; !ok {
		db.nodes[hash] = append([]byte(nil), blob...)
	}
	db.refs[hash]++
	return hash
}

// InsertNode stores a blob under an externally computed hash. Used by trie
// commits, where the hash is already known.
func (db *NodeDatabase) InsertNode(hash types.Hash, data []byte) {
	if _, ok := db.nodes[hash]; !ok {
		db.nodes[hash] = append([]byte(nil), data...)
	}
	db.refs[hash]++
}

// Node retrieves a blob by hash, consulting the backing reader when the
// blob is not held in memory.
func (db *NodeDatabase) Node(hash types.Hash) ([]byte, error) {
	if hash.IsZero() {
		return nil, ErrNodeMissing
	}
	if data, ok := db.nodes[hash]; ok {
		return data, nil
	}
	if db.disk != nil {
		return db.disk.Node(hash)
	}
	return nil, ErrNodeMissing
}

// Contains reports whether a node with the given hash is available.
func (db *NodeDatabase) Contains(hash types.Hash) bool {
	if _, ok := db.nodes[hash]; ok {
		return true
	}
	if db.disk != nil {
		if _, err := db.disk.Node(hash); err == nil {
			return true
		}
	}
	return false
}

// RefCount returns how many times a node has been inserted.
func (db *NodeDatabase) RefCount(hash types.Hash) int { return db.refs[hash] }

// NodeCount returns the number of distinct in-memory nodes.
func (db *NodeDatabase) NodeCount() int { return len(db.nodes) }

// Commit writes every in-memory node to the given writer. The in-memory
// set is left intact; the witness engine never persists, but alternate
// backends use this to materialize a trie.
func (db *NodeDatabase) Commit(w NodeWriter) error {
	for hash, data := range db.nodes {
		if err := w.Put(hash, data); err != nil {
			return err
		}
	}
	return nil
}

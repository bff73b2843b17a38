// Package witness implements the storage view used when validating a block
// without a state database: a content-addressed set of trie nodes proving
// the relevant parent state, combined with an in-memory overlay that
// captures every write the block execution performs.
package witness

import (
	"errors"

	"github.com/paraverify/paraverify/core/types"
	"github.com/paraverify/paraverify/trie"
)

// ErrRootMismatch is returned when the claimed pre-state root is not among
// the supplied witness nodes. Nothing is readable in that case, so no
// storage view is constructed.
var ErrRootMismatch = errors.New("witness: storage root not found in witness data")

// overlayEntry is a pending write. A nil value with deleted set is a
// tombstone; the key's absence from the overlay map means "never touched".
type overlayEntry struct {
	value   []byte
	deleted bool
}

// Storage is an overlay-backed view over a witness trie. Reads prefer the
// overlay and fall back to the trie; writes only ever touch the overlay.
// A Storage lives for exactly one validation call and is not safe for
// concurrent use; the validation engine is single-threaded by contract.
type Storage struct {
	db      *trie.NodeDatabase
	root    types.Hash
	overlay map[string]overlayEntry
}

// NewStorage loads the witness nodes into a content-addressed store and
// verifies that the claimed root is among them. Duplicate nodes in the
// bundle are reference-counted, not rejected. The check happens before any
// read or write is possible; on failure no view exists.
func NewStorage(witnessNodes [][]byte, root types.Hash) (*Storage, error) {
	db := trie.NewNodeDatabase()
	for _, blob := range witnessNodes {
		db.Insert(blob)
	}
	if !db.Contains(root) {
		return nil, ErrRootMismatch
	}
	return &Storage{
		db:      db,
		root:    root,
		overlay: make(map[string]overlayEntry),
	}, nil
}

// Get returns the value stored under key and whether it is present. An
// overlay tombstone hides any trie value; an overlay value wins outright;
// otherwise the witness trie is consulted.
//
// A trie path that cannot be completed because the witness set is partial
// reads as absent. This deliberately trades error reporting for progress:
// an incomplete proof is indistinguishable from a legitimately empty key.
func (s *Storage) Get(key []byte) ([]byte, bool) {
	if entry, ok := s.overlay[string(key)]; ok {
		if entry.deleted {
			return nil, false
		}
		return entry.value, true
	}
	t, err := trie.OpenAt(s.db, s.root)
	if err != nil {
		return nil, false
	}
	value, err := t.Get(key)
	if err != nil {
		// ErrNotFound and ErrNodeMissing both read as absent.
		return nil, false
	}
	return value, true
}

// Insert records a pending write for key. The witness trie is untouched.
func (s *Storage) Insert(key, value []byte) {
	s.overlay[string(key)] = overlayEntry{value: append([]byte(nil), value...)}
}

// Remove records a tombstone for key, hiding any trie value.
func (s *Storage) Remove(key []byte) {
	s.overlay[string(key)] = overlayEntry{deleted: true}
}

// StorageRoot applies the pending overlay writes onto the witness trie and
// returns the resulting root. On success the overlay is drained, the writes
// now committed. The held base root is intentionally not advanced: a
// subsequent call recomputes from the same base with the now-empty overlay.
//
// On any failure during delta application the all-zero hash is returned.
// Callers must treat that sentinel as "computation failed"; it is never a
// valid root.
func (s *Storage) StorageRoot() types.Hash {
	deltas := make([]trie.Delta, 0, len(s.overlay))
	for key, entry := range s.overlay {
		deltas = append(deltas, trie.Delta{
			Key:    []byte(key),
			Value:  entry.value,
			Delete: entry.deleted,
		})
	}
	root, err := trie.DeltaRoot(s.db, s.root, deltas)
	if err != nil {
		return types.Hash{}
	}
	s.overlay = make(map[string]overlayEntry)
	return root
}

// Database exposes the underlying node store, mainly for tests that need
// to inspect the witness set.
func (s *Storage) Database() *trie.NodeDatabase { return s.db }

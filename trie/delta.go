package trie

import (
	"fmt"

	"github.com/paraverify/paraverify/core/types"
)

// Delta is a single pending write: an insertion when Delete is false, a
// removal when it is true.
type Delta struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// DeltaRoot applies a batch of deltas to the trie rooted at root and
// returns the resulting root hash. New nodes produced by the application
// are stored in the database; the original nodes are never modified, so the
// old root remains fully readable afterwards.
//
// Any failure (unresolvable root, a write path crossing a node absent
// from the database) aborts the computation and returns an error. Partial
// application is never surfaced.
func DeltaRoot(db *NodeDatabase, root types.Hash, deltas []Delta) (types.Hash, error) {
	t, err := OpenAt(db, root)
	if err != nil {
		return types.Hash{}, fmt.Errorf("trie: delta base: %w", err)
	}
	for _, d := range deltas {
		if d.Delete {
			err = t.Delete(d.Key)
		} else {
			err = t.Put(d.Key, d.Value)
		}
		if err != nil {
			return types.Hash{}, fmt.Errorf("trie: delta apply %x: %w", d.Key, err)
		}
	}
	return t.Commit()
}

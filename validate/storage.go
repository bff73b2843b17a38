package validate

import "github.com/paraverify/paraverify/core/types"

// Storage is the view the host bindings operate against during one
// validation call. witness.Storage is the production implementation; tests
// substitute their own.
type Storage interface {
	// Get returns the value under key and whether it is present.
	Get(key []byte) ([]byte, bool)

	// Insert records a write for key.
	Insert(key, value []byte)

	// Remove records a deletion for key.
	Remove(key []byte)

	// StorageRoot computes the root over the current state, returning the
	// all-zero hash on failure.
	StorageRoot() types.Hash
}

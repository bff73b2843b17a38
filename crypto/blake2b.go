// Package crypto provides the Blake2b-256 hashing helpers used throughout
// the witness trie and block validation.
package crypto

import (
	"github.com/paraverify/paraverify/core/types"
	"golang.org/x/crypto/blake2b"
)

// Blake2b256 calculates the Blake2b-256 hash of the concatenated inputs.
func Blake2b256(data ...[]byte) []byte {
	d, _ := blake2b.New256(nil)
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Blake2b256Hash calculates Blake2b-256 and returns it as a types.Hash.
func Blake2b256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Blake2b256(data...))
}

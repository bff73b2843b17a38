package trie

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/paraverify/paraverify/core/types"
)

// nodeKeyPrefix namespaces trie nodes in the key-value store.
var nodeKeyPrefix = []byte("n")

// LevelDBStore is a disk-backed trie node store. The witness engine itself
// never persists anything; this backend exists for hosts that keep a real
// node database and want to serve the same NodeReader/NodeWriter surface
// the in-memory witness store provides.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDBStore opens (or creates) a node store at the given path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("trie: open leveldb store: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

// Node retrieves a serialized node by hash.
func (s *LevelDBStore) Node(hash types.Hash) ([]byte, error) {
	data, err := s.db.Get(append(nodeKeyPrefix, hash[:]...), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrNodeMissing
		}
		return nil, fmt.Errorf("trie: leveldb get: %w", err)
	}
	return data, nil
}

// Put stores a serialized node under its hash.
func (s *LevelDBStore) Put(hash types.Hash, data []byte) error {
	if err := s.db.Put(append(nodeKeyPrefix, hash[:]...), data, nil); err != nil {
		return fmt.Errorf("trie: leveldb put: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

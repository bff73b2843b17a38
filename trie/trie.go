package trie

import (
	"errors"
	"fmt"

	"github.com/paraverify/paraverify/core/types"
	"github.com/paraverify/paraverify/crypto"
)

var (
	// ErrNotFound is returned by Get when the key is provably absent from
	// the trie.
	ErrNotFound = errors.New("trie: key not found")
)

// EmptyRoot is the root hash of an empty trie: the Blake2b-256 digest of
// the RLP empty string.
var EmptyRoot = crypto.Blake2b256Hash([]byte{0x80})

// Trie is a Merkle Patricia trie rooted at a node in a NodeDatabase. Hash
// references are resolved lazily, so a trie can be opened over a partial
// node set and remains usable on every path the set covers.
type Trie struct {
	db   *NodeDatabase
	root node
}

// NewEmpty creates an empty trie over the given database.
func NewEmpty(db *NodeDatabase) *Trie {
	return &Trie{db: db}
}

// OpenAt opens the trie rooted at the given hash. The root node itself must
// be resolvable; deeper nodes are only resolved when a traversal reaches
// them.
func OpenAt(db *NodeDatabase, root types.Hash) (*Trie, error) {
	if root == EmptyRoot || root.IsZero() {
		return NewEmpty(db), nil
	}
	if !db.Contains(root) {
		return nil, fmt.Errorf("%w: root %s", ErrNodeMissing, root)
	}
	return &Trie{db: db, root: hashNode(root.Bytes())}, nil
}

// Get retrieves the value stored under key. It returns ErrNotFound when the
// trie provably holds no value for the key, and ErrNodeMissing when the
// traversal dead-ends on a node absent from the database (an incomplete
// witness path).
func (t *Trie) Get(key []byte) ([]byte, error) {
	value, newroot, resolved, err := t.get(t.root, keyToNibbles(key), 0)
	if err != nil {
		return nil, err
	}
	if resolved {
		t.root = newroot
	}
	if value == nil {
		return nil, ErrNotFound
	}
	return value, nil
}

func (t *Trie) get(n node, key []byte, pos int) ([]byte, node, bool, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, false, nil
	case valueNode:
		return []byte(n), n, false, nil
	case *shortNode:
		if len(key)-pos < len(n.Key) || !bytesEqual(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		value, newChild, resolved, err := t.get(n.Val, key, pos+len(n.Key))
		if err != nil {
			return nil, n, false, err
		}
		if resolved {
			n = n.copy()
			n.Val = newChild
		}
		return value, n, resolved, nil
	case *fullNode:
		value, newChild, resolved, err := t.get(n.Children[key[pos]], key, pos+1)
		if err != nil {
			return nil, n, false, err
		}
		if resolved {
			n = n.copy()
			n.Children[key[pos]] = newChild
		}
		return value, n, resolved, nil
	case hashNode:
		child, err := t.resolve(n)
		if err != nil {
			return nil, n, false, err
		}
		value, newChild, _, err := t.get(child, key, pos)
		return value, newChild, true, err
	default:
		panic(fmt.Sprintf("trie: invalid node type %T", n))
	}
}

// Put stores value under key. A resolution failure along the insertion path
// is returned as an error; the trie is left unchanged in that case.
func (t *Trie) Put(key, value []byte) error {
	nibbles := keyToNibbles(key)
	if len(value) == 0 {
		return t.Delete(key)
	}
	newRoot, err := t.insert(t.root, nibbles, valueNode(append([]byte(nil), value...)))
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

func (t *Trie) insert(n node, key []byte, value node) (node, error) {
	if len(key) == 0 {
		return value, nil
	}
	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value, flags: nodeFlag{dirty: true}}, nil

	case *shortNode:
		matchlen := commonPrefixLen(key, n.Key)
		// Whole key segment matches: descend.
		if matchlen == len(n.Key) {
			child, err := t.insert(n.Val, key[matchlen:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}
		// Paths diverge: branch at the first mismatching nibble.
		branch := &fullNode{flags: nodeFlag{dirty: true}}
		existing, err := t.insert(nil, n.Key[matchlen+1:], n.Val)
		if err != nil {
			return nil, err
		}
		branch.Children[n.Key[matchlen]] = existing
		inserted, err := t.insert(nil, key[matchlen+1:], value)
		if err != nil {
			return nil, err
		}
		branch.Children[key[matchlen]] = inserted
		if matchlen == 0 {
			return branch, nil
		}
		return &shortNode{Key: key[:matchlen], Val: branch, flags: nodeFlag{dirty: true}}, nil

	case *fullNode:
		child, err := t.insert(n.Children[key[0]], key[1:], value)
		if err != nil {
			return nil, err
		}
		n = n.copy()
		n.flags = nodeFlag{dirty: true}
		n.Children[key[0]] = child
		return n, nil

	case hashNode:
		resolved, err := t.resolve(n)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, key, value)

	default:
		panic(fmt.Sprintf("trie: invalid node type %T", n))
	}
}

// Delete removes the value stored under key. Deleting an absent key is a
// no-op; a resolution failure is returned as an error.
func (t *Trie) Delete(key []byte) error {
	_, newRoot, err := t.remove(t.root, keyToNibbles(key))
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// remove returns whether the trie changed along with the replacement node.
func (t *Trie) remove(n node, key []byte) (bool, node, error) {
	switch n := n.(type) {
	case nil:
		return false, nil, nil

	case valueNode:
		return true, nil, nil

	case *shortNode:
		matchlen := commonPrefixLen(key, n.Key)
		if matchlen < len(n.Key) {
			return false, n, nil
		}
		if matchlen == len(key) {
			// The key terminates exactly at this leaf.
			return true, nil, nil
		}
		dirty, child, err := t.remove(n.Val, key[len(n.Key):])
		if err != nil || !dirty {
			return false, n, err
		}
		switch child := child.(type) {
		case *shortNode:
			// Merge the surviving child into this node to keep the trie in
			// canonical form.
			merged := append(append([]byte(nil), n.Key...), child.Key...)
			return true, &shortNode{Key: merged, Val: child.Val, flags: nodeFlag{dirty: true}}, nil
		case nil:
			return true, nil, nil
		default:
			return true, &shortNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}

	case *fullNode:
		dirty, child, err := t.remove(n.Children[key[0]], key[1:])
		if err != nil || !dirty {
			return false, n, err
		}
		n = n.copy()
		n.flags = nodeFlag{dirty: true}
		n.Children[key[0]] = child

		// If the branch still has two or more occupied slots it stays.
		// With exactly one, it collapses into a short node.
		remaining := -1
		for i, c := range n.Children {
			if c == nil {
				continue
			}
			if remaining != -1 {
				return true, n, nil
			}
			remaining = i
		}
		if remaining == -1 {
			return true, nil, nil
		}
		if remaining == 16 {
			return true, &shortNode{
				Key:   []byte{nibbleTerminator},
				Val:   n.Children[16],
				flags: nodeFlag{dirty: true},
			}, nil
		}
		// The survivor may itself be a short node; merging requires its
		// contents, so an unresolvable survivor fails the delete.
		survivor := n.Children[remaining]
		if hn, ok := survivor.(hashNode); ok {
			resolved, err := t.resolve(hn)
			if err != nil {
				return false, nil, err
			}
			survivor = resolved
		}
		if sn, ok := survivor.(*shortNode); ok {
			merged := append([]byte{byte(remaining)}, sn.Key...)
			return true, &shortNode{Key: merged, Val: sn.Val, flags: nodeFlag{dirty: true}}, nil
		}
		return true, &shortNode{
			Key:   []byte{byte(remaining)},
			Val:   survivor,
			flags: nodeFlag{dirty: true},
		}, nil

	case hashNode:
		resolved, err := t.resolve(n)
		if err != nil {
			return false, nil, err
		}
		return t.remove(resolved, key)

	default:
		panic(fmt.Sprintf("trie: invalid node type %T", n))
	}
}

// Commit hashes the trie, stores every newly produced node in the database
// and returns the root hash. The root is always stored by hash, even when
// its encoding is short.
func (t *Trie) Commit() (types.Hash, error) {
	if t.root == nil {
		return EmptyRoot, nil
	}
	h := &hasher{onNode: func(hash, enc []byte) {
		t.db.InsertNode(types.BytesToHash(hash), enc)
	}}
	hashed, cached, err := h.hash(t.root, true)
	if err != nil {
		return types.Hash{}, err
	}
	t.root = cached
	hn, ok := hashed.(hashNode)
	if !ok {
		return types.Hash{}, fmt.Errorf("trie: commit produced non-hash root %T", hashed)
	}
	return types.BytesToHash(hn), nil
}

// resolve loads a node from the database by its hash reference.
func (t *Trie) resolve(hn hashNode) (node, error) {
	data, err := t.db.Node(types.BytesToHash(hn))
	if err != nil {
		return nil, err
	}
	return decodeNode(hn, data)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

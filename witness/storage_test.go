package witness

import (
	"bytes"
	"errors"
	"testing"

	"github.com/paraverify/paraverify/core/types"
	"github.com/paraverify/paraverify/trie"
)

// buildWitness commits the given entries to a trie and returns the full
// node set as witness blobs along with the root.
func buildWitness(t *testing.T, entries map[string]string) ([][]byte, types.Hash) {
	t.Helper()
	db := trie.NewNodeDatabase()
	tr := trie.NewEmpty(db)
	for k, v := range entries {
		if err := tr.Put([]byte(k), []byte(v)); err != nil {
			t.Fatalf("Put(%q): %v", k, err)
		}
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	collector := &blobCollector{}
	if err := db.Commit(collector); err != nil {
		t.Fatalf("collect nodes: %v", err)
	}
	return collector.blobs, root
}

type blobCollector struct {
	blobs [][]byte
}

func (c *blobCollector) Put(hash types.Hash, data []byte) error {
	c.blobs = append(c.blobs, append([]byte(nil), data...))
	return nil
}

func TestNewStorage_RootPresent(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"a": "1", "b": "2"})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if s == nil {
		t.Fatal("nil storage")
	}
}

func TestNewStorage_RootMismatch(t *testing.T) {
	nodes, _ := buildWitness(t, map[string]string{"a": "1"})
	_, err := NewStorage(nodes, types.Hash{0xBA, 0xD0})
	if !errors.Is(err, ErrRootMismatch) {
		t.Fatalf("expected ErrRootMismatch, got %v", err)
	}
}

func TestNewStorage_DuplicateNodes(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"a": "1"})
	doubled := append(append([][]byte{}, nodes...), nodes...)
	s, err := NewStorage(doubled, root)
	if err != nil {
		t.Fatalf("NewStorage with duplicates: %v", err)
	}
	got, ok := s.Get([]byte("a"))
	if !ok || string(got) != "1" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
}

func TestStorage_GetFromTrie(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"key": "value"})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	got, ok := s.Get([]byte("key"))
	if !ok || !bytes.Equal(got, []byte("value")) {
		t.Fatalf("Get(key) = %q, %v", got, ok)
	}
	if _, ok := s.Get([]byte("absent")); ok {
		t.Fatal("absent key reported present")
	}
}

func TestStorage_OverlayShadowsTrie(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"k": "trie-value"})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	s.Insert([]byte("k"), []byte("overlay-value"))
	got, ok := s.Get([]byte("k"))
	if !ok || string(got) != "overlay-value" {
		t.Fatalf("Get(k) = %q, %v; want overlay-value", got, ok)
	}

	// A key never written reads through to the trie untouched.
	s.Insert([]byte("other"), []byte("x"))
	got, ok = s.Get([]byte("other"))
	if !ok || string(got) != "x" {
		t.Fatalf("Get(other) = %q, %v", got, ok)
	}
}

func TestStorage_RemoveTombstone(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"k": "trie-value"})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	s.Remove([]byte("k"))
	if _, ok := s.Get([]byte("k")); ok {
		t.Fatal("removed key still reads the trie value")
	}

	// Re-inserting after a tombstone restores visibility.
	s.Insert([]byte("k"), []byte("back"))
	got, ok := s.Get([]byte("k"))
	if !ok || string(got) != "back" {
		t.Fatalf("Get(k) after re-insert = %q, %v", got, ok)
	}
}

func TestStorage_RootIdempotentWithoutWrites(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"a": "1", "b": "2"})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	first := s.StorageRoot()
	second := s.StorageRoot()
	if first.IsZero() {
		t.Fatal("storage root is the failure sentinel")
	}
	if first != second {
		t.Fatalf("repeated root differs: %v vs %v", first, second)
	}
	if first != root {
		t.Fatalf("root with empty overlay: got %v, want base %v", first, root)
	}
}

func TestStorage_RootDrainsOverlay(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{"a": "1"})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	s.Insert([]byte("a"), []byte("2"))
	withWrite := s.StorageRoot()
	if withWrite.IsZero() || withWrite == root {
		t.Fatalf("root after write: %v", withWrite)
	}

	// The overlay is drained and the base root is not advanced, so the next
	// call recomputes from the original base with nothing pending.
	after := s.StorageRoot()
	if after != root {
		t.Fatalf("root after drain: got %v, want base %v", after, root)
	}
}

func TestStorage_RootMatchesDirectBuild(t *testing.T) {
	nodes, root := buildWitness(t, map[string]string{
		"a": "1", "b": "2", "c": "3",
	})
	s, err := NewStorage(nodes, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	s.Insert([]byte("a"), []byte("updated"))
	s.Remove([]byte("b"))
	s.Insert([]byte("d"), []byte("4"))
	got := s.StorageRoot()

	_, want := buildWitness(t, map[string]string{
		"a": "updated", "c": "3", "d": "4",
	})
	if got != want {
		t.Fatalf("overlay root %v != direct build root %v", got, want)
	}
}

func TestStorage_RootFailureSentinel(t *testing.T) {
	// A write whose path crosses a node absent from the witness cannot be
	// applied; the computation reports the all-zero sentinel.
	full := trie.NewNodeDatabase()
	tr := trie.NewEmpty(full)
	for i := 0; i < 32; i++ {
		tr.Put([]byte{0x40, byte(i)}, []byte{byte(i)})
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	rootBlob, err := full.Node(root)
	if err != nil {
		t.Fatalf("root blob: %v", err)
	}

	s, err := NewStorage([][]byte{rootBlob}, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	s.Insert([]byte{0x40, 0x05}, []byte("write into the gap"))
	if got := s.StorageRoot(); !got.IsZero() {
		t.Fatalf("expected zero sentinel, got %v", got)
	}
}

func TestStorage_PartialWitnessReadsAbsent(t *testing.T) {
	full := trie.NewNodeDatabase()
	tr := trie.NewEmpty(full)
	for i := 0; i < 32; i++ {
		tr.Put([]byte{0x40, byte(i)}, []byte{byte(i)})
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	rootBlob, err := full.Node(root)
	if err != nil {
		t.Fatalf("root blob: %v", err)
	}

	s, err := NewStorage([][]byte{rootBlob}, root)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	// The path dead-ends on a missing node; the read degrades to absent.
	if _, ok := s.Get([]byte{0x40, 0x05}); ok {
		t.Fatal("gap read reported a value")
	}
}

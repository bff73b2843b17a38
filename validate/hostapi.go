package validate

import (
	"fmt"
	"math"
)

const (
	// AbsentSentinel is the length value the get operations report for a
	// key with no stored value. It can never collide with a real length.
	AbsentSentinel uint32 = math.MaxUint32

	// RootLength is the exact size of the buffer the root operation fills.
	RootLength = 32
)

// Bindings is the set of storage operations exposed to the block executor.
// Exactly one set is active at a time; Replace swaps it and hands back a
// restore function.
type Bindings struct {
	// GetAllocated returns a fresh copy of the value under key, or nil and
	// AbsentSentinel when the key has no value. Returned buffers stay
	// alive until the binding's arena is released.
	GetAllocated func(key []byte) ([]byte, uint32)

	// GetInto copies the value under key, starting at offset, into dest
	// and returns the number of bytes copied, or AbsentSentinel when the
	// key has no value. Fewer bytes than len(dest) are copied when the
	// value past offset is shorter; dest beyond the copied range is
	// untouched.
	GetInto func(key, dest []byte, offset uint32) uint32

	// Set stores value under key.
	Set func(key, value []byte)

	// Exists reports presence as 1 or 0.
	Exists func(key []byte) uint32

	// Clear removes the value under key.
	Clear func(key []byte)

	// StorageRoot writes the computed state root into dest, which must be
	// exactly RootLength bytes.
	StorageRoot func(dest []byte)
}

// unbound panics: the executor called into storage outside a validation.
func unbound(op string) {
	panic(fmt.Sprintf("validate: storage operation %q called with no active bindings", op))
}

func unboundBindings() Bindings {
	return Bindings{
		GetAllocated: func([]byte) ([]byte, uint32) { unbound("get"); return nil, 0 },
		GetInto:      func([]byte, []byte, uint32) uint32 { unbound("read"); return 0 },
		Set:          func([]byte, []byte) { unbound("set") },
		Exists:       func([]byte) uint32 { unbound("exists"); return 0 },
		Clear:        func([]byte) { unbound("clear") },
		StorageRoot:  func([]byte) { unbound("root") },
	}
}

// active is the binding table the exported dispatchers route through.
var active = unboundBindings()

// Replace installs b as the active bindings and returns a function that
// restores the previous table. Callers must invoke the restore function on
// every exit path, including panics.
func Replace(b Bindings) (restore func()) {
	prev := active
	active = b
	return func() { active = prev }
}

// ExtGetAllocatedStorage dispatches to the active GetAllocated binding.
func ExtGetAllocatedStorage(key []byte) ([]byte, uint32) {
	return active.GetAllocated(key)
}

// ExtGetStorageInto dispatches to the active GetInto binding.
func ExtGetStorageInto(key, dest []byte, offset uint32) uint32 {
	return active.GetInto(key, dest, offset)
}

// ExtSetStorage dispatches to the active Set binding.
func ExtSetStorage(key, value []byte) {
	active.Set(key, value)
}

// ExtExistsStorage dispatches to the active Exists binding.
func ExtExistsStorage(key []byte) uint32 {
	return active.Exists(key)
}

// ExtClearStorage dispatches to the active Clear binding.
func ExtClearStorage(key []byte) {
	active.Clear(key)
}

// ExtStorageRoot dispatches to the active StorageRoot binding.
func ExtStorageRoot(dest []byte) {
	active.StorageRoot(dest)
}

// Arena holds the buffers handed out by GetAllocated so they survive until
// the validation call ends, then frees them all at once.
type Arena struct {
	held [][]byte
}

// adopt registers a buffer for bulk reclamation.
func (a *Arena) adopt(b []byte) {
	a.held = append(a.held, b)
}

// Release drops every held buffer. Buffers handed out earlier must not be
// used afterwards.
func (a *Arena) Release() {
	a.held = nil
}

// bindStorage builds the binding table serving storage s, with allocated
// buffers owned by arena.
func bindStorage(s Storage, arena *Arena) Bindings {
	return Bindings{
		GetAllocated: func(key []byte) ([]byte, uint32) {
			value, ok := s.Get(key)
			if !ok {
				return nil, AbsentSentinel
			}
			buf := append([]byte(nil), value...)
			arena.adopt(buf)
			return buf, uint32(len(buf))
		},
		GetInto: func(key, dest []byte, offset uint32) uint32 {
			value, ok := s.Get(key)
			if !ok {
				return AbsentSentinel
			}
			if int(offset) >= len(value) {
				return 0
			}
			return uint32(copy(dest, value[offset:]))
		},
		Set: func(key, value []byte) {
			s.Insert(key, value)
		},
		Exists: func(key []byte) uint32 {
			if _, ok := s.Get(key); ok {
				return 1
			}
			return 0
		},
		Clear: func(key []byte) {
			s.Remove(key)
		},
		StorageRoot: func(dest []byte) {
			if len(dest) != RootLength {
				panic(fmt.Sprintf("validate: storage root buffer is %d bytes, want %d", len(dest), RootLength))
			}
			root := s.StorageRoot()
			copy(dest, root[:])
		},
	}
}

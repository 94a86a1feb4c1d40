package succinct

import (
	"fmt"
	"iter"
	"unsafe"

	succincterrors "github.com/tamirms/succinct/errors"
)

// Entry is one key/value pair of an Index.
type Entry[T any] struct {
	Key   uint32
	Value T
}

// Index is an immutable sorted map from uint32 keys to values of type T.
// Membership and ordinal lookups go through the Dict; the value for the key
// of rank i is entries[i].
//
// Thread Safety:
//   - All read methods are safe for concurrent use
//   - An Index never changes after construction; use IndexBuilder and
//     IndexDeleter to derive new ones
//
// The zero Index is a valid empty map.
type Index[T any] struct {
	dict    Dict
	entries []Entry[T]
}

// NewIndex pairs dict with entries, which must hold exactly one entry per key
// of dict in ascending key order. The Index takes ownership of entries.
// It panics if the counts disagree.
func NewIndex[T any](dict *Dict, entries []Entry[T]) *Index[T] {
	if dict.Count() != uint32(len(entries)) {
		panic(fmt.Errorf("NewIndex: %d keys, %d entries: %w",
			dict.Count(), len(entries), succincterrors.ErrCountMismatch))
	}
	if dict.Empty() {
		return &Index[T]{}
	}
	return &Index[T]{dict: *dict, entries: entries}
}

// Len returns the number of entries. A nil Index is empty.
func (x *Index[T]) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Empty reports whether the index holds no entries.
func (x *Index[T]) Empty() bool {
	return x.Len() == 0
}

// Has reports whether key is present.
func (x *Index[T]) Has(key uint32) bool {
	return x.Len() > 0 && x.dict.Test(key)
}

// Rank returns the number of keys strictly less than key.
func (x *Index[T]) Rank(key uint32) uint32 {
	if x.Len() == 0 {
		return 0
	}
	return x.dict.Rank(key)
}

// Get returns the value stored for key.
func (x *Index[T]) Get(key uint32) (T, bool) {
	if x.Len() > 0 {
		if i := x.dict.Rank(key); int(i) < len(x.entries) && x.entries[i].Key == key {
			return x.entries[i].Value, true
		}
	}
	var zero T
	return zero, false
}

// GetOr returns the value stored for key, or fallback when key is absent.
func (x *Index[T]) GetOr(key uint32, fallback T) T {
	if v, ok := x.Get(key); ok {
		return v
	}
	return fallback
}

// At returns the entry of rank i. It panics if i is out of range.
func (x *Index[T]) At(i int) Entry[T] {
	return x.entries[i]
}

// Scan calls fn for every entry in ascending key order.
func (x *Index[T]) Scan(fn func(key uint32, value T)) {
	if x == nil {
		return
	}
	for _, e := range x.entries {
		fn(e.Key, e.Value)
	}
}

// ScanFrom calls fn for every entry with key >= from in ascending order,
// stopping early when fn returns false.
func (x *Index[T]) ScanFrom(from uint32, fn func(key uint32, value T) bool) {
	if x.Len() == 0 {
		return
	}
	x.dict.ScanFrom(from, func(rank, key uint32) bool {
		return fn(key, x.entries[rank].Value)
	})
}

// All returns an iterator over every (key, value) pair in ascending order.
func (x *Index[T]) All() iter.Seq2[uint32, T] {
	return x.From(0)
}

// From returns an iterator over the (key, value) pairs with key >= from.
func (x *Index[T]) From(from uint32) iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		x.ScanFrom(from, yield)
	}
}

// Keys returns all keys in ascending order.
func (x *Index[T]) Keys() []uint32 {
	keys := make([]uint32, 0, x.Len())
	x.Scan(func(key uint32, _ T) {
		keys = append(keys, key)
	})
	return keys
}

// Dict returns the key set of the index. The returned Dict must not be
// modified.
func (x *Index[T]) Dict() *Dict {
	if x == nil {
		return &Dict{}
	}
	return &x.dict
}

// StorageSize returns the bytes held by the index in memory, counting each
// value at its in-memory size. Values that reference other memory (strings,
// slices) are counted by header only.
func (x *Index[T]) StorageSize() uint64 {
	var e Entry[T]
	size := uint64(unsafe.Sizeof(Index[T]{}))
	if x == nil {
		return size
	}
	return size + x.dict.StorageSize() - uint64(unsafe.Sizeof(Dict{})) +
		uint64(len(x.entries))*uint64(unsafe.Sizeof(e))
}

// buildIndex builds an Index over entries, which must be sorted by key with
// no duplicates.
func buildIndex[T any](entries []Entry[T]) *Index[T] {
	if len(entries) == 0 {
		return &Index[T]{}
	}
	keys := make([]uint32, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return NewIndex(MakeDict(keys), entries)
}

package succinct

import (
	"cmp"
	"slices"
)

// IndexBuilder stages insertions and overwrites against a base Index.
//
// Build merges the staged entries into the base: a staged entry replaces a
// base entry with the same key, and among staged entries with the same key
// the one added last wins. The base is never modified.
//
// An IndexBuilder is not safe for concurrent use.
type IndexBuilder[T any] struct {
	base    *Index[T]
	pending []Entry[T]
}

// NewIndexBuilder returns a builder over base. A nil base is treated as an
// empty index.
func NewIndexBuilder[T any](base *Index[T]) *IndexBuilder[T] {
	return &IndexBuilder[T]{base: base}
}

// Reserve grows the staging buffer to hold n more entries without
// reallocating.
func (b *IndexBuilder[T]) Reserve(n int) {
	b.pending = slices.Grow(b.pending, n)
}

// Add stages key -> value.
func (b *IndexBuilder[T]) Add(key uint32, value T) {
	b.pending = append(b.pending, Entry[T]{Key: key, Value: value})
}

// Len returns the number of staged entries.
func (b *IndexBuilder[T]) Len() int {
	return len(b.pending)
}

// Build returns a new Index holding the base entries overridden by the staged
// ones. The staging buffer is cleared so the builder can stage another batch
// against the same base.
func (b *IndexBuilder[T]) Build() *Index[T] {
	pending := b.pending
	defer func() {
		clear(pending)
		b.pending = pending[:0]
	}()

	// Stable sort keeps Add order within a key, so the last Add is last.
	slices.SortStableFunc(pending, func(a, c Entry[T]) int {
		return cmp.Compare(a.Key, c.Key)
	})

	var base []Entry[T]
	if b.base != nil {
		base = b.base.entries
	}

	// Base entries precede staged ones on equal keys.
	merged := make([]Entry[T], 0, len(base)+len(pending))
	i, j := 0, 0
	for i < len(base) && j < len(pending) {
		if pending[j].Key < base[i].Key {
			merged = append(merged, pending[j])
			j++
		} else {
			merged = append(merged, base[i])
			i++
		}
	}
	merged = append(merged, base[i:]...)
	merged = append(merged, pending[j:]...)

	return buildIndex(collapseKeepLast(merged))
}

// collapseKeepLast keeps the last entry of every run of equal keys in a
// key-sorted slice, compacting in place.
func collapseKeepLast[T any](entries []Entry[T]) []Entry[T] {
	out := entries[:0]
	for k, e := range entries {
		if k+1 < len(entries) && entries[k+1].Key == e.Key {
			continue
		}
		out = append(out, e)
	}
	clear(entries[len(out):])
	return out
}

// IndexDeleter stages key removals against a base Index. Keys that are not
// present in the base are ignored. The base is never modified.
//
// An IndexDeleter is not safe for concurrent use.
type IndexDeleter[T any] struct {
	base *Index[T]
	keys []uint32
}

// NewIndexDeleter returns a deleter over base. A nil base is treated as an
// empty index.
func NewIndexDeleter[T any](base *Index[T]) *IndexDeleter[T] {
	return &IndexDeleter[T]{base: base}
}

// Reserve grows the staging buffer to hold n more keys without reallocating.
func (d *IndexDeleter[T]) Reserve(n int) {
	d.keys = slices.Grow(d.keys, n)
}

// Delete stages the removal of key.
func (d *IndexDeleter[T]) Delete(key uint32) {
	d.keys = append(d.keys, key)
}

// Len returns the number of staged removals.
func (d *IndexDeleter[T]) Len() int {
	return len(d.keys)
}

// Build returns a new Index holding the base entries whose keys were not
// staged for removal, and clears the staging buffer.
func (d *IndexDeleter[T]) Build() *Index[T] {
	removed := d.keys
	defer func() {
		d.keys = removed[:0]
	}()

	if d.base.Len() == 0 {
		return &Index[T]{}
	}
	slices.Sort(removed)

	survivors := make([]Entry[T], 0, d.base.Len())
	j := 0
	for _, e := range d.base.entries {
		for j < len(removed) && removed[j] < e.Key {
			j++
		}
		if j < len(removed) && removed[j] == e.Key {
			continue
		}
		survivors = append(survivors, e)
	}
	return buildIndex(survivors)
}

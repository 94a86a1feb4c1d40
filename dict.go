package succinct

import (
	"iter"
	"slices"
	"unsafe"

	intbits "github.com/tamirms/succinct/internal/bits"
)

// Key layout. A key splits into five fields of 8, 6, 6, 6 and 6 bits. The top
// field picks one of the 256 tier-0 words directly; each 6-bit field is the
// bit offset within the word selected for its tier. The widths are part of
// the serialized format and cannot change without a format version bump.
const (
	numTiers   = 4
	tier0Bits  = 8
	tier0Words = 1 << tier0Bits
	fieldBits  = 6
	fieldMask  = 1<<fieldBits - 1
	tier0Shift = 32 - tier0Bits
)

// offsetShift holds the right shift that extracts each tier's offset field.
var offsetShift = [numTiers]uint32{18, 12, 6, 0}

func tierOffset(key uint32, tier int) uint32 {
	return key >> offsetShift[tier] & fieldMask
}

// Dict is an immutable sorted set of uint32 keys answering membership and
// rank queries in four probes.
//
// The zero Dict is a valid empty set. A Dict is safe for concurrent readers.
// To change a Dict, build a new one with UpdateDict, DeleteDict or MergeDict
// and publish it in place of the old one.
type Dict struct {
	level  Level
	maxKey uint32
}

// Empty reports whether the dictionary holds no keys. A nil Dict is empty.
func (d *Dict) Empty() bool {
	return d == nil || d.level.Empty()
}

// Count returns the number of keys.
func (d *Dict) Count() uint32 {
	if d.Empty() {
		return 0
	}
	return d.level.Count()
}

// MaxKey returns the largest key, or 0 for an empty dictionary.
func (d *Dict) MaxKey() uint32 {
	if d.Empty() {
		return 0
	}
	return d.maxKey
}

// Test reports whether key is present.
func (d *Dict) Test(key uint32) bool {
	if d.Empty() || key > d.maxKey {
		return false
	}
	l := &d.level
	word := key >> tier0Shift
	for t := range numTiers {
		offset := tierOffset(key, t)
		if !l.Test(word, offset) {
			return false
		}
		word = l.Rank(word, offset)
	}
	return true
}

// Rank returns the number of keys strictly less than key, which is also the
// position key would take if inserted.
func (d *Dict) Rank(key uint32) uint32 {
	if d.Empty() {
		return 0
	}
	if key > d.maxKey {
		return d.level.Count()
	}
	_, rank := d.seek(key)
	return rank
}

// cursor records a word and starting offset for each tier of a walk.
type cursor struct {
	word   [numTiers]uint32
	offset [numTiers]uint32
}

// seek positions a cursor on the first key >= from and returns the rank of
// that key. Once a tier bit is missing every deeper field of from is zeroed,
// so the remaining tiers land on the leftmost child of the next present node.
// Precondition: from <= d.maxKey.
func (d *Dict) seek(from uint32) (cursor, uint32) {
	l := &d.level
	var c cursor
	c.word[0] = from >> tier0Shift
	for t := range numTiers - 1 {
		c.offset[t] = tierOffset(from, t)
		if !l.Test(c.word[t], c.offset[t]) {
			from = 0
		}
		c.word[t+1] = l.Rank(c.word[t], c.offset[t])
	}
	c.offset[numTiers-1] = tierOffset(from, numTiers-1)
	return c, l.Rank(c.word[numTiers-1], c.offset[numTiers-1])
}

// walk visits keys depth first starting at c, passing each key's rank.
// Every set bit of a tier owns exactly one word of the next tier, in order,
// so child words advance by one per visited bit.
func (d *Dict) walk(c cursor, rank uint32, fn func(rank, key uint32) bool) {
	words := d.level.words
	b0, b1, b2, b3 := c.word[0], c.word[1], c.word[2], c.word[3]
	i0, i1, i2, i3 := c.offset[0], c.offset[1], c.offset[2], c.offset[3]

	for ; b0 < tier0Words; b0, i0 = b0+1, 0 {
		for w0 := intbits.From(words[b0], i0); w0 != 0; w0 &= w0 - 1 {
			k0 := b0<<tier0Shift | intbits.Lowest(w0)<<offsetShift[0]
			for w1 := intbits.From(words[b1], i1); w1 != 0; w1 &= w1 - 1 {
				k1 := k0 | intbits.Lowest(w1)<<offsetShift[1]
				for w2 := intbits.From(words[b2], i2); w2 != 0; w2 &= w2 - 1 {
					k2 := k1 | intbits.Lowest(w2)<<offsetShift[2]
					for w3 := intbits.From(words[b3], i3); w3 != 0; w3 &= w3 - 1 {
						if !fn(rank, k2|intbits.Lowest(w3)) {
							return
						}
						rank++
					}
					b3, i3 = b3+1, 0
				}
				b2, i2 = b2+1, 0
			}
			b1, i1 = b1+1, 0
		}
	}
}

// Scan calls fn for every key in ascending order.
func (d *Dict) Scan(fn func(key uint32)) {
	d.ScanFrom(0, func(_, key uint32) bool {
		fn(key)
		return true
	})
}

// ScanFrom calls fn with the rank and value of every key >= from in
// ascending order, stopping early when fn returns false.
func (d *Dict) ScanFrom(from uint32, fn func(rank, key uint32) bool) {
	if d.Empty() || from > d.maxKey {
		return
	}
	c, rank := d.seek(from)
	d.walk(c, rank, fn)
}

// All returns an iterator over every key in ascending order.
func (d *Dict) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		d.ScanFrom(0, func(_, key uint32) bool {
			return yield(key)
		})
	}
}

// From returns an iterator over (rank, key) pairs for every key >= from.
func (d *Dict) From(from uint32) iter.Seq2[uint32, uint32] {
	return func(yield func(uint32, uint32) bool) {
		d.ScanFrom(from, yield)
	}
}

// Extract returns all keys in ascending order.
func (d *Dict) Extract() []uint32 {
	keys := make([]uint32, 0, d.Count())
	d.Scan(func(key uint32) {
		keys = append(keys, key)
	})
	return keys
}

// Equal reports whether d and other hold the same keys. Construction is
// deterministic, so equal sets have identical words and prefixes.
func (d *Dict) Equal(other *Dict) bool {
	if d.Empty() || other.Empty() {
		return d.Empty() && other.Empty()
	}
	return d.maxKey == other.maxKey &&
		slices.Equal(d.level.words, other.level.words) &&
		slices.Equal(d.level.prefix, other.level.prefix)
}

// StorageSize returns the bytes held by the dictionary in memory.
func (d *Dict) StorageSize() uint64 {
	size := uint64(unsafe.Sizeof(Dict{}))
	if d.Empty() {
		return size
	}
	n := uint64(d.level.Len())
	return size + n*uint64(unsafe.Sizeof(uint32(0))+unsafe.Sizeof(uint64(0)))
}

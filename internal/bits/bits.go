// Package bits provides low-level bit manipulation primitives.
package bits

import "math/bits"

// PopCount returns the number of set bits in w.
func PopCount(w uint64) uint32 {
	return uint32(bits.OnesCount64(w))
}

// LowMask returns a word with the bits strictly below offset set.
// offset must be in [0, 63].
func LowMask(offset uint32) uint64 {
	return uint64(1)<<offset - 1
}

// RankInWord counts the set bits of w strictly below offset.
func RankInWord(w uint64, offset uint32) uint32 {
	return PopCount(w & LowMask(offset))
}

// From clears the bits of w below offset, leaving the bits a visit
// starting at offset should see.
func From(w uint64, offset uint32) uint64 {
	return w &^ LowMask(offset)
}

// Lowest returns the index of the lowest set bit of a non-zero w.
func Lowest(w uint64) uint32 {
	return uint32(bits.TrailingZeros64(w))
}

// Highest returns the index of the highest set bit of a non-zero w.
func Highest(w uint64) uint32 {
	return uint32(bits.Len64(w)) - 1
}

// FastRange32 maps a 64-bit hash uniformly to [0, n) returning uint32.
// Uses the "fastrange" technique: multiply and take high bits.
// This is the standard way to map hashes to ranges without modulo bias.
func FastRange32(hash uint64, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(hash, uint64(n))
	return uint32(hi)
}

package succinct

import (
	intbits "github.com/tamirms/succinct/internal/bits"
)

// Level is a flattened array of 64-bit presence words with a parallel array
// of running popcounts. A Dict stores its four tiers back to back in one
// Level; see MakeDict for how the prefixes chain the tiers together.
type Level struct {
	prefix []uint32
	words  []uint64
}

// makeLevel builds a single tier of size words. place is called for each of
// the n keys and returns the (word, offset) pair whose bit is set. Duplicate
// pairs are idempotent.
func makeLevel(size, n int, place func(i int) (word, offset uint32)) Level {
	l := Level{
		prefix: make([]uint32, size),
		words:  make([]uint64, size),
	}
	for i := range n {
		word, offset := place(i)
		l.words[word] |= uint64(1) << offset
	}

	var sum uint32
	for i, w := range l.words {
		l.prefix[i] = sum
		sum += intbits.PopCount(w)
	}
	return l
}

// Test reports whether bit offset of words[word] is set.
// Offset must be in [0, 63].
func (l *Level) Test(word, offset uint32) bool {
	return l.words[word]&(uint64(1)<<offset) != 0
}

// Rank returns prefix[word] plus the number of set bits of words[word]
// strictly below offset. Offset must be in [0, 63].
func (l *Level) Rank(word, offset uint32) uint32 {
	return l.prefix[word] + intbits.RankInWord(l.words[word], offset)
}

// Count returns the running popcount through the last word.
func (l *Level) Count() uint32 {
	n := len(l.words)
	if n == 0 {
		return 0
	}
	return l.prefix[n-1] + intbits.PopCount(l.words[n-1])
}

// Len returns the number of words.
func (l *Level) Len() int {
	return len(l.words)
}

// Empty reports whether the level holds no words.
func (l *Level) Empty() bool {
	return len(l.words) == 0
}

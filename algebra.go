package succinct

import (
	"fmt"
	"slices"

	succincterrors "github.com/tamirms/succinct/errors"
)

// MakeDict builds a dictionary holding keys. The keys need not be sorted and
// duplicates are ignored. It panics if keys is empty; use &Dict{} for an
// empty set.
func MakeDict(keys []uint32) *Dict {
	if len(keys) == 0 {
		panic(fmt.Errorf("MakeDict: %w", succincterrors.ErrEmptyKeys))
	}

	// slots[i] is the word of the current tier that key i lands in, relative
	// to the start of that tier.
	slots := make([]uint32, len(keys))
	for i, key := range keys {
		slots[i] = key >> tier0Shift
	}

	var tiers [numTiers]Level
	size := tier0Words
	for t := range numTiers {
		tier := makeLevel(size, len(keys), func(i int) (uint32, uint32) {
			return slots[i], tierOffset(keys[i], t)
		})
		if t < numTiers-1 {
			for i, key := range keys {
				slots[i] = tier.Rank(slots[i], tierOffset(key, t))
			}
		}
		tiers[t] = tier
		size = int(tier.Count())
	}

	return &Dict{
		level:  concatTiers(&tiers),
		maxKey: slices.Max(keys),
	}
}

// concatTiers lays the tiers out back to back. Every prefix of tiers 0-2 is
// biased by the start of the following tier, so Rank through one tier yields
// an absolute word index into the next. Tier 3 stays unbiased and ranks keys.
func concatTiers(tiers *[numTiers]Level) Level {
	total := 0
	for i := range tiers {
		total += tiers[i].Len()
	}
	out := Level{
		prefix: make([]uint32, 0, total),
		words:  make([]uint64, 0, total),
	}
	for t := range tiers {
		tier := &tiers[t]
		var bias uint32
		if t < numTiers-1 {
			bias = uint32(out.Len() + tier.Len())
		}
		for _, p := range tier.prefix {
			out.prefix = append(out.prefix, p+bias)
		}
		out.words = append(out.words, tier.words...)
	}
	return out
}

// UpdateDict returns a dictionary holding the keys of d plus keys. d is not
// modified and keys may be in any order.
func UpdateDict(d *Dict, keys []uint32) *Dict {
	added := slices.Clone(keys)
	slices.Sort(added)
	return makeDictOrEmpty(mergeSortedKeys(d.Extract(), added))
}

// DeleteDict returns a dictionary holding the keys of d not listed in keys.
// Keys that are not present are ignored.
func DeleteDict(d *Dict, keys []uint32) *Dict {
	removed := slices.Clone(keys)
	slices.Sort(removed)

	survivors := make([]uint32, 0, d.Count())
	j := 0
	d.Scan(func(key uint32) {
		for j < len(removed) && removed[j] < key {
			j++
		}
		if j == len(removed) || removed[j] != key {
			survivors = append(survivors, key)
		}
	})
	return makeDictOrEmpty(survivors)
}

// MergeDict returns the union of a and b.
func MergeDict(a, b *Dict) *Dict {
	return UpdateDict(a, b.Extract())
}

func makeDictOrEmpty(keys []uint32) *Dict {
	if len(keys) == 0 {
		return &Dict{}
	}
	return MakeDict(keys)
}

// mergeSortedKeys merges two ascending slices into one ascending slice
// without duplicates.
func mergeSortedKeys(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return slices.Compact(out)
}

package succinct

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateKeys returns n pseudo-random keys in [0, domain), unsorted and
// possibly repeated. A domain of 0 means the full uint32 range.
func generateKeys(rng *rand.Rand, n int, domain uint32) []uint32 {
	keys := make([]uint32, n)
	for i := range keys {
		if domain == 0 {
			keys[i] = rng.Uint32()
		} else {
			keys[i] = rng.Uint32N(domain)
		}
	}
	return keys
}

// generateClusteredKeys returns keys concentrated in a few dense runs, which
// exercises full words and long sibling chains in every tier.
func generateClusteredKeys(rng *rand.Rand, clusters, perCluster int) []uint32 {
	keys := make([]uint32, 0, clusters*perCluster)
	for range clusters {
		base := rng.Uint32()
		for j := range perCluster {
			keys = append(keys, base+uint32(j)*uint32(1+rng.IntN(3)))
		}
	}
	return keys
}

// sortedUnique returns a sorted, deduplicated copy of keys.
func sortedUnique(keys []uint32) []uint32 {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

// naiveRank counts the keys of sorted below key.
func naiveRank(sorted []uint32, key uint32) uint32 {
	i, _ := slices.BinarySearch(sorted, key)
	return uint32(i)
}

// probeKeys returns query keys around and between the members of sorted,
// plus the range boundaries.
func probeKeys(rng *rand.Rand, sorted []uint32, random int) []uint32 {
	probes := []uint32{0, 1, 1<<32 - 1, 1<<32 - 2}
	for _, k := range sorted {
		probes = append(probes, k, k-1, k+1)
	}
	for range random {
		probes = append(probes, rng.Uint32())
	}
	return probes
}

// verifyDict checks every query of d against the sorted key list.
func verifyDict(t *testing.T, d *Dict, sorted []uint32, probes []uint32) {
	t.Helper()
	if got := d.Count(); got != uint32(len(sorted)) {
		t.Fatalf("Count() = %d, want %d", got, len(sorted))
	}
	if len(sorted) > 0 && d.MaxKey() != sorted[len(sorted)-1] {
		t.Fatalf("MaxKey() = %d, want %d", d.MaxKey(), sorted[len(sorted)-1])
	}
	if got := d.Extract(); !slices.Equal(got, sorted) {
		t.Fatalf("Extract() returned %d keys, want %d (first mismatch in %v)", len(got), len(sorted), firstDiff(got, sorted))
	}
	for _, p := range probes {
		_, want := slices.BinarySearch(sorted, p)
		if got := d.Test(p); got != want {
			t.Fatalf("Test(%d) = %v, want %v", p, got, want)
		}
		if got, want := d.Rank(p), naiveRank(sorted, p); got != want {
			t.Fatalf("Rank(%d) = %d, want %d", p, got, want)
		}
	}
}

// firstDiff describes the first position where got and want differ.
func firstDiff(got, want []uint32) []uint32 {
	for i := range min(len(got), len(want)) {
		if got[i] != want[i] {
			return []uint32{uint32(i), got[i], want[i]}
		}
	}
	return nil
}

// expectPanic runs fn and checks that it panics with an error wrapping want.
func expectPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic value %v does not wrap %v", r, want)
		}
	}()
	fn()
}

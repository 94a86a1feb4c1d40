package spatial

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
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

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{0, 32, 0}, {31, 32, 0}, {32, 32, 1}, {-1, 32, -1}, {-32, 32, -1},
		{-33, 32, -2}, {-64, 32, -2}, {5, 1, 5}, {-5, 1, -5},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBlockAndLocalRoundtrip(t *testing.T) {
	rng := newTestRNG(t)
	for _, size := range []int{1, 2, 7, 32, MaxBlockSize} {
		for range 1000 {
			pos := Vec3{rng.IntN(1<<20) - 1<<19, rng.IntN(1<<20) - 1<<19, rng.IntN(1<<20) - 1<<19}
			block, local := blockAndLocal(pos, size)
			if limit := uint32(size * size * size); local >= limit {
				t.Fatalf("size %d: local key %d of %v out of range", size, local, pos)
			}
			if block != blockOf(pos, size) {
				t.Fatalf("size %d: blockAndLocal and blockOf disagree on %v", size, pos)
			}
			if got := block.Scale(size).Add(localOffset(local, size)); got != pos {
				t.Fatalf("size %d: %v -> (%v, %d) -> %v", size, pos, block, local, got)
			}
		}
	}
}

func TestBlockBorders(t *testing.T) {
	block, local := blockAndLocal(Vec3{-1, -1, -1}, 32)
	if block != (Vec3{-1, -1, -1}) || local != 31+32*(31+32*31) {
		t.Fatalf("(-1,-1,-1) -> %v, %d", block, local)
	}
	block, local = blockAndLocal(Vec3{32, 0, 0}, 32)
	if block != (Vec3{1, 0, 0}) || local != 0 {
		t.Fatalf("(32,0,0) -> %v, %d", block, local)
	}
	block, local = blockAndLocal(Vec3{0, 1, 2}, 32)
	if block != (Vec3{}) || local != 32+2*32*32 {
		t.Fatalf("(0,1,2) -> %v, %d", block, local)
	}
}

func TestCompareVec3(t *testing.T) {
	ordered := []Vec3{{5, 5, -1}, {0, -3, 0}, {-2, 0, 0}, {1, 0, 0}, {0, 0, 1}}
	for i := range ordered {
		for j := range ordered {
			got := compareVec3(ordered[i], ordered[j])
			if (i < j && got >= 0) || (i > j && got <= 0) || (i == j && got != 0) {
				t.Errorf("compareVec3(%v, %v) = %d", ordered[i], ordered[j], got)
			}
		}
	}
}

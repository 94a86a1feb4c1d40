package succinct

import (
	"path/filepath"
	"testing"
)

func benchmarkMakeDictN(b *testing.B, n int) {
	rng := newTestRNG(b)
	keys := generateKeys(rng, n, 0)

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		_ = MakeDict(keys)
	}
}

func BenchmarkMakeDict1K(b *testing.B)   { benchmarkMakeDictN(b, 1000) }
func BenchmarkMakeDict100K(b *testing.B) { benchmarkMakeDictN(b, 100000) }
func BenchmarkMakeDict1M(b *testing.B)   { benchmarkMakeDictN(b, 1000000) }

func benchmarkTestN(b *testing.B, n int) {
	rng := newTestRNG(b)
	keys := generateKeys(rng, n, 0)
	d := MakeDict(keys)
	probes := append(keys[:n/2:n/2], generateKeys(rng, n/2, 0)...)

	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		_ = d.Test(probes[i%len(probes)])
	}
}

func BenchmarkTest1K(b *testing.B)   { benchmarkTestN(b, 1000) }
func BenchmarkTest100K(b *testing.B) { benchmarkTestN(b, 100000) }
func BenchmarkTest1M(b *testing.B)   { benchmarkTestN(b, 1000000) }

func benchmarkRankN(b *testing.B, n int) {
	rng := newTestRNG(b)
	d := MakeDict(generateKeys(rng, n, 0))
	probes := generateKeys(rng, 4096, 0)

	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		_ = d.Rank(probes[i%len(probes)])
	}
}

func BenchmarkRank1K(b *testing.B)   { benchmarkRankN(b, 1000) }
func BenchmarkRank100K(b *testing.B) { benchmarkRankN(b, 100000) }
func BenchmarkRank1M(b *testing.B)   { benchmarkRankN(b, 1000000) }

func BenchmarkRankParallel(b *testing.B) {
	rng := newTestRNG(b)
	d := MakeDict(generateKeys(rng, 100000, 0))
	probes := generateKeys(rng, 4096, 0)

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = d.Rank(probes[i%len(probes)])
			i++
		}
	})
}

func BenchmarkScan1M(b *testing.B) {
	d := MakeDict(generateKeys(newTestRNG(b), 1000000, 0))

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		var sum uint32
		d.Scan(func(key uint32) { sum += key })
		_ = sum
	}
}

func BenchmarkIndexGet(b *testing.B) {
	rng := newTestRNG(b)
	builder := NewIndexBuilder[uint64](nil)
	keys := generateKeys(rng, 100000, 0)
	for i, key := range keys {
		builder.Add(key, uint64(i))
	}
	idx := builder.Build()

	b.ResetTimer()
	b.ReportAllocs()
	for i := range b.N {
		_, _ = idx.Get(keys[i%len(keys)])
	}
}

func BenchmarkIndexBuilder(b *testing.B) {
	rng := newTestRNG(b)
	keys := generateKeys(rng, 100000, 0)

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		builder := NewIndexBuilder[uint32](nil)
		builder.Reserve(len(keys))
		for i, key := range keys {
			builder.Add(key, uint32(i))
		}
		_ = builder.Build()
	}
}

func BenchmarkUpdateDict(b *testing.B) {
	rng := newTestRNG(b)
	d := MakeDict(generateKeys(rng, 100000, 0))
	added := generateKeys(rng, 1000, 0)

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		_ = UpdateDict(d, added)
	}
}

func benchmarkBlobDecode(b *testing.B, c CompressionType) {
	d := MakeDict(generateKeys(newTestRNG(b), 100000, 1<<22))
	data, err := EncodeDictBlob(d, WithCompression(c))
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := DecodeDictBlob(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBlobDecodeNone(b *testing.B) { benchmarkBlobDecode(b, CompressionNone) }
func BenchmarkBlobDecodeLZ4(b *testing.B)  { benchmarkBlobDecode(b, CompressionLZ4) }
func BenchmarkBlobDecodeZstd(b *testing.B) { benchmarkBlobDecode(b, CompressionZstd) }

func BenchmarkWriteDictFile(b *testing.B) {
	d := MakeDict(generateKeys(newTestRNG(b), 100000, 0))
	path := filepath.Join(b.TempDir(), "bench.scdt")

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		if err := WriteDictFile(path, d); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeaderEncode(b *testing.B) {
	h := &header{
		Magic:      magic,
		Version:    version,
		Kind:       KindDict,
		RawSize:    1 << 20,
		StoredSize: 1 << 20,
		KeyCount:   1000000,
		MaxKey:     0xFFFFFFF0,
	}

	buf := make([]byte, headerSize)

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		h.encodeTo(buf)
	}
}

func BenchmarkHeaderDecode(b *testing.B) {
	h := &header{
		Magic:      magic,
		Version:    version,
		Kind:       KindDict,
		RawSize:    1 << 20,
		StoredSize: 1 << 20,
		KeyCount:   1000000,
		MaxKey:     0xFFFFFFF0,
	}
	encoded := make([]byte, headerSize)
	h.encodeTo(encoded)

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		_, _ = decodeHeader(encoded)
	}
}

//go:build linux

// bench_io compares blob file I/O across compression types:
//
//  1. "write": WriteDictFile (compress, fallocate, mmap write, flush)
//  2. "cold":  ReadDictFile after evicting the file from the page cache
//  3. "warm":  ReadDictFile with the file cached
//
// Keys are uniform random in [0, domain); smaller domains give denser
// dictionaries that compress better.
//
// Usage:
//
//	go run ./cmd/bench_io -keys 10000000
//	go run ./cmd/bench_io -keys 50000000 -domain 100000000 -rounds 5
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tamirms/succinct"
)

// evict drops the file's pages from the page cache.
func evict(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := unix.Fdatasync(int(f.Fd())); err != nil {
		return err
	}
	return unix.Fadvise(int(f.Fd()), 0, info.Size(), unix.FADV_DONTNEED)
}

type result struct {
	compression succinct.CompressionType
	fileSize    int64
	write       time.Duration
	cold        time.Duration
	warm        time.Duration
}

func benchCompression(dir string, dict *succinct.Dict, c succinct.CompressionType, rounds int) (result, error) {
	res := result{compression: c}
	path := filepath.Join(dir, fmt.Sprintf("bench-%s.scdt", c))

	for range rounds {
		start := time.Now()
		if err := succinct.WriteDictFile(path, dict, succinct.WithCompression(c)); err != nil {
			return res, fmt.Errorf("write: %w", err)
		}
		res.write += time.Since(start)

		if err := evict(path); err != nil {
			return res, fmt.Errorf("evict: %w", err)
		}
		start = time.Now()
		if _, err := succinct.ReadDictFile(path); err != nil {
			return res, fmt.Errorf("cold read: %w", err)
		}
		res.cold += time.Since(start)

		start = time.Now()
		if _, err := succinct.ReadDictFile(path); err != nil {
			return res, fmt.Errorf("warm read: %w", err)
		}
		res.warm += time.Since(start)
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, err
	}
	res.fileSize = info.Size()
	res.write /= time.Duration(rounds)
	res.cold /= time.Duration(rounds)
	res.warm /= time.Duration(rounds)
	return res, nil
}

func main() {
	numKeys := flag.Int("keys", 10_000_000, "number of keys")
	domain := flag.Uint64("domain", math.MaxUint32, "keys are drawn from [0, domain)")
	rounds := flag.Int("rounds", 3, "rounds per compression type")
	tmpDir := flag.String("dir", "", "temp directory (default: os.TempDir())")
	flag.Parse()

	if *numKeys <= 0 || *domain == 0 || *domain > math.MaxUint32 || *rounds <= 0 {
		fmt.Println("-keys and -rounds must be positive, -domain in [1, 2^32-1]")
		return
	}

	dir, err := os.MkdirTemp(*tmpDir, "bench_io-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	fmt.Println("Generating keys...")
	rng := rand.New(rand.NewPCG(0x1234, 0x5678))
	keys := make([]uint32, *numKeys)
	for i := range keys {
		keys[i] = rng.Uint32N(uint32(*domain))
	}
	dict := succinct.MakeDict(keys)
	fmt.Printf("Dictionary: %d keys, %d bytes in memory\n", dict.Count(), dict.StorageSize())

	fmt.Printf("\n%-6s %14s %12s %12s %12s %10s\n", "comp", "file bytes", "write", "cold read", "warm read", "bits/key")
	for _, c := range []succinct.CompressionType{succinct.CompressionNone, succinct.CompressionLZ4, succinct.CompressionZstd} {
		res, err := benchCompression(dir, dict, c, *rounds)
		if err != nil {
			fmt.Printf("%-6s failed: %v\n", c, err)
			continue
		}
		fmt.Printf("%-6s %14d %12s %12s %12s %10.3f\n",
			res.compression, res.fileSize,
			res.write.Round(time.Microsecond), res.cold.Round(time.Microsecond), res.warm.Round(time.Microsecond),
			float64(res.fileSize*8)/float64(dict.Count()))
	}
}

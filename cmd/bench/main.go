// Bench is a benchmarking tool for measuring succinct dictionary build time,
// query latency, scan throughput and space usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 10000000 -domain 4294967295 -compression zstd
//
// Flags:
//
//	-keys         Number of keys to generate before deduplication (default: 10,000,000)
//	-domain       Keys are drawn from [0, domain) (default: 2^32-1)
//	-seed         Seed for key generation (default: 0x1234)
//	-compression  Blob compression: none, lz4 or zstd (default: none)
//	-cpuprofile   Write a CPU profile of the build phase to file
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	mrand "math/rand/v2"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/succinct"
	intbits "github.com/tamirms/succinct/internal/bits"
)

// generateKeys hashes the counters 0..n-1 with murmur3 and maps each hash
// into [0, domain).
func generateKeys(n int, domain uint32, seed uint32) []uint32 {
	keys := make([]uint32, n)
	var buf [8]byte
	for i := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		keys[i] = intbits.FastRange32(murmur3.Sum64WithSeed(buf[:], seed), domain)
	}
	return keys
}

func main() {
	keysFlag := flag.Int("keys", 10_000_000, "number of keys to generate")
	domainFlag := flag.Uint64("domain", math.MaxUint32, "keys are drawn from [0, domain)")
	seedFlag := flag.Uint("seed", 0x1234, "seed for key generation")
	compressionFlag := flag.String("compression", "none", "blob compression: none, lz4 or zstd")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	flag.Parse()

	if *keysFlag <= 0 || *domainFlag == 0 || *domainFlag > math.MaxUint32 {
		fmt.Printf("-keys must be positive and -domain in [1, %d]\n", uint64(math.MaxUint32))
		return
	}
	compression, err := succinct.ParseCompression(*compressionFlag)
	if err != nil {
		fmt.Printf("Invalid -compression: %v\n", err)
		return
	}

	fmt.Println("Generating keys...")
	genStart := time.Now()
	keys := generateKeys(*keysFlag, uint32(*domainFlag), uint32(*seedFlag))
	genDuration := time.Since(genStart)

	// Start CPU profile for build phase
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Println("Building dictionary...")
	buildStart := time.Now()
	dict := succinct.MakeDict(keys)
	buildDuration := time.Since(buildStart)

	fmt.Println("Building index...")
	indexStart := time.Now()
	builder := succinct.NewIndexBuilder[uint32](nil)
	builder.Reserve(len(keys))
	for i, key := range keys {
		builder.Add(key, uint32(i))
	}
	idx := builder.Build()
	indexDuration := time.Since(indexStart)

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}

	numKeys := int(dict.Count())
	extracted := dict.Extract()
	rng := mrand.New(mrand.NewPCG(uint64(*seedFlag), 0x9E3779B97F4A7C15))

	// Half present keys, half uniform probes.
	numQueries := 1_000_000
	probes := make([]uint32, numQueries)
	for i := range probes {
		if i%2 == 0 {
			probes[i] = extracted[rng.IntN(numKeys)]
		} else {
			probes[i] = rng.Uint32N(uint32(*domainFlag))
		}
	}

	fmt.Println("Benchmarking queries...")
	var hits int
	testStart := time.Now()
	for _, p := range probes {
		if dict.Test(p) {
			hits++
		}
	}
	testDuration := time.Since(testStart)

	var rankSum uint64
	rankStart := time.Now()
	for _, p := range probes {
		rankSum += uint64(dict.Rank(p))
	}
	rankDuration := time.Since(rankStart)

	var getSum uint64
	getStart := time.Now()
	for _, p := range probes {
		v, _ := idx.Get(p)
		getSum += uint64(v)
	}
	getDuration := time.Since(getStart)

	fmt.Println("Benchmarking scan...")
	var scanned int
	scanStart := time.Now()
	dict.Scan(func(uint32) { scanned++ })
	scanDuration := time.Since(scanStart)

	tmpDir, err := os.MkdirTemp("", "bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	dictPath := filepath.Join(tmpDir, "bench.scdt")

	fmt.Println("Writing blob file...")
	writeStart := time.Now()
	if err := succinct.WriteDictFile(dictPath, dict, succinct.WithCompression(compression)); err != nil {
		fmt.Printf("WriteDictFile failed: %v\n", err)
		return
	}
	writeDuration := time.Since(writeStart)

	readStart := time.Now()
	reloaded, err := succinct.ReadDictFile(dictPath)
	if err != nil {
		fmt.Printf("ReadDictFile failed: %v\n", err)
		return
	}
	readDuration := time.Since(readStart)
	if !reloaded.Equal(dict) {
		fmt.Println("Reloaded dictionary differs from the one written")
		return
	}

	info, err := succinct.ReadFileInfo(dictPath)
	if err != nil {
		fmt.Printf("ReadFileInfo failed: %v\n", err)
		return
	}

	memBitsPerKey := float64(dict.StorageSize()*8) / float64(numKeys)
	nsPer := func(d time.Duration) float64 {
		return float64(d.Nanoseconds()) / float64(numQueries)
	}

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╦══════════════════╗\n")
	fmt.Printf("║ Keys: %-14d║ Comp: %-8s ║ hits %-11d ║\n", numKeys, compression, hits)
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Metric              ║ Value          ║ Note             ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╬══════════════════╣\n")
	fmt.Printf("║ Bits per key (RAM)  ║ %6.3f bits/key║ -                ║\n", memBitsPerKey)
	fmt.Printf("║ Bits per key (file) ║ %6.3f bits/key║ %-16s ║\n", info.BitsPerKey, compression)
	fmt.Printf("║ Test latency        ║ %6.2f ns      ║ -                ║\n", nsPer(testDuration))
	fmt.Printf("║ Rank latency        ║ %6.2f ns      ║ sum %-12d ║\n", nsPer(rankDuration), rankSum%1_000_000)
	fmt.Printf("║ Get latency         ║ %6.2f ns      ║ sum %-12d ║\n", nsPer(getDuration), getSum%1_000_000)
	fmt.Printf("║ Scan throughput     ║ %6.1f M/sec   ║ -                ║\n", float64(scanned)/scanDuration.Seconds()/1_000_000)
	fmt.Printf("║ Key generation      ║ %6.2f sec     ║ murmur3          ║\n", genDuration.Seconds())
	fmt.Printf("║ Dict build time     ║ %6.2f sec     ║ -                ║\n", buildDuration.Seconds())
	fmt.Printf("║ Dict build rate     ║ %6.2f M/sec   ║ -                ║\n", float64(len(keys))/buildDuration.Seconds()/1_000_000)
	fmt.Printf("║ Index build time    ║ %6.2f sec     ║ -                ║\n", indexDuration.Seconds())
	fmt.Printf("║ File write          ║ %6.3f sec     ║ %8d bytes   ║\n", writeDuration.Seconds(), info.FileSize)
	fmt.Printf("║ File read           ║ %6.3f sec     ║ -                ║\n", readDuration.Seconds())
	fmt.Printf("╚═════════════════════╩════════════════╩══════════════════╝\n")
}

package succinct

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSnapshotPublishes(t *testing.T) {
	s := NewSnapshot[string](nil)
	if s.Load().Len() != 0 || s.Version() != 0 {
		t.Fatalf("new snapshot: Len() = %d, Version() = %d", s.Load().Len(), s.Version())
	}

	v0 := s.Load()
	v1 := s.Upsert(animals...)
	if s.Load() != v1 || v1.Len() != 5 || s.Version() != 1 {
		t.Fatalf("after Upsert: Len() = %d, Version() = %d", s.Load().Len(), s.Version())
	}
	if v0.Len() != 0 {
		t.Fatal("Upsert modified an earlier version")
	}

	v2 := s.Delete(3, 1324, 77)
	if got := v2.Keys(); len(got) != 3 || v2.Has(3) || v2.Has(1324) {
		t.Fatalf("after Delete: keys %v", got)
	}
	if !v1.Has(3) {
		t.Fatal("Delete modified an earlier version")
	}

	v3 := s.Apply(func(b *IndexBuilder[string]) {
		b.Add(1234, "hog")
		b.Add(8, "owl")
	})
	if v, _ := v3.Get(1234); v != "hog" || !v3.Has(8) || v3.Len() != 4 {
		t.Fatalf("after Apply: keys %v", v3.Keys())
	}

	s.Store(nil)
	if s.Load().Len() != 0 || s.Version() != 4 {
		t.Fatalf("after Store(nil): Len() = %d, Version() = %d", s.Load().Len(), s.Version())
	}
	s.Store(v3)
	if s.Load() != v3 {
		t.Fatal("Store did not publish the given index")
	}
}

// TestSnapshotConcurrentReaders runs readers against a stream of publishes.
// Every version a reader loads must be internally consistent: each key maps
// to the value written with it.
func TestSnapshotConcurrentReaders(t *testing.T) {
	s := NewSnapshot[uint64](nil)
	var stop atomic.Bool
	var wg sync.WaitGroup
	var failures atomic.Int64

	for range 4 {
		wg.Go(func() {
			for !stop.Load() {
				idx := s.Load()
				idx.Scan(func(key uint32, v uint64) {
					if v != uint64(key)*7 {
						failures.Add(1)
					}
				})
			}
		})
	}

	rng := newTestRNG(t)
	for range 200 {
		if rng.IntN(4) == 0 {
			s.Delete(rng.Uint32N(1<<12), rng.Uint32N(1<<12))
			continue
		}
		entries := make([]Entry[uint64], 50)
		for i := range entries {
			key := rng.Uint32N(1 << 12)
			entries[i] = Entry[uint64]{key, uint64(key) * 7}
		}
		s.Upsert(entries...)
	}
	stop.Store(true)
	wg.Wait()

	if n := failures.Load(); n != 0 {
		t.Fatalf("%d inconsistent reads", n)
	}
	if s.Version() != 200 {
		t.Fatalf("Version() = %d, want 200", s.Version())
	}
}

func TestSnapshotConcurrentWriters(t *testing.T) {
	s := NewSnapshot[int](nil)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Go(func() {
			for i := range 25 {
				key := uint32(w*100 + i)
				s.Upsert(Entry[int]{key, int(key)})
			}
		})
	}
	wg.Wait()

	if s.Load().Len() != 200 || s.Version() != 200 {
		t.Fatalf("Len() = %d, Version() = %d; want 200, 200", s.Load().Len(), s.Version())
	}
}

func TestSnapshotLogsPublishes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSnapshot(buildAnimals(), WithLogger(logger), WithName("animals"))

	s.Upsert(Entry[string]{5, "ant"})
	s.Delete(5, 3)

	out := buf.String()
	for _, want := range []string{
		"snapshot published",
		"snapshot=animals",
		"op=upsert",
		"op=delete",
		"version=2",
		"before=6",
		"after=4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSnapshotDefaultLoggerDiscards(t *testing.T) {
	s := NewSnapshot[int](nil, WithLogger(nil))
	s.Upsert(Entry[int]{1, 1})
	if s.Load().Len() != 1 {
		t.Fatal("Upsert with the default logger failed")
	}
}

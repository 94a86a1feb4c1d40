package succinct

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot publishes successive versions of an Index to concurrent readers.
//
// Thread Safety:
//   - Load is lock-free and safe to call from any goroutine
//   - Writers (Upsert, Delete, Apply, Store) are serialized by a mutex
//   - A loaded Index is immutable, so readers keep a consistent view even
//     while a newer version is being published
type Snapshot[T any] struct {
	current atomic.Pointer[Index[T]]
	version atomic.Uint64

	mu     sync.Mutex // serializes writers
	logger *slog.Logger
}

// NewSnapshot returns a Snapshot publishing idx as version 0. A nil idx
// starts from an empty index.
func NewSnapshot[T any](idx *Index[T], opts ...SnapshotOption) *Snapshot[T] {
	cfg := defaultSnapshotConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if cfg.name != "" {
		logger = logger.With("snapshot", cfg.name)
	}

	if idx == nil {
		idx = &Index[T]{}
	}
	s := &Snapshot[T]{logger: logger}
	s.current.Store(idx)
	return s
}

// Load returns the current Index.
func (s *Snapshot[T]) Load() *Index[T] {
	return s.current.Load()
}

// Version returns the number of publishes since creation.
func (s *Snapshot[T]) Version() uint64 {
	return s.version.Load()
}

// Upsert publishes the current Index with entries inserted or overwritten.
// Later entries win over earlier ones with the same key.
func (s *Snapshot[T]) Upsert(entries ...Entry[T]) *Index[T] {
	return s.Apply(func(b *IndexBuilder[T]) {
		b.Reserve(len(entries))
		for _, e := range entries {
			b.Add(e.Key, e.Value)
		}
	})
}

// Apply stages edits through fn and publishes the result.
func (s *Snapshot[T]) Apply(fn func(b *IndexBuilder[T])) *Index[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	b := NewIndexBuilder(s.current.Load())
	fn(b)
	staged := b.Len()
	next := b.Build()
	s.publishLocked(next, "upsert", staged, start)
	return next
}

// Delete publishes the current Index without keys.
func (s *Snapshot[T]) Delete(keys ...uint32) *Index[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	d := NewIndexDeleter(s.current.Load())
	d.Reserve(len(keys))
	for _, key := range keys {
		d.Delete(key)
	}
	next := d.Build()
	s.publishLocked(next, "delete", len(keys), start)
	return next
}

// Store publishes idx as is, replacing the current Index.
func (s *Snapshot[T]) Store(idx *Index[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx == nil {
		idx = &Index[T]{}
	}
	s.publishLocked(idx, "store", idx.Len(), time.Now())
}

func (s *Snapshot[T]) publishLocked(next *Index[T], op string, staged int, start time.Time) {
	prev := s.current.Swap(next)
	v := s.version.Add(1)
	s.logger.Debug("snapshot published",
		"op", op,
		"version", v,
		"staged", staged,
		"before", prev.Len(),
		"after", next.Len(),
		"elapsed", time.Since(start))
}

package spatial

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"
	"unsafe"

	"github.com/tamirms/succinct"
	succincterrors "github.com/tamirms/succinct/errors"
	"golang.org/x/sync/errgroup"
)

// Value is a value at a position.
type Value[T any] struct {
	Pos   Vec3
	Value T
}

// Index maps 3D positions to values of type T.
//
// Thread Safety:
//   - Read methods (Get, Has, Len, Scan, ...) are safe for concurrent use
//     with each other
//   - Update, Remove, UpdateBlock and Clear must not run concurrently with
//     any other method
type Index[T any] struct {
	blockSize int
	workers   int
	logger    *slog.Logger

	blocks map[Vec3]*succinct.Index[T]
}

// New returns an empty Index.
func New[T any](opts ...Option) (*Index[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.blockSize < 1 || cfg.blockSize > MaxBlockSize {
		return nil, fmt.Errorf("block size %d: %w", cfg.blockSize, succincterrors.ErrInvalidBlockSize)
	}
	return &Index[T]{
		blockSize: cfg.blockSize,
		workers:   cfg.workers,
		logger:    cfg.logger,
		blocks:    make(map[Vec3]*succinct.Index[T]),
	}, nil
}

// BlockSize returns the block edge length.
func (x *Index[T]) BlockSize() int {
	return x.blockSize
}

// Get returns the value at pos.
func (x *Index[T]) Get(pos Vec3) (T, bool) {
	block, local := blockAndLocal(pos, x.blockSize)
	return x.blocks[block].Get(local)
}

// Has reports whether pos holds a value.
func (x *Index[T]) Has(pos Vec3) bool {
	block, local := blockAndLocal(pos, x.blockSize)
	return x.blocks[block].Has(local)
}

// Len returns the number of positions holding a value.
func (x *Index[T]) Len() int {
	n := 0
	for _, idx := range x.blocks {
		n += idx.Len()
	}
	return n
}

// Blocks returns the number of non-empty blocks.
func (x *Index[T]) Blocks() int {
	return len(x.blocks)
}

// Block returns the index of the block containing pos, or nil.
func (x *Index[T]) Block(pos Vec3) *succinct.Index[T] {
	return x.blocks[blockOf(pos, x.blockSize)]
}

// Clear removes every value.
func (x *Index[T]) Clear() {
	clear(x.blocks)
}

// UpdateBlock replaces the block containing pos with idx, whose keys are
// local keys of that block. A nil or empty idx removes the block.
func (x *Index[T]) UpdateBlock(pos Vec3, idx *succinct.Index[T]) {
	x.setBlock(blockOf(pos, x.blockSize), idx)
}

func (x *Index[T]) setBlock(block Vec3, idx *succinct.Index[T]) {
	if idx.Empty() {
		delete(x.blocks, block)
		return
	}
	x.blocks[block] = idx
}

// Scan calls fn for every value, block by block in Z, Y, X block order and
// in ascending local key order within a block.
func (x *Index[T]) Scan(fn func(pos Vec3, value T)) {
	for pos, v := range x.All() {
		fn(pos, v)
	}
}

// All returns an iterator over every (position, value) pair in Scan order.
func (x *Index[T]) All() iter.Seq2[Vec3, T] {
	return func(yield func(Vec3, T) bool) {
		for _, block := range slices.SortedFunc(maps.Keys(x.blocks), compareVec3) {
			origin := block.Scale(x.blockSize)
			for local, v := range x.blocks[block].All() {
				if !yield(origin.Add(localOffset(local, x.blockSize)), v) {
					return
				}
			}
		}
	}
}

// StorageSize returns the approximate bytes held in memory.
func (x *Index[T]) StorageSize() uint64 {
	perBlock := uint64(unsafe.Sizeof(Vec3{}) + unsafe.Sizeof(uintptr(0)))
	size := uint64(unsafe.Sizeof(*x)) + uint64(len(x.blocks))*perBlock
	for _, idx := range x.blocks {
		size += idx.StorageSize()
	}
	return size
}

// blockJob rebuilds one block.
type blockJob[T any] struct {
	block Vec3
	build func() *succinct.Index[T]
}

// Update sets the value at each position. Within values, a later value for
// the same position wins. Affected blocks are rebuilt, in parallel when
// workers are configured. On error (a cancelled ctx) the Index is unchanged.
func (x *Index[T]) Update(ctx context.Context, values []Value[T]) error {
	builders := make(map[Vec3]*succinct.IndexBuilder[T])
	var (
		last    Vec3
		builder *succinct.IndexBuilder[T]
	)
	for _, v := range values {
		block, local := blockAndLocal(v.Pos, x.blockSize)
		if builder == nil || block != last {
			builder = builders[block]
			if builder == nil {
				builder = succinct.NewIndexBuilder(x.blocks[block])
				builders[block] = builder
			}
			last = block
		}
		builder.Add(local, v.Value)
	}

	jobs := make([]blockJob[T], 0, len(builders))
	for block, b := range builders {
		jobs = append(jobs, blockJob[T]{block: block, build: b.Build})
	}
	return x.rebuild(ctx, "update", len(values), jobs)
}

// Remove deletes the value at each position. Positions without a value are
// ignored. Blocks left empty are dropped.
func (x *Index[T]) Remove(ctx context.Context, positions []Vec3) error {
	deleters := make(map[Vec3]*succinct.IndexDeleter[T])
	var (
		last    Vec3
		deleter *succinct.IndexDeleter[T]
	)
	for _, pos := range positions {
		block, local := blockAndLocal(pos, x.blockSize)
		if deleter == nil || block != last {
			deleter = deleters[block]
			if deleter == nil {
				deleter = succinct.NewIndexDeleter(x.blocks[block])
				deleters[block] = deleter
			}
			last = block
		}
		deleter.Delete(local)
	}

	jobs := make([]blockJob[T], 0, len(deleters))
	for block, d := range deleters {
		if _, ok := x.blocks[block]; !ok {
			continue
		}
		jobs = append(jobs, blockJob[T]{block: block, build: d.Build})
	}
	return x.rebuild(ctx, "remove", len(positions), jobs)
}

// rebuild runs jobs on up to x.workers goroutines and installs the results
// once every job has finished.
func (x *Index[T]) rebuild(ctx context.Context, op string, values int, jobs []blockJob[T]) error {
	start := time.Now()
	built := make([]*succinct.Index[T], len(jobs))

	workers := min(x.workers, len(jobs))
	if workers < 2 {
		for i, job := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			built[i] = job.build()
		}
	} else if err := runWorkers(ctx, workers, jobs, built); err != nil {
		return err
	}

	for i, job := range jobs {
		x.setBlock(job.block, built[i])
	}

	x.logger.Debug("spatial blocks rebuilt",
		"op", op,
		"values", values,
		"blocks", len(jobs),
		"workers", max(workers, 1),
		"totalBlocks", len(x.blocks),
		"elapsed", time.Since(start))
	return nil
}

// runWorkers feeds job indices to workers goroutines through a channel.
// Each result lands in its own slot of built, so no locking is needed.
func runWorkers[T any](ctx context.Context, workers int, jobs []blockJob[T], built []*succinct.Index[T]) error {
	workChan := make(chan int, workers)
	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for i := range workChan {
				if err := gctx.Err(); err != nil {
					return err
				}
				built[i] = jobs[i].build()
			}
			return nil
		})
	}

dispatch:
	for i := range jobs {
		select {
		case workChan <- i:
		case <-gctx.Done():
			break dispatch
		}
	}
	close(workChan)

	if err := g.Wait(); err != nil {
		return err
	}
	// Dispatch may have stopped on cancellation before any worker saw it.
	return ctx.Err()
}

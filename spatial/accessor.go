package spatial

import "github.com/tamirms/succinct"

// Accessor reads an Index while remembering the last block it looked up, so
// runs of reads within one block skip the block map. An Accessor is not safe
// for concurrent use and must not outlive changes to its Index.
type Accessor[T any] struct {
	index  *Index[T]
	block  Vec3
	cached *succinct.Index[T]
	valid  bool
}

// Access returns an Accessor over x.
func (x *Index[T]) Access() *Accessor[T] {
	return &Accessor[T]{index: x}
}

func (a *Accessor[T]) lookup(pos Vec3) (*succinct.Index[T], uint32) {
	block, local := blockAndLocal(pos, a.index.blockSize)
	if !a.valid || block != a.block {
		a.block = block
		a.cached = a.index.blocks[block]
		a.valid = true
	}
	return a.cached, local
}

// Has reports whether pos holds a value.
func (a *Accessor[T]) Has(pos Vec3) bool {
	idx, local := a.lookup(pos)
	return idx.Has(local)
}

// Get returns the value at pos.
func (a *Accessor[T]) Get(pos Vec3) (T, bool) {
	idx, local := a.lookup(pos)
	return idx.Get(local)
}

// Package spatial maps 3D integer coordinates to values by packing nearby
// points into cubic blocks. Each block stores its points in a
// succinct.Index keyed by the point's position within the block, so dense
// neighborhoods compress well and reads of nearby points share one block.
package spatial

import "cmp"

// Vec3 is an integer 3D position.
type Vec3 struct {
	X, Y, Z int
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * k.
func (v Vec3) Scale(k int) Vec3 {
	return Vec3{v.X * k, v.Y * k, v.Z * k}
}

// compareVec3 orders positions by Z, then Y, then X.
func compareVec3(a, b Vec3) int {
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	if a < 0 {
		return (a+1)/b - 1
	}
	return a / b
}

// blockOf returns the block containing pos.
func blockOf(pos Vec3, size int) Vec3 {
	return Vec3{floorDiv(pos.X, size), floorDiv(pos.Y, size), floorDiv(pos.Z, size)}
}

// blockAndLocal splits pos into its block and its key within the block.
// Local keys are x + size*(y + size*z) over the offset from the block origin.
func blockAndLocal(pos Vec3, size int) (Vec3, uint32) {
	block := blockOf(pos, size)
	x := pos.X - block.X*size
	y := pos.Y - block.Y*size
	z := pos.Z - block.Z*size
	return block, uint32(x + size*(y+size*z))
}

// localOffset inverts the local key of blockAndLocal.
func localOffset(local uint32, size int) Vec3 {
	l := int(local)
	return Vec3{l % size, (l / size) % size, l / size / size}
}

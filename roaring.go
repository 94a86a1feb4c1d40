package succinct

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// DictFromBitmap freezes the contents of rb into a Dict. An empty or nil
// bitmap yields an empty Dict.
func DictFromBitmap(rb *roaring.Bitmap) *Dict {
	if rb == nil || rb.IsEmpty() {
		return &Dict{}
	}
	return MakeDict(rb.ToArray())
}

// Bitmap returns the keys of d as a new roaring bitmap, for set algebra that
// is cheaper on bitmaps than through repeated rebuilds.
func (d *Dict) Bitmap() *roaring.Bitmap {
	rb := roaring.New()
	rb.AddMany(d.Extract())
	rb.RunOptimize()
	return rb
}

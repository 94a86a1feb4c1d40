// Package succinct implements a compact ordered set and map over uint32 keys.
//
// A Dict stores a set of keys as a four-tier bit trie with embedded prefix
// sums. Membership (Test) and ordinal (Rank) queries take four probes; scans
// visit keys in ascending order. Space grows with the number of present keys,
// not with the key range. An Index pairs a Dict with a dense value array, so
// the value of a key is found at its rank.
//
// Dict and Index are immutable. Edits are batch rebuilds that return a new
// value: UpdateDict, DeleteDict and MergeDict for sets, IndexBuilder and
// IndexDeleter for maps. Snapshot publishes successive versions to
// concurrent readers.
//
// # Basic Usage
//
// Building and querying a set:
//
//	d := succinct.MakeDict([]uint32{23, 26, 39, 41})
//	d.Test(26)  // true
//	d.Rank(40)  // 3
//	for key := range d.All() {
//	    fmt.Println(key)
//	}
//
// Building a map:
//
//	b := succinct.NewIndexBuilder[string](nil)
//	b.Add(3, "dog")
//	b.Add(1324, "cat")
//	idx := b.Build()
//	v, ok := idx.Get(1324) // "cat", true
//
// Persisting:
//
//	err := succinct.WriteIndexFile("pets.scdt", idx, succinct.StringCodec{},
//	    succinct.WithCompression(succinct.CompressionZstd))
//	idx, err = succinct.ReadIndexFile("pets.scdt", succinct.StringCodec{})
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Core: level.go (Level), dict.go (Dict queries and scans), algebra.go
//     (MakeDict, UpdateDict, DeleteDict, MergeDict)
//   - Maps: index.go (Index), index_builder.go (IndexBuilder, IndexDeleter),
//     snapshot.go (Snapshot)
//   - Serialization: codec.go (binary layout), value_codec.go (Codec), header.go
//     (blob header, footer), blob.go, blob_writer.go, compression.go
//   - Configuration: options.go (WriteOption, SnapshotOption)
//   - Interop: roaring.go (roaring bitmaps)
//   - Platform: fadvise_*.go, fallocate_*.go, prefault_*.go
//   - Spatial maps: spatial/ (3D voxel properties over per-block Index values)
//   - Tools: cmd/bench (build, query and serialization timings), cmd/bench_io
//     (file write and read timings per compression type, Linux only)
package succinct

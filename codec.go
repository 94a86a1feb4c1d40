package succinct

import (
	"encoding/binary"
	"fmt"

	succincterrors "github.com/tamirms/succinct/errors"
	intbits "github.com/tamirms/succinct/internal/bits"
	"github.com/tamirms/succinct/internal/encoding"
)

// Binary layout, all integers little-endian:
//
//	Level  word_count:u32  prefix[word_count]:u32  words[word_count]:u64
//	Dict   Level  max_key:u32
//	Index  Dict  entry_count:u32  { key:u32  value }[entry_count]
//
// Values use the encoding of the Codec passed to AppendIndex and DecodeIndex.
// An empty Dict encodes as word_count 0 and max_key 0.

// encodedSize returns the length of the Dict encoding.
func (d *Dict) encodedSize() int {
	if d.Empty() {
		return 8
	}
	return 4 + 12*d.level.Len() + 4
}

// AppendBinary appends the binary encoding of d to b.
func (d *Dict) AppendBinary(b []byte) ([]byte, error) {
	if d.Empty() {
		b = binary.LittleEndian.AppendUint32(b, 0)
		return binary.LittleEndian.AppendUint32(b, 0), nil
	}
	b = binary.LittleEndian.AppendUint32(b, uint32(d.level.Len()))
	b = encoding.AppendUint32s(b, d.level.prefix)
	b = encoding.AppendUint64s(b, d.level.words)
	return binary.LittleEndian.AppendUint32(b, d.maxKey), nil
}

// MarshalBinary returns the binary encoding of d.
func (d *Dict) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(make([]byte, 0, d.encodedSize()))
}

// UnmarshalBinary decodes data into d. data must hold exactly one Dict.
func (d *Dict) UnmarshalBinary(data []byte) error {
	decoded, n, err := DecodeDict(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("%d trailing bytes after dictionary: %w", len(data)-n, succincterrors.ErrCorrupted)
	}
	*d = *decoded
	return nil
}

// DecodeDict decodes a Dict from the start of src and returns it with the
// number of bytes consumed. The structure is validated, so a Dict decoded
// from untrusted bytes never indexes out of range.
func DecodeDict(src []byte) (*Dict, int, error) {
	r := encoding.NewReader(src)
	n, ok := r.Uint32()
	if !ok {
		return nil, 0, fmt.Errorf("dictionary word count: %w", succincterrors.ErrTruncated)
	}
	if uint64(r.Remaining()) < uint64(n)*12+4 {
		return nil, 0, fmt.Errorf("dictionary of %d words in %d bytes: %w",
			n, r.Remaining(), succincterrors.ErrTruncated)
	}

	d := &Dict{level: Level{
		prefix: make([]uint32, n),
		words:  make([]uint64, n),
	}}
	r.Uint32s(d.level.prefix)
	r.Uint64s(d.level.words)
	d.maxKey, _ = r.Uint32()

	if err := d.validate(); err != nil {
		return nil, 0, err
	}
	return d, r.Offset(), nil
}

// validate checks that the tiers chain, every prefix matches the running
// popcount plus its tier bias, no node below tier 0 is childless, and maxKey
// is the largest key.
func (d *Dict) validate() error {
	l := &d.level
	n := l.Len()
	if n == 0 {
		if d.maxKey != 0 {
			return fmt.Errorf("empty dictionary with max key %d: %w", d.maxKey, succincterrors.ErrCorrupted)
		}
		return nil
	}

	var ends [numTiers]int
	start, size := 0, tier0Words
	for t := range numTiers {
		end := start + size
		if size == 0 || end > n {
			return fmt.Errorf("tier %d spans words [%d, %d) of %d: %w",
				t, start, end, n, succincterrors.ErrCorrupted)
		}
		var bias uint64
		if t < numTiers-1 {
			bias = uint64(end)
		}
		var sum uint64
		for i := start; i < end; i++ {
			if t > 0 && l.words[i] == 0 {
				return fmt.Errorf("tier %d word %d is empty: %w", t, i, succincterrors.ErrCorrupted)
			}
			if uint64(l.prefix[i]) != sum+bias {
				return fmt.Errorf("tier %d word %d prefix %d, want %d: %w",
					t, i, l.prefix[i], sum+bias, succincterrors.ErrCorrupted)
			}
			sum += uint64(intbits.PopCount(l.words[i]))
		}
		ends[t] = end
		start, size = end, int(sum)
	}
	if start != n {
		return fmt.Errorf("%d words after tier 3: %w", n-start, succincterrors.ErrCorrupted)
	}

	if last := d.lastKey(&ends); d.maxKey != last {
		return fmt.Errorf("max key %d, largest key %d: %w", d.maxKey, last, succincterrors.ErrCorrupted)
	}
	return nil
}

// lastKey returns the largest key given the end of each tier. The highest
// bit of a tier owns the last word of the next tier.
func (d *Dict) lastKey(ends *[numTiers]int) uint32 {
	words := d.level.words
	b0 := tier0Words - 1
	for words[b0] == 0 {
		b0--
	}
	key := uint32(b0)<<tier0Shift | intbits.Highest(words[b0])<<offsetShift[0]
	for t := 1; t < numTiers; t++ {
		key |= intbits.Highest(words[ends[t]-1]) << offsetShift[t]
	}
	return key
}

// AppendIndex appends the binary encoding of x to dst, encoding values with
// codec. A nil Index encodes as empty.
func AppendIndex[T any](dst []byte, x *Index[T], codec Codec[T]) []byte {
	dst, _ = x.Dict().AppendBinary(dst)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(x.Len()))
	if x == nil {
		return dst
	}
	for _, e := range x.entries {
		dst = binary.LittleEndian.AppendUint32(dst, e.Key)
		dst = codec.Append(dst, e.Value)
	}
	return dst
}

// DecodeIndex decodes an Index from the start of src and returns it with the
// number of bytes consumed. Entry keys must match the dictionary in order.
func DecodeIndex[T any](src []byte, codec Codec[T]) (*Index[T], int, error) {
	dict, off, err := DecodeDict(src)
	if err != nil {
		return nil, 0, err
	}
	r := encoding.NewReader(src[off:])
	count, ok := r.Uint32()
	if !ok {
		return nil, 0, fmt.Errorf("index entry count: %w", succincterrors.ErrTruncated)
	}
	if count != dict.Count() {
		return nil, 0, fmt.Errorf("%d entries for %d keys: %w", count, dict.Count(), succincterrors.ErrCorrupted)
	}

	entries := make([]Entry[T], 0, count)
	var decodeErr error
	dict.ScanFrom(0, func(_, want uint32) bool {
		key, ok := r.Uint32()
		if !ok {
			decodeErr = fmt.Errorf("entry %d key: %w", len(entries), succincterrors.ErrTruncated)
			return false
		}
		if key != want {
			decodeErr = fmt.Errorf("entry %d key %d, dictionary key %d: %w",
				len(entries), key, want, succincterrors.ErrCorrupted)
			return false
		}
		value, n, err := codec.Decode(r.Rest())
		if err != nil {
			decodeErr = fmt.Errorf("entry %d value: %w", len(entries), err)
			return false
		}
		r.Skip(n)
		entries = append(entries, Entry[T]{Key: key, Value: value})
		return true
	})
	if decodeErr != nil {
		return nil, 0, decodeErr
	}
	return NewIndex(dict, entries), off + r.Offset(), nil
}

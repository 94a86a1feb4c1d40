// Package encoding provides little-endian read and append primitives for the
// dictionary binary layout.
//
// Readers never panic on short input: every read reports whether enough
// bytes remained, and a failed read leaves the offset unchanged.
package encoding

import "encoding/binary"

// AppendUint32s appends each value of src as 4 little-endian bytes.
func AppendUint32s(dst []byte, src []uint32) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint32(dst, v)
	}
	return dst
}

// AppendUint64s appends each value of src as 8 little-endian bytes.
func AppendUint64s(dst []byte, src []uint64) []byte {
	for _, v := range src {
		dst = binary.LittleEndian.AppendUint64(dst, v)
	}
	return dst
}

// ReadUint reads a little-endian unsigned integer of size bytes from buf.
// size must be in [0, 8] and buf must hold at least size bytes.
func ReadUint(buf []byte, size int) uint64 {
	var v uint64
	for i := range size {
		v |= uint64(buf[i]) << (i * 8)
	}
	return v
}

// Reader consumes little-endian values from a byte slice.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Rest returns the unread bytes without consuming them.
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

// Skip consumes n bytes.
func (r *Reader) Skip(n int) bool {
	if n < 0 || n > r.Remaining() {
		return false
	}
	r.off += n
	return true
}

// Uint32 consumes 4 bytes.
func (r *Reader) Uint32() (uint32, bool) {
	if r.Remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, true
}

// Uint64 consumes 8 bytes.
func (r *Reader) Uint64() (uint64, bool) {
	if r.Remaining() < 8 {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, true
}

// Uint32s fills dst, consuming 4*len(dst) bytes.
func (r *Reader) Uint32s(dst []uint32) bool {
	if r.Remaining()/4 < len(dst) {
		return false
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(r.buf[r.off:])
		r.off += 4
	}
	return true
}

// Uint64s fills dst, consuming 8*len(dst) bytes.
func (r *Reader) Uint64s(dst []uint64) bool {
	if r.Remaining()/8 < len(dst) {
		return false
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(r.buf[r.off:])
		r.off += 8
	}
	return true
}

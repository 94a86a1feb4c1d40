package succinct

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	succincterrors "github.com/tamirms/succinct/errors"
	"github.com/tamirms/succinct/internal/encoding"
)

// Codec encodes the values of an Index.
//
// Decode reads one value from the start of src and returns it with the number
// of bytes consumed. It must return an error wrapping errors.ErrTruncated when
// src is too short rather than panicking.
type Codec[T any] interface {
	Append(dst []byte, v T) []byte
	Decode(src []byte) (T, int, error)
}

// Built-in codecs. Integers are fixed-width little-endian; strings and byte
// slices carry a u32 length prefix.
type (
	Uint8Codec   struct{}
	Uint16Codec  struct{}
	Uint32Codec  struct{}
	Uint64Codec  struct{}
	Float32Codec struct{}
	StringCodec  struct{}
	BytesCodec   struct{}
)

var (
	_ Codec[uint8]   = Uint8Codec{}
	_ Codec[uint16]  = Uint16Codec{}
	_ Codec[uint32]  = Uint32Codec{}
	_ Codec[uint64]  = Uint64Codec{}
	_ Codec[float32] = Float32Codec{}
	_ Codec[string]  = StringCodec{}
	_ Codec[[]byte]  = BytesCodec{}
)

func decodeUint(src []byte, size int) (uint64, int, error) {
	if len(src) < size {
		return 0, 0, fmt.Errorf("%d-byte value in %d bytes: %w", size, len(src), succincterrors.ErrTruncated)
	}
	return encoding.ReadUint(src, size), size, nil
}

func (Uint8Codec) Append(dst []byte, v uint8) []byte { return append(dst, v) }

func (Uint8Codec) Decode(src []byte) (uint8, int, error) {
	v, n, err := decodeUint(src, 1)
	return uint8(v), n, err
}

func (Uint16Codec) Append(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func (Uint16Codec) Decode(src []byte) (uint16, int, error) {
	v, n, err := decodeUint(src, 2)
	return uint16(v), n, err
}

func (Uint32Codec) Append(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

func (Uint32Codec) Decode(src []byte) (uint32, int, error) {
	v, n, err := decodeUint(src, 4)
	return uint32(v), n, err
}

func (Uint64Codec) Append(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func (Uint64Codec) Decode(src []byte) (uint64, int, error) {
	return decodeUint(src, 8)
}

func (Float32Codec) Append(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

func (Float32Codec) Decode(src []byte) (float32, int, error) {
	v, n, err := decodeUint(src, 4)
	return math.Float32frombits(uint32(v)), n, err
}

// decodeLengthPrefixed returns the payload of a u32 length-prefixed field
// and the total bytes it occupies.
func decodeLengthPrefixed(src []byte) ([]byte, int, error) {
	r := encoding.NewReader(src)
	n, ok := r.Uint32()
	if !ok {
		return nil, 0, fmt.Errorf("length prefix: %w", succincterrors.ErrTruncated)
	}
	if uint64(n) > uint64(r.Remaining()) {
		return nil, 0, fmt.Errorf("%d-byte value in %d bytes: %w", n, r.Remaining(), succincterrors.ErrTruncated)
	}
	return r.Rest()[:n], 4 + int(n), nil
}

func (StringCodec) Append(dst []byte, v string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v)))
	return append(dst, v...)
}

func (StringCodec) Decode(src []byte) (string, int, error) {
	b, n, err := decodeLengthPrefixed(src)
	return string(b), n, err
}

func (BytesCodec) Append(dst []byte, v []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v)))
	return append(dst, v...)
}

// Decode copies the value out of src.
func (BytesCodec) Decode(src []byte) ([]byte, int, error) {
	b, n, err := decodeLengthPrefixed(src)
	if err != nil {
		return nil, 0, err
	}
	return slices.Clone(b), n, nil
}

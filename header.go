package succinct

import (
	"encoding/binary"

	succincterrors "github.com/tamirms/succinct/errors"
)

const (
	// magic number for blob files
	// "SCDT" in little-endian
	magic = uint32(0x54444353)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (32 bytes)
	headerSize = 32

	// footerSize is the exact size of the serialized footer (16 bytes)
	footerSize = 16
)

// BlobKind identifies the structure stored in a blob.
type BlobKind uint8

const (
	KindDict  BlobKind = 1
	KindIndex BlobKind = 2
)

func (k BlobKind) String() string {
	switch k {
	case KindDict:
		return "dict"
	case KindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// header is the 32-byte blob header.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       4     Magic        0x54444353 ("SCDT")
//	4       2     Version      0x0001
//	6       1     Kind         uint8 (1=Dict, 2=Index)
//	7       1     Compression  uint8 (0=None, 1=LZ4, 2=Zstd)
//	8       8     RawSize      uint64_le (payload bytes before compression)
//	16      8     StoredSize   uint64_le (payload bytes in the blob)
//	24      4     KeyCount     uint32_le
//	28      4     MaxKey       uint32_le
type header struct {
	Magic       uint32          // 4 bytes: magic number 0x54444353
	Version     uint16          // 2 bytes: format version
	Kind        BlobKind        // 1 byte: stored structure
	Compression CompressionType // 1 byte: payload compression
	RawSize     uint64          // 8 bytes: uncompressed payload size
	StoredSize  uint64          // 8 bytes: payload size as stored
	KeyCount    uint32          // 4 bytes: number of keys
	MaxKey      uint32          // 4 bytes: largest key (0 when empty)
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = uint8(h.Kind)
	buf[7] = uint8(h.Compression)
	binary.LittleEndian.PutUint64(buf[8:16], h.RawSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.StoredSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.KeyCount)
	binary.LittleEndian.PutUint32(buf[28:32], h.MaxKey)
}

// decodeHeader parses a 32-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, succincterrors.ErrTruncated
	}

	h := &header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		Kind:        BlobKind(buf[6]),
		Compression: CompressionType(buf[7]),
		RawSize:     binary.LittleEndian.Uint64(buf[8:16]),
		StoredSize:  binary.LittleEndian.Uint64(buf[16:24]),
		KeyCount:    binary.LittleEndian.Uint32(buf[24:28]),
		MaxKey:      binary.LittleEndian.Uint32(buf[28:32]),
	}

	if h.Magic != magic {
		return nil, succincterrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, succincterrors.ErrInvalidVersion
	}
	if h.Kind != KindDict && h.Kind != KindIndex {
		return nil, succincterrors.ErrCorrupted
	}
	if !h.Compression.valid() {
		return nil, succincterrors.ErrUnknownCompression
	}
	if h.Compression == CompressionNone && h.RawSize != h.StoredSize {
		return nil, succincterrors.ErrCorrupted
	}

	return h, nil
}

// blobSize returns the total size of a blob described by h.
func (h *header) blobSize() uint64 {
	return headerSize + h.StoredSize + footerSize
}

// footer is the 16-byte blob footer.
//
// Layout:
//
//	Offset  Size  Field       Type
//	0       8     StoredHash  uint64_le (xxHash64 of the stored payload)
//	8       8     RawHash     uint64_le (XXH3-64 of the decompressed payload)
type footer struct {
	StoredHash uint64 // 8 bytes: checked before decompressing
	RawHash    uint64 // 8 bytes: checked after decompressing
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.StoredHash)
	binary.LittleEndian.PutUint64(buf[8:16], f.RawHash)
}

// decodeFooter parses a 16-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, succincterrors.ErrTruncated
	}

	return &footer{
		StoredHash: binary.LittleEndian.Uint64(buf[0:8]),
		RawHash:    binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}

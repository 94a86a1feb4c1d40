package succinct

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/xxh3"
	succincterrors "github.com/tamirms/succinct/errors"
)

// minBlobSize is the size of a blob with an empty payload.
const minBlobSize = headerSize + footerSize

// blob is a header, stored payload and footer ready to be laid out.
type blob struct {
	header header
	stored []byte
	footer footer
}

// newBlob compresses the raw payload and computes both checksums. The stored
// hash covers the header too, so header fields are trusted once it matches.
func newBlob(kind BlobKind, keyCount, maxKey uint32, raw []byte, opts []WriteOption) (*blob, error) {
	cfg := defaultWriteConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.compression.valid() {
		return nil, fmt.Errorf("%s: %w", cfg.compression, succincterrors.ErrUnknownCompression)
	}

	stored, compression, err := compressPayload(raw, cfg)
	if err != nil {
		return nil, err
	}

	b := &blob{
		header: header{
			Magic:       magic,
			Version:     version,
			Kind:        kind,
			Compression: compression,
			RawSize:     uint64(len(raw)),
			StoredSize:  uint64(len(stored)),
			KeyCount:    keyCount,
			MaxKey:      maxKey,
		},
		stored: stored,
	}
	var hdr [headerSize]byte
	b.header.encodeTo(hdr[:])
	d := xxhash.New()
	_, _ = d.Write(hdr[:])
	_, _ = d.Write(stored)
	b.footer = footer{
		StoredHash: d.Sum64(),
		RawHash:    xxh3.Hash(raw),
	}
	return b, nil
}

// putTo lays the blob out in buf, which must hold header.blobSize() bytes.
func (b *blob) putTo(buf []byte) {
	b.header.encodeTo(buf[:headerSize])
	n := copy(buf[headerSize:], b.stored)
	b.footer.encodeTo(buf[headerSize+n:])
}

func (b *blob) bytes() []byte {
	buf := make([]byte, b.header.blobSize())
	b.putTo(buf)
	return buf
}

// openBlob verifies a blob of the wanted kind and returns its header and
// decompressed payload. The payload may alias data.
func openBlob(data []byte, want BlobKind) (*header, []byte, error) {
	if len(data) < minBlobSize {
		return nil, nil, fmt.Errorf("blob of %d bytes: %w", len(data), succincterrors.ErrTruncated)
	}
	h, err := decodeHeader(data[:headerSize])
	if err != nil {
		return nil, nil, err
	}
	if h.Kind != want {
		return nil, nil, fmt.Errorf("blob holds %s, want %s: %w", h.Kind, want, succincterrors.ErrWrongKind)
	}
	size := uint64(len(data))
	if h.StoredSize > size-minBlobSize {
		return nil, nil, fmt.Errorf("blob payload of %d bytes in %d: %w", h.StoredSize, size, succincterrors.ErrTruncated)
	}
	if h.blobSize() != size {
		return nil, nil, fmt.Errorf("%d trailing bytes after blob: %w", size-h.blobSize(), succincterrors.ErrCorrupted)
	}

	payloadEnd := headerSize + h.StoredSize
	ftr, err := decodeFooter(data[payloadEnd:])
	if err != nil {
		return nil, nil, err
	}
	if xxhash.Sum64(data[:payloadEnd]) != ftr.StoredHash {
		return nil, nil, fmt.Errorf("stored payload: %w", succincterrors.ErrChecksumFailed)
	}

	raw, err := decompressPayload(data[headerSize:payloadEnd], h.Compression, h.RawSize)
	if err != nil {
		return nil, nil, err
	}
	if xxh3.Hash(raw) != ftr.RawHash {
		return nil, nil, fmt.Errorf("raw payload: %w", succincterrors.ErrChecksumFailed)
	}
	return h, raw, nil
}

// checkCounts cross-checks header statistics against the decoded dictionary.
func (h *header) checkCounts(d *Dict) error {
	if h.KeyCount != d.Count() || h.MaxKey != d.MaxKey() {
		return fmt.Errorf("header records %d keys up to %d, payload holds %d up to %d: %w",
			h.KeyCount, h.MaxKey, d.Count(), d.MaxKey(), succincterrors.ErrCorrupted)
	}
	return nil
}

// EncodeDictBlob returns d wrapped in a checksummed, optionally compressed
// blob.
func EncodeDictBlob(d *Dict, opts ...WriteOption) ([]byte, error) {
	b, err := newDictBlob(d, opts)
	if err != nil {
		return nil, err
	}
	return b.bytes(), nil
}

func newDictBlob(d *Dict, opts []WriteOption) (*blob, error) {
	raw, err := d.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return newBlob(KindDict, d.Count(), d.MaxKey(), raw, opts)
}

// DecodeDictBlob verifies and decodes a blob produced by EncodeDictBlob or
// WriteDictFile. The returned Dict does not reference data.
func DecodeDictBlob(data []byte) (*Dict, error) {
	h, raw, err := openBlob(data, KindDict)
	if err != nil {
		return nil, err
	}
	d := &Dict{}
	if err := d.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	if err := h.checkCounts(d); err != nil {
		return nil, err
	}
	return d, nil
}

// EncodeIndexBlob returns x wrapped in a checksummed, optionally compressed
// blob, encoding values with codec.
func EncodeIndexBlob[T any](x *Index[T], codec Codec[T], opts ...WriteOption) ([]byte, error) {
	b, err := newIndexBlob(x, codec, opts)
	if err != nil {
		return nil, err
	}
	return b.bytes(), nil
}

func newIndexBlob[T any](x *Index[T], codec Codec[T], opts []WriteOption) (*blob, error) {
	raw := AppendIndex(nil, x, codec)
	return newBlob(KindIndex, x.Dict().Count(), x.Dict().MaxKey(), raw, opts)
}

// DecodeIndexBlob verifies and decodes a blob produced by EncodeIndexBlob or
// WriteIndexFile. The returned Index does not reference data as long as
// codec copies what it decodes, as the built-in codecs do.
func DecodeIndexBlob[T any](data []byte, codec Codec[T]) (*Index[T], error) {
	h, raw, err := openBlob(data, KindIndex)
	if err != nil {
		return nil, err
	}
	x, n, err := DecodeIndex(raw, codec)
	if err != nil {
		return nil, err
	}
	if n != len(raw) {
		return nil, fmt.Errorf("%d trailing bytes after index: %w", len(raw)-n, succincterrors.ErrCorrupted)
	}
	if err := h.checkCounts(x.Dict()); err != nil {
		return nil, err
	}
	return x, nil
}

// WriteDictFile writes d to path as a blob file, replacing any existing
// file. On failure no partial file is left behind.
func WriteDictFile(path string, d *Dict, opts ...WriteOption) error {
	b, err := newDictBlob(d, opts)
	if err != nil {
		return err
	}
	return writeBlobFile(path, b)
}

// WriteIndexFile writes x to path as a blob file, encoding values with codec.
func WriteIndexFile[T any](path string, x *Index[T], codec Codec[T], opts ...WriteOption) error {
	b, err := newIndexBlob(x, codec, opts)
	if err != nil {
		return err
	}
	return writeBlobFile(path, b)
}

// ReadDictFile reads a blob file written by WriteDictFile.
func ReadDictFile(path string) (*Dict, error) {
	var d *Dict
	err := withMappedFile(path, func(data []byte) error {
		var err error
		d, err = DecodeDictBlob(data)
		return err
	})
	return d, err
}

// ReadIndexFile reads a blob file written by WriteIndexFile.
func ReadIndexFile[T any](path string, codec Codec[T]) (*Index[T], error) {
	var x *Index[T]
	err := withMappedFile(path, func(data []byte) error {
		var err error
		x, err = DecodeIndexBlob(data, codec)
		return err
	})
	return x, err
}

// FileInfo holds blob file statistics.
type FileInfo struct {
	Kind        BlobKind
	Compression CompressionType
	KeyCount    uint32
	MaxKey      uint32
	RawSize     uint64
	StoredSize  uint64
	FileSize    int64
	BitsPerKey  float64
}

// ReadFileInfo returns statistics for a blob file from its header. It does
// not verify checksums; use VerifyFile for that.
func ReadFileInfo(path string) (*FileInfo, error) {
	var info *FileInfo
	err := withMappedFile(path, func(data []byte) error {
		h, err := decodeHeader(data[:headerSize])
		if err != nil {
			return err
		}
		totalSize := int64(len(data))
		bitsPerKey := float64(0)
		if h.KeyCount > 0 {
			bitsPerKey = float64(totalSize*8) / float64(h.KeyCount)
		}
		info = &FileInfo{
			Kind:        h.Kind,
			Compression: h.Compression,
			KeyCount:    h.KeyCount,
			MaxKey:      h.MaxKey,
			RawSize:     h.RawSize,
			StoredSize:  h.StoredSize,
			FileSize:    totalSize,
			BitsPerKey:  bitsPerKey,
		}
		return nil
	})
	return info, err
}

// VerifyFile checks the integrity of a blob file of either kind: both
// checksums, the header cross-checks, and the dictionary structure. Index
// values are not decoded.
func VerifyFile(path string) error {
	return withMappedFile(path, func(data []byte) error {
		h, err := decodeHeader(data[:headerSize])
		if err != nil {
			return err
		}
		_, raw, err := openBlob(data, h.Kind)
		if err != nil {
			return err
		}
		d, _, err := DecodeDict(raw)
		if err != nil {
			return err
		}
		return h.checkCounts(d)
	})
}

// withMappedFile maps path read-only, calls fn with its contents and unmaps.
// fn must not retain data.
func withMappedFile(path string, fn func(data []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open blob file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat blob file: %w", err)
	}
	fileSize := stat.Size()
	if fileSize < minBlobSize {
		return fmt.Errorf("blob file of %d bytes: %w", fileSize, succincterrors.ErrTruncated)
	}

	fadviseSequential(int(file.Fd()), 0, fileSize)

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mmap blob file: %w", err)
	}
	fnErr := fn([]byte(mm))
	if err := mm.Unmap(); err != nil {
		return errors.Join(fnErr, fmt.Errorf("mmap unmap failed: %w", err))
	}
	return fnErr
}

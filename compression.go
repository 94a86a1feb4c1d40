package succinct

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	succincterrors "github.com/tamirms/succinct/errors"
)

// CompressionType selects how a blob payload is compressed.
type CompressionType uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast decode).
	CompressionLZ4 CompressionType = 1
	// CompressionZstd uses Zstandard (better ratio).
	CompressionZstd CompressionType = 2
)

func (c CompressionType) valid() bool {
	return c <= CompressionZstd
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names returned by CompressionType.String.
func ParseCompression(name string) (CompressionType, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, succincterrors.ErrUnknownCompression)
	}
}

// Zstd encoders and decoders are expensive to create; pool the default-level
// encoder and the decoder.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder(level int) (*zstd.Encoder, error) {
	if level == 0 {
		if v := zstdEncoderPool.Get(); v != nil {
			return v.(*zstd.Encoder), nil
		}
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

func putZstdEncoder(enc *zstd.Encoder, level int) {
	if level == 0 {
		zstdEncoderPool.Put(enc)
		return
	}
	_ = enc.Close()
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressPayload compresses raw with cfg's algorithm. When compression
// does not shrink the payload, raw is returned with CompressionNone.
func compressPayload(raw []byte, cfg *writeConfig) ([]byte, CompressionType, error) {
	if cfg.compression == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var compressed []byte
	switch cfg.compression {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buf[:n]
	case CompressionZstd:
		enc, err := getZstdEncoder(cfg.compressionLevel)
		if err != nil {
			return nil, 0, fmt.Errorf("zstd encoder: %w", err)
		}
		compressed = enc.EncodeAll(raw, nil)
		putZstdEncoder(enc, cfg.compressionLevel)
	default:
		return nil, 0, fmt.Errorf("%s: %w", cfg.compression, succincterrors.ErrUnknownCompression)
	}

	// n == 0 means lz4 found the input incompressible.
	if len(compressed) == 0 || len(compressed) >= len(raw) {
		return raw, CompressionNone, nil
	}
	return compressed, cfg.compression, nil
}

// decompressPayload reverses compressPayload. With CompressionNone the
// result aliases stored.
func decompressPayload(stored []byte, kind CompressionType, rawSize uint64) ([]byte, error) {
	switch kind {
	case CompressionNone:
		return stored, nil
	case CompressionLZ4:
		raw := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w: %w", succincterrors.ErrCorrupted, err)
		}
		if uint64(n) != rawSize {
			return nil, fmt.Errorf("lz4 decompressed %d bytes, want %d: %w", n, rawSize, succincterrors.ErrCorrupted)
		}
		return raw, nil
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer putZstdDecoder(dec)
		raw, err := dec.DecodeAll(stored, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w: %w", succincterrors.ErrCorrupted, err)
		}
		if uint64(len(raw)) != rawSize {
			return nil, fmt.Errorf("zstd decompressed %d bytes, want %d: %w", len(raw), rawSize, succincterrors.ErrCorrupted)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%s: %w", kind, succincterrors.ErrUnknownCompression)
	}
}

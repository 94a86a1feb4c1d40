package succinct

import (
	"io"
	"log/slog"
)

// WriteOption is a functional option for configuring blob writes.
type WriteOption func(*writeConfig)

// SnapshotOption is a functional option for configuring a Snapshot.
type SnapshotOption func(*snapshotConfig)

type writeConfig struct {
	compression      CompressionType
	compressionLevel int // zstd level; 0 selects the library default
}

func defaultWriteConfig() *writeConfig {
	return &writeConfig{
		compression: CompressionNone,
	}
}

// WithCompression sets the payload compression. Payloads that do not shrink
// are stored uncompressed regardless.
func WithCompression(c CompressionType) WriteOption {
	return func(cfg *writeConfig) {
		cfg.compression = c
	}
}

// WithCompressionLevel sets the zstd compression level (1-22). It has no
// effect on other algorithms.
func WithCompressionLevel(level int) WriteOption {
	return func(cfg *writeConfig) {
		cfg.compressionLevel = level
	}
}

type snapshotConfig struct {
	logger *slog.Logger
	name   string
}

func defaultSnapshotConfig() *snapshotConfig {
	return &snapshotConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger that records snapshot publishes.
// A nil logger keeps the default, which discards output.
func WithLogger(logger *slog.Logger) SnapshotOption {
	return func(c *snapshotConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithName labels log records of the snapshot.
func WithName(name string) SnapshotOption {
	return func(c *snapshotConfig) {
		c.name = name
	}
}

package spatial

import (
	"io"
	"log/slog"
)

const (
	// DefaultBlockSize is the edge length of a block in positions.
	DefaultBlockSize = 32
	// MaxBlockSize keeps local keys of a block within 30 bits.
	MaxBlockSize = 1024
)

// Option is a functional option for configuring an Index.
type Option func(*config)

type config struct {
	blockSize int
	workers   int
	logger    *slog.Logger
}

func defaultConfig() *config {
	return &config{
		blockSize: DefaultBlockSize,
		workers:   0, // Default to serial rebuilds; use WithWorkers(n) to parallelize
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithBlockSize sets the block edge length, in [1, MaxBlockSize].
func WithBlockSize(n int) Option {
	return func(c *config) {
		c.blockSize = n
	}
}

// WithWorkers sets the number of goroutines that rebuild blocks during
// Update and Remove. Values below 2 rebuild serially.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithLogger sets the logger that records batch rebuilds.
// A nil logger keeps the default, which discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

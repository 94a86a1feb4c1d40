// Package errors defines all exported error sentinels for the succinct library.
//
// This is the single source of truth for error values. The top-level
// succinct package and the spatial package import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Precondition errors. These are raised as panics by constructors that
// receive invalid arguments; the panic value wraps one of these sentinels.
var (
	ErrEmptyKeys     = errors.New("succinct: cannot build dictionary from zero keys")
	ErrCountMismatch = errors.New("succinct: dictionary key count does not match entry count")
)

// Decode errors
var (
	ErrTruncated = errors.New("succinct: encoded data is truncated")
	ErrCorrupted = errors.New("succinct: encoded data is corrupted")
)

// Blob file errors
var (
	ErrInvalidMagic       = errors.New("succinct: invalid magic number")
	ErrInvalidVersion     = errors.New("succinct: unsupported version")
	ErrWrongKind          = errors.New("succinct: blob holds a different structure kind")
	ErrChecksumFailed     = errors.New("succinct: blob checksum verification failed")
	ErrUnknownCompression = errors.New("succinct: unknown compression type")
)

// Snapshot and spatial errors
var (
	ErrInvalidBlockSize = errors.New("succinct: block size must be in [1, 1024]")
)

package succinct

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// blobWriter writes one blob file through a writable memory map.
// File layout: [Header 32B][Payload StoredSize B][Footer 16B]
type blobWriter struct {
	path string
	file *os.File
	mmap mmap.MMap // Memory-mapped region
	data []byte    // View into mmap for direct writes
}

// newBlobWriter creates path, pre-allocates size bytes and maps them for
// writing. size is exact: the blob layout is known before the file exists.
func newBlobWriter(path string, size uint64) (*blobWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := fallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("failed to allocate disk space: %w", err)
		return nil, errors.Join(primaryErr, file.Close(), os.Remove(path))
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("failed to mmap file: %w", err)
		return nil, errors.Join(primaryErr, file.Close(), os.Remove(path))
	}

	bw := &blobWriter{
		path: path,
		file: file,
		mmap: mm,
		data: []byte(mm),
	}

	// On Linux 5.14+, uses MADV_POPULATE_WRITE. No-op on other platforms.
	prefaultRegion(bw.data)
	return bw, nil
}

// finalize flushes the mapping and closes the file.
// On error, the partial file is removed.
func (bw *blobWriter) finalize() error {
	// Flush dirty pages to file (ensures writes visible before unmap)
	if err := bw.mmap.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, bw.abort())
	}

	// Nil mmap regardless of outcome to prevent abort() from retrying.
	unmapErr := bw.mmap.Unmap()
	bw.mmap = nil
	bw.data = nil
	if unmapErr != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", unmapErr)
		return errors.Join(primaryErr, bw.abort())
	}

	if err := bw.file.Sync(); err != nil {
		primaryErr := fmt.Errorf("sync failed: %w", err)
		return errors.Join(primaryErr, bw.abort())
	}

	closeErr := bw.file.Close()
	bw.file = nil
	if closeErr != nil {
		return errors.Join(closeErr, bw.abort())
	}
	return nil
}

// abort releases the mapping and file and removes the partial file.
// Idempotent: safe to call multiple times.
func (bw *blobWriter) abort() error {
	var unmapErr error
	if bw.mmap != nil {
		unmapErr = bw.mmap.Unmap()
		bw.mmap = nil
		bw.data = nil
	}
	var closeErr error
	if bw.file != nil {
		closeErr = bw.file.Close()
		bw.file = nil
	}
	var removeErr error
	if bw.path != "" {
		if err := os.Remove(bw.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			removeErr = err
		}
		bw.path = ""
	}
	return errors.Join(unmapErr, closeErr, removeErr)
}

// writeBlobFile writes a complete blob to path.
func writeBlobFile(path string, b *blob) error {
	bw, err := newBlobWriter(path, b.header.blobSize())
	if err != nil {
		return err
	}
	b.putTo(bw.data)
	return bw.finalize()
}

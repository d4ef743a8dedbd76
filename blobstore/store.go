package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for reading and writing cell artifacts.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create creates a blob for writing. The blob becomes visible under name
	// only when the returned writer is closed successfully.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob in one call.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader for length bytes starting at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.Writer
	// Close commits the blob.
	Close() error
	// Sync flushes buffered data to durable storage where supported.
	Sync() error
	// Abort discards everything written so far. The blob is not created.
	Abort() error
}

// OpenReader opens name and returns a reader over the whole blob.
func OpenReader(ctx context.Context, store BlobStore, name string) (io.ReadCloser, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if b.Size() == 0 {
		_ = b.Close()
		return io.NopCloser(eofReader{}), nil
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &blobReader{ReadCloser: rc, blob: b}, nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

type blobReader struct {
	io.ReadCloser
	blob Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteTo creates name and streams fn's output into it. The blob is aborted
// when fn fails, so no partial blob is ever visible.
func WriteTo(ctx context.Context, store BlobStore, name string, fn func(w io.Writer) error) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

package blobstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const tempPrefix = ".tmp-"

// LocalStore implements BlobStore using the local file system. Blob names
// use forward slashes and are resolved below root. An empty root resolves
// names as plain paths.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrNotFound}
	}
	return &localBlob{f: f, size: fi.Size()}, nil
}

// Create creates a blob for writing. Data goes to a temporary file next to
// the target which is renamed into place on Close.
func (s *LocalStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := s.path(name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, tempPrefix+uuid.NewString()))
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{f: f, target: target}, nil
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

// Delete removes a blob.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(s.path(name))
}

// List returns all blobs matching the prefix. The directory part of prefix
// is walked recursively; temporary files of unfinished writes are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimPrefix(prefix, "./")
	base := s.path(path.Dir(prefix))

	var names []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == base {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		name := p
		if s.root != "" {
			if name, err = filepath.Rel(s.root, p); err != nil {
				return err
			}
		}
		name = filepath.ToSlash(name)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	f    *os.File
	size int64
}

func (b *localBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.f.ReadAt(p, off)
}

func (b *localBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if off+length > b.size {
		length = b.size - off
	}
	return io.NopCloser(io.NewSectionReader(b.f, off, length)), nil
}

func (b *localBlob) Close() error {
	return b.f.Close()
}

func (b *localBlob) Size() int64 {
	return b.size
}

type localWritableBlob struct {
	f      *os.File
	target string
	done   atomic.Bool
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	if w.done.Load() {
		return 0, os.ErrClosed
	}
	return w.f.Write(p)
}

func (w *localWritableBlob) Sync() error {
	return w.f.Sync()
}

func (w *localWritableBlob) Close() error {
	if !w.done.CompareAndSwap(false, true) {
		return os.ErrClosed
	}
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.f.Name())
		return err
	}
	if err := os.Rename(w.f.Name(), w.target); err != nil {
		_ = os.Remove(w.f.Name())
		return err
	}
	return nil
}

func (w *localWritableBlob) Abort() error {
	if !w.done.CompareAndSwap(false, true) {
		return nil
	}
	_ = w.f.Close()
	return os.Remove(w.f.Name())
}

package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps artifacts in a map. It backs tests and short-lived
// pipelines that never need to persist cell sets.
//
// Stored contents are never modified in place, so open blobs keep reading
// the version they were opened on while a newer one is written.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("memory: open %s: %w", name, ErrNotFound)
	}
	return memoryBlob(data), nil
}

// Create returns a writer whose content replaces name on Close.
func (m *MemoryStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memoryWriter{store: m, name: name}, nil
}

func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.store(name, slices.Clone(data))
	return nil
}

func (m *MemoryStore) store(name string, data []byte) {
	m.mu.Lock()
	m.blobs[name] = data
	m.mu.Unlock()
}

// Delete removes name. Deleting a missing artifact fails with ErrNotFound,
// like LocalStore.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[name]; !ok {
		return fmt.Errorf("memory: delete %s: %w", name, ErrNotFound)
	}
	delete(m.blobs, name)
	return nil
}

// List returns the sorted names starting with prefix.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// memoryBlob is an immutable snapshot of a stored artifact.
type memoryBlob []byte

func (b memoryBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return bytes.NewReader(b).ReadAt(p, off)
}

func (b memoryBlob) Close() error { return nil }

func (b memoryBlob) Size() int64 { return int64(len(b)) }

func (b memoryBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b)) {
		return nil, io.EOF
	}
	return io.NopCloser(io.NewSectionReader(bytes.NewReader(b), off, length)), nil
}

// memoryWriter buffers an artifact until Close publishes it.
type memoryWriter struct {
	store *MemoryStore
	name  string
	buf   bytes.Buffer
	done  bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	w.store.store(w.name, slices.Clone(w.buf.Bytes()))
	return nil
}

func (w *memoryWriter) Sync() error { return nil }

// Abort drops the buffered content; a later Close publishes nothing.
func (w *memoryWriter) Abort() error {
	w.done = true
	w.buf.Reset()
	return nil
}

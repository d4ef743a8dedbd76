package blobstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := t.Context()

	// 1. Create a blob
	blobName := "regions/zone-a.h3idz"
	data := []byte("hello world, this is a test blob for hexzone")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close
	_, err = os.Stat(filepath.Join(tmpDir, "regions", "zone-a.h3idz"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(tmpDir, "regions", "zone-a.h3idz"))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadRange: "this" at offset 13
	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	// 4. List, recursive and sorted
	require.NoError(t, store.Put(ctx, "regions/zone-b.h3idz", []byte("b")))
	require.NoError(t, store.Put(ctx, "countries.h3map", []byte("c")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"countries.h3map", "regions/zone-a.h3idz", "regions/zone-b.h3idz"}, names)

	names, err = store.List(ctx, "regions/zone-b")
	require.NoError(t, err)
	require.Equal(t, []string{"regions/zone-b.h3idz"}, names)

	names, err = store.List(ctx, "missing/")
	require.NoError(t, err)
	require.Empty(t, names)

	// 5. Delete
	require.NoError(t, store.Delete(ctx, blobName))

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "boundary.bin", data))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Case 1: Read full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.Equal(t, data, content)

	// Case 2: Read past end
	r, err = blob.ReadRange(ctx, 8, 5)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Case 3: Offset past EOF
	_, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)

	n, err := blob.ReadAt(ctx, make([]byte, 4), 8)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalBlobStore_Abort(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := t.Context()

	require.NoError(t, store.Put(ctx, "out.h3idz", []byte("old")))

	boom := errors.New("boom")
	err := WriteTo(ctx, store, "out.h3idz", func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// the previous content survives and no temp file is left behind
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rc, err := OpenReader(ctx, store, "out.h3idz")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "old", string(got))
}

func TestLocalBlobStore_EmptyRoot(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore("")
	ctx := t.Context()

	name := filepath.ToSlash(filepath.Join(dir, "plain.bin"))
	require.NoError(t, store.Put(ctx, name, []byte("abc")))

	names, err := store.List(ctx, filepath.ToSlash(dir)+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, int64(3), blob.Size())
	require.NoError(t, blob.Close())
}

func TestOpenReader_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "empty", nil))

	rc, err := OpenReader(ctx, store, "empty")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, rc.Close())

	_, err = OpenReader(ctx, store, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

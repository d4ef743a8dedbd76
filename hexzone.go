package hexzone

import (
	"bytes"
	"context"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hexzone/blobstore"
	"github.com/hupe1980/hexzone/cellset"
	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/resource"
)

// Client runs region and country operations against a BlobStore.
//
// A Client holds no mutable state besides its options and is safe for
// concurrent use.
type Client struct {
	store blobstore.BlobStore
	opts  options
}

// New returns a Client reading and writing artifacts in store.
func New(store blobstore.BlobStore, optFns ...Option) *Client {
	return &Client{
		store: store,
		opts:  applyOptions(optFns),
	}
}

// Store returns the store the client operates on.
func (c *Client) Store() blobstore.BlobStore {
	return c.store
}

// List returns the sorted names of all artifacts below prefix that carry
// the configured extension.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	return c.list(ctx, prefix, c.opts.extension)
}

func (c *Client) list(ctx context.Context, prefix, ext string) ([]string, error) {
	names, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, translateError(prefix, err)
	}
	out := names[:0]
	for _, name := range names {
		if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
			out = append(out, name)
		}
	}
	return out, nil
}

// artifact is an open blob being read. Closing it releases the load slot
// and the memory reserved for it.
type artifact struct {
	io.Reader
	body io.ReadCloser
	blob blobstore.Blob
	rc   *resource.Controller
	size int64
}

func (a *artifact) Close() error {
	var err error
	if a.body != nil {
		err = a.body.Close()
	}
	if cerr := a.blob.Close(); err == nil {
		err = cerr
	}
	a.rc.ReleaseMemory(a.size)
	a.rc.ReleaseLoad()
	return err
}

func (c *Client) open(ctx context.Context, name string) (*artifact, error) {
	rc := c.opts.controller
	if err := rc.AcquireLoad(ctx); err != nil {
		return nil, err
	}
	blob, err := c.store.Open(ctx, name)
	if err != nil {
		rc.ReleaseLoad()
		return nil, translateError(name, err)
	}
	size := blob.Size()
	if err := rc.AcquireMemory(ctx, size); err != nil {
		_ = blob.Close()
		rc.ReleaseLoad()
		return nil, translateError(name, err)
	}

	a := &artifact{Reader: bytes.NewReader(nil), blob: blob, rc: rc, size: size}
	if size > 0 {
		body, err := blob.ReadRange(ctx, 0, size)
		if err != nil {
			_ = a.Close()
			return nil, translateError(name, err)
		}
		a.body = body
		a.Reader = resource.NewRateLimitedReader(ctx, body, rc)
	}
	return a, nil
}

func (c *Client) loadCells(ctx context.Context, name string) (cellset.CellSet, error) {
	a, err := c.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	set, err := codec.ReadCells(a, c.opts.readOptions()...)
	if err != nil {
		return nil, translateError(name, err)
	}
	return set, nil
}

// loadAll reads the named cell sets in parallel. The result is in the order
// of names.
func (c *Client) loadAll(ctx context.Context, names []string) ([]cellset.CellSet, error) {
	sets := make([]cellset.CellSet, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers)
	for i, name := range names {
		g.Go(func() error {
			set, err := c.loadCells(ctx, name)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *Client) storeCells(ctx context.Context, name string, set cellset.CellSet) error {
	err := blobstore.WriteTo(ctx, c.store, name, func(w io.Writer) error {
		return codec.WriteCells(resource.NewRateLimitedWriter(ctx, w, c.opts.controller), set, c.opts.writeOptions()...)
	})
	return translateError(name, err)
}

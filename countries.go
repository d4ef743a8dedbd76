package hexzone

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hexzone/blobstore"
	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/country"
	"github.com/hupe1980/hexzone/geo"
	"github.com/hupe1980/hexzone/hextree"
	"github.com/hupe1980/hexzone/resource"
)

// GeoJSONExtension is the extension of country boundary files.
const GeoJSONExtension = ".geojson"

type countryFile struct {
	name string
	code country.Code
}

// GenerateCountries builds a cell map from the boundary files below prefix.
// Each file is named after the ISO 3166-1 alpha-3 code of its country, e.g.
// "DEU.geojson"; files with any other name are skipped with a warning. The
// map is written to output and the number of stored cells is returned.
//
// Workers rasterize one file each into a map of their own. The maps are
// merged in file name order once all workers are done, so where boundaries
// overlap the file sorting last owns the shared cells.
func (c *Client) GenerateCountries(ctx context.Context, prefix, output string, res int) (nodes int, err error) {
	start := time.Now()
	var files, skipped int
	defer func() {
		elapsed := time.Since(start)
		c.opts.metricsCollector.RecordCountries(files, nodes, elapsed, err)
		c.opts.logger.LogCountries(ctx, output, files, skipped, nodes, err)
	}()

	if err := cell.ValidateResolution(res); err != nil {
		return 0, err
	}

	names, err := c.list(ctx, prefix, GeoJSONExtension)
	if err != nil {
		return 0, err
	}
	slices.Sort(names)
	var inputs []countryFile
	for _, name := range names {
		stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
		code, err := country.ParseAlpha3(strings.ToUpper(stem))
		if err != nil {
			c.opts.logger.WarnContext(ctx, "skipping boundary file", "file", name, "error", err)
			skipped++
			continue
		}
		inputs = append(inputs, countryFile{name: name, code: code})
	}
	files = len(inputs)
	if files == 0 {
		return 0, fmt.Errorf("%w: no country boundary files below %q", ErrNoInput, prefix)
	}

	parts := make([]*hextree.Map[country.Code], len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers)
	for i, in := range inputs {
		g.Go(func() error {
			cells, err := c.rasterizeFile(gctx, in.name, res)
			if err != nil {
				return err
			}
			part := hextree.New[country.Code](hextree.EqCompactor[country.Code])
			for _, cl := range cells {
				part.Insert(cl, in.code)
			}
			parts[i] = part
			c.opts.logger.DebugContext(gctx, "country rasterized", "country", in.code.Alpha3(), "cells", len(cells))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	m := hextree.New[country.Code](hextree.EqCompactor[country.Code])
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		m.Merge(part)
	}

	err = blobstore.WriteTo(ctx, c.store, output, func(w io.Writer) error {
		return codec.WriteMap[country.Code](resource.NewRateLimitedWriter(ctx, w, c.opts.controller), m, country.Codec{}, c.opts.writeOptions()...)
	})
	if err != nil {
		return 0, translateError(output, err)
	}
	return m.Len(), nil
}

func (c *Client) rasterizeFile(ctx context.Context, name string, res int) ([]cell.Cell, error) {
	a, err := c.open(ctx, name)
	if err != nil {
		return nil, err
	}
	g, err := geo.ReadGeoJSON(a)
	_ = a.Close()
	if err != nil {
		return nil, translateError(name, err)
	}

	polys, err := geo.Polygons(g)
	if err != nil {
		return nil, translateError(name, err)
	}
	chunks, err := geo.Rasterize(ctx, polys, res, 1)
	if err != nil {
		return nil, translateError(name, err)
	}
	return slices.Concat(chunks...), nil
}

// LoadCountries reads a country map written by GenerateCountries.
func (c *Client) LoadCountries(ctx context.Context, input string) (*hextree.Map[country.Code], error) {
	a, err := c.open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	m, err := codec.ReadMap[country.Code](a, country.Codec{}, hextree.EqCompactor[country.Code], c.opts.readOptions()...)
	if err != nil {
		return nil, translateError(input, err)
	}
	return m, nil
}

// FindCountries looks up every cell in the country map input. The result
// maps the string form of each cell lying inside a country to the country's
// alpha-3 code; cells outside every country are left out.
func (c *Client) FindCountries(ctx context.Context, input string, cells []cell.Cell) (map[string]string, error) {
	for _, cl := range cells {
		if err := cl.Validate(); err != nil {
			return nil, err
		}
	}

	m, err := c.LoadCountries(ctx, input)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(cells))
	for _, cl := range cells {
		if code, ok := m.Get(cl); ok {
			out[cl.String()] = code.Alpha3()
		}
	}
	return out, nil
}

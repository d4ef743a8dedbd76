package hexzone

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hexzone/cell"
	"github.com/hupe1980/hexzone/cellset"
	"github.com/hupe1980/hexzone/geo"
	"github.com/hupe1980/hexzone/hextree"
	"github.com/hupe1980/hexzone/overlap"
)

// GenerateRegion reads a GeoJSON document from r, fills its polygons with
// cells of resolution res, compacts them and writes the set to output.
// Nothing is written when any step fails.
func (c *Client) GenerateRegion(ctx context.Context, r io.Reader, output string, res int) (set cellset.CellSet, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		c.opts.metricsCollector.RecordGenerate(len(set), elapsed, err)
		c.opts.logger.LogGenerate(ctx, output, res, len(set), elapsed, err)
	}()

	if err := cell.ValidateResolution(res); err != nil {
		return nil, err
	}

	g, err := geo.ReadGeoJSON(r)
	if err != nil {
		return nil, err
	}
	polys, err := geo.Polygons(g)
	if err != nil {
		return nil, err
	}

	chunks, err := geo.Rasterize(ctx, polys, res, c.opts.workers)
	if err != nil {
		return nil, err
	}
	set, err = cellset.MergeChunks(ctx, chunks, c.opts.workers)
	if err != nil {
		return nil, err
	}

	if err := c.storeCells(ctx, output, set); err != nil {
		return nil, err
	}
	return set, nil
}

// ExportRegion reads the cell set input, expands it to its cover at
// resolution res and writes the cells as a GeoJSON feature collection to w.
func (c *Client) ExportRegion(ctx context.Context, input string, res int, w io.Writer) (err error) {
	var n int
	defer func() { c.opts.logger.LogExport(ctx, input, res, n, err) }()

	set, err := c.loadCells(ctx, input)
	if err != nil {
		return err
	}
	leaves, err := cellset.Uncompact(set, res)
	if err != nil {
		return translateError(input, err)
	}
	n = len(leaves)
	return geo.WriteGeoJSON(w, leaves)
}

// FindMode selects which stored cells match a needle.
type FindMode int

const (
	// FindContains matches regions storing the needle or one of its
	// ancestors, i.e. regions containing the needle's whole area.
	FindContains FindMode = iota
	// FindIntersects also matches regions storing a descendant of the
	// needle, i.e. regions sharing any area with it.
	FindIntersects
)

func (m FindMode) String() string {
	switch m {
	case FindContains:
		return "contains"
	case FindIntersects:
		return "intersects"
	default:
		return fmt.Sprintf("FindMode(%d)", int(m))
	}
}

// ParseFindMode parses "contains" or "intersects".
func ParseFindMode(s string) (FindMode, error) {
	switch strings.ToLower(s) {
	case "", "contains":
		return FindContains, nil
	case "intersects":
		return FindIntersects, nil
	default:
		return 0, fmt.Errorf("unknown find mode %q", s)
	}
}

// Find tests every needle against every cell set below prefix. The result
// maps each needle's string form to the sorted names of the matching sets;
// needles without a match map to an empty list. Repeated needles are
// answered once.
func (c *Client) Find(ctx context.Context, needles []cell.Cell, prefix string, mode FindMode) (result map[string][]string, err error) {
	start := time.Now()
	var files, matches int
	defer func() {
		c.opts.metricsCollector.RecordFind(len(needles), matches, time.Since(start), err)
		c.opts.logger.LogFind(ctx, len(needles), files, matches, err)
	}()

	if len(needles) == 0 {
		return nil, fmt.Errorf("%w: no cells to find", ErrNoInput)
	}
	for _, n := range needles {
		if err := n.Validate(); err != nil {
			return nil, err
		}
	}
	needles = cellset.Dedup(slices.Clone(needles))

	names, err := c.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	files = len(names)

	hits := make([][]cell.Cell, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.workers)
	for i, name := range names {
		g.Go(func() error {
			set, err := c.loadCells(gctx, name)
			if err != nil {
				return err
			}
			tree := hextree.FromCells(set)
			for _, n := range needles {
				if (mode == FindIntersects && tree.Intersects(n)) || tree.Contains(n) {
					hits[i] = append(hits[i], n)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result = make(map[string][]string, len(needles))
	for _, n := range needles {
		result[n.String()] = []string{}
	}
	for i, name := range names {
		for _, n := range hits[i] {
			result[n.String()] = append(result[n.String()], name)
			matches++
		}
	}
	return result, nil
}

// Overlaps reads the named cell sets and reports every pair of cells shared
// between two of them. Region names in the report are the artifact names.
func (c *Client) Overlaps(ctx context.Context, names []string) (report overlap.Report, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		c.opts.metricsCollector.RecordOverlaps(len(names), report.Conflicts(), elapsed, err)
		c.opts.logger.LogOverlaps(ctx, len(names), report.Conflicts(), elapsed, err)
	}()

	sets, err := c.loadAll(ctx, names)
	if err != nil {
		return nil, err
	}
	regions := make([]overlap.Region, len(names))
	for i, name := range names {
		regions[i] = overlap.Region{Name: name, Cells: sets[i]}
	}

	return overlap.Detect(ctx, regions,
		overlap.WithStrategy(c.opts.strategy),
		overlap.WithWorkers(c.opts.workers),
	)
}

// LookupResult names the region containing a cell.
type LookupResult struct {
	Cell   cell.Cell `json:"cell"`
	Region string    `json:"region"`
	// Stored is the cell of the region that covers Cell.
	Stored cell.Cell `json:"stored"`
}

// Lookup returns the first region, in the order of names, holding target or
// one of its ancestors. It returns an error wrapping ErrNotFound when no
// region contains target.
func (c *Client) Lookup(ctx context.Context, target cell.Cell, names []string) (res LookupResult, err error) {
	start := time.Now()
	defer func() {
		c.opts.metricsCollector.RecordLookup(time.Since(start), err)
		c.opts.logger.LogLookup(ctx, target.String(), res.Region, err)
	}()

	if err := target.Validate(); err != nil {
		return LookupResult{}, err
	}

	sets, err := c.loadAll(ctx, names)
	if err != nil {
		return LookupResult{}, err
	}
	for i, set := range sets {
		if stored, ok := hextree.FromCells(set).Lookup(target); ok {
			return LookupResult{Cell: target, Region: names[i], Stored: stored}, nil
		}
	}
	return LookupResult{}, fmt.Errorf("%w: no region contains %s", ErrNotFound, target)
}

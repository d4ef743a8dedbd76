// Package overlap detects cells shared by named regions.
//
// Two cells overlap when they are equal or one is an ancestor of the other.
// Detect compares every unordered pair of distinct regions exactly once and
// reports, per pair, every overlapping pair of cells.
//
// Two strategies are available. Indexed (the default) loads each region into
// a 64-bit roaring bitmap and checks the at most sixteen ancestors of every
// cell of the other region. Scan compares the cells of the smaller region
// against every cell of the larger one, spreading the outer cells over a
// worker pool. Both produce identical reports.
package overlap

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hexzone/cell"
)

// ErrDuplicateRegion is returned when two regions share a name.
var ErrDuplicateRegion = errors.New("duplicate region name")

// Region is a named set of cells.
type Region struct {
	Name  string
	Cells []cell.Cell
}

// Strategy selects the overlap algorithm.
type Strategy int

const (
	// Indexed looks up per-region bitmaps with cell ancestors.
	Indexed Strategy = iota
	// Scan compares cells pairwise.
	Scan
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Indexed:
		return "indexed"
	case Scan:
		return "scan"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", "indexed":
		return Indexed, nil
	case "scan":
		return Scan, nil
	default:
		return 0, fmt.Errorf("unknown overlap strategy %q", name)
	}
}

type options struct {
	strategy  Strategy
	workers   int
	chunkSize int
}

// Option configures Detect.
type Option func(*options)

// WithStrategy selects the algorithm. The default is Indexed.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithWorkers bounds the number of goroutines used by Detect.
// Values <= 0 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithChunkSize sets how many outer cells one Scan task handles.
// Values <= 0 select the default of 1024.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

const defaultChunkSize = 1024

// Detect reports the overlaps between every pair of distinct regions.
//
// Region names must be unique. For regions i < j the report is keyed
// report[regions[i].Name][regions[j].Name] and every Pair holds the cell of
// region i in A and the cell of region j in B. Pairs are sorted and region
// pairs without overlap are absent.
func Detect(ctx context.Context, regions []Region, optFns ...Option) (Report, error) {
	opts := options{strategy: Indexed}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.workers <= 0 {
		opts.workers = runtime.GOMAXPROCS(0)
	}
	if opts.chunkSize <= 0 {
		opts.chunkSize = defaultChunkSize
	}

	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if _, ok := seen[r.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRegion, r.Name)
		}
		seen[r.Name] = struct{}{}
		for _, c := range r.Cells {
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("region %q: %w", r.Name, err)
			}
		}
	}

	var (
		results [][]Pair
		err     error
	)
	switch opts.strategy {
	case Indexed:
		results, err = detectIndexed(ctx, regions, opts)
	case Scan:
		results, err = detectScan(ctx, regions, opts)
	default:
		return nil, fmt.Errorf("unknown overlap strategy %v", opts.strategy)
	}
	if err != nil {
		return nil, err
	}

	report := make(Report)
	k := 0
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			pairs := results[k]
			k++
			if len(pairs) == 0 {
				continue
			}
			sortPairs(pairs)
			report.add(regions[i].Name, regions[j].Name, pairs)
		}
	}
	return report, nil
}

func pairCount(n int) int {
	return n * (n - 1) / 2
}

// detectIndexed evaluates region pairs concurrently. results[k] belongs to
// the k-th pair (i, j) in row-major order.
func detectIndexed(ctx context.Context, regions []Region, opts options) ([][]Pair, error) {
	bitmaps := make([]*roaring64.Bitmap, len(regions))
	for i, r := range regions {
		bm := roaring64.New()
		for _, c := range r.Cells {
			bm.Add(uint64(c))
		}
		bitmaps[i] = bm
	}

	results := make([][]Pair, pairCount(len(regions)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	k := 0
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			slot := k
			k++
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[slot] = indexedPairs(regions[i].Cells, bitmaps[i], regions[j].Cells, bitmaps[j])
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// indexedPairs finds every related (x, y) with x in xs and y in ys.
// Equal cells are found from the x side only.
func indexedPairs(xs []cell.Cell, xbm *roaring64.Bitmap, ys []cell.Cell, ybm *roaring64.Bitmap) []Pair {
	var pairs []Pair
	for _, x := range xs {
		for res := x.Resolution(); res >= 0; res-- {
			if a := x.ParentAt(res); ybm.Contains(uint64(a)) {
				pairs = append(pairs, Pair{A: x, B: a})
			}
		}
	}
	for _, y := range ys {
		for res := y.Resolution() - 1; res >= 0; res-- {
			if a := y.ParentAt(res); xbm.Contains(uint64(a)) {
				pairs = append(pairs, Pair{A: a, B: y})
			}
		}
	}
	return pairs
}

// detectScan evaluates region pairs one after another, parallelizing the
// outer loop of each pair over chunks.
func detectScan(ctx context.Context, regions []Region, opts options) ([][]Pair, error) {
	results := make([][]Pair, 0, pairCount(len(regions)))
	for i := range regions {
		for j := i + 1; j < len(regions); j++ {
			pairs, err := scanPairs(ctx, regions[i].Cells, regions[j].Cells, opts)
			if err != nil {
				return nil, err
			}
			results = append(results, pairs)
		}
	}
	return results, nil
}

func scanPairs(ctx context.Context, xs, ys []cell.Cell, opts options) ([]Pair, error) {
	outer, inner, swapped := xs, ys, false
	if len(ys) < len(xs) {
		outer, inner, swapped = ys, xs, true
	}

	chunks := slices.Collect(slices.Chunk(outer, opts.chunkSize))
	partial := make([][]Pair, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)
	for n, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var pairs []Pair
			for _, o := range chunk {
				for _, in := range inner {
					if !cell.Related(o, in) {
						continue
					}
					if swapped {
						pairs = append(pairs, Pair{A: in, B: o})
					} else {
						pairs = append(pairs, Pair{A: o, B: in})
					}
				}
			}
			partial[n] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(partial...), nil
}

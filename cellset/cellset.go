// Package cellset provides canonical cell sets and their compaction.
//
// A CellSet is canonical when it is sorted by resolution, then by index, and
// holds no duplicates. Compact additionally guarantees an antichain: no cell
// of the result is an ancestor of another, and no complete family of siblings
// survives without being replaced by its parent.
package cellset

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hexzone/cell"
)

// ErrResolutionTooCoarse is returned by Uncompact when the set contains a cell
// finer than the requested resolution.
var ErrResolutionTooCoarse = errors.New("resolution too coarse")

// CellSet is a collection of cells in canonical order.
type CellSet []cell.Cell

// Sort sorts cells in place into canonical order.
func Sort(cells []cell.Cell) {
	slices.SortFunc(cells, cell.Compare)
}

// Dedup sorts cells and removes duplicates. The backing array is reused.
func Dedup(cells []cell.Cell) []cell.Cell {
	Sort(cells)
	return slices.Compact(cells)
}

// IsCanonical reports whether cells are strictly increasing in canonical
// order, which also rules out duplicates.
func IsCanonical(cells []cell.Cell) bool {
	for i := 1; i < len(cells); i++ {
		if cell.Compare(cells[i-1], cells[i]) >= 0 {
			return false
		}
	}
	return true
}

// IsAntichain reports whether no cell of cells is a strict ancestor of
// another one.
func IsAntichain(cells []cell.Cell) bool {
	present := make(map[cell.Cell]struct{}, len(cells))
	for _, c := range cells {
		present[c] = struct{}{}
	}
	for _, c := range cells {
		if hasAncestor(present, c) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b hold the same cells in the same order.
func Equal(a, b []cell.Cell) bool {
	return slices.Equal(a, b)
}

func hasAncestor(present map[cell.Cell]struct{}, c cell.Cell) bool {
	for res := c.Resolution() - 1; res >= 0; res-- {
		if _, ok := present[c.ParentAt(res)]; ok {
			return true
		}
	}
	return false
}

// Compact returns the canonical antichain covering exactly the same area as
// cells.
//
// Every input must be a valid cell; the first invalid one is returned as a
// *cell.InvalidCellError. Duplicates and cells already covered by another
// input cell are dropped. Then, from resolution 15 up to 1, any complete
// family of siblings is replaced by its parent, which takes part in the next
// coarser round. Pentagon families are complete with six members.
//
// The input slice is not modified. The result does not depend on the input
// order and Compact(Compact(s)) equals Compact(s).
func Compact(cells []cell.Cell) (CellSet, error) {
	for _, c := range cells {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if len(cells) == 0 {
		return CellSet{}, nil
	}

	sorted := Dedup(slices.Clone(cells))

	present := make(map[cell.Cell]struct{}, len(sorted))
	for _, c := range sorted {
		present[c] = struct{}{}
	}

	covered := bitset.New(uint(len(sorted)))
	for i, c := range sorted {
		if hasAncestor(present, c) {
			covered.Set(uint(i))
		}
	}

	var levels [cell.MaxResolution + 1][]cell.Cell
	for i, c := range sorted {
		if covered.Test(uint(i)) {
			continue
		}
		res := c.Resolution()
		levels[res] = append(levels[res], c)
	}

	for res := cell.MaxResolution; res > 0; res-- {
		levels[res] = compactLevel(levels[res], res, &levels[res-1])
	}

	out := make(CellSet, 0, len(sorted)-int(covered.Count()))
	for _, level := range levels {
		out = append(out, level...)
	}
	return out, nil
}

// compactLevel replaces complete sibling families of one resolution by their
// parents, appending the parents to coarser. It returns the cells that stay.
func compactLevel(level []cell.Cell, res int, coarser *[]cell.Cell) []cell.Cell {
	if len(level) == 0 {
		return level
	}
	// Cells of one resolution order like their raw ids, and siblings are
	// adjacent in that order.
	slices.Sort(level)
	level = slices.Compact(level)

	kept := level[:0]
	promoted := false
	for start := 0; start < len(level); {
		parent := level[start].ParentAt(res - 1)
		end := start + 1
		for end < len(level) && level[end].ParentAt(res-1) == parent {
			end++
		}
		if end-start == parent.ChildCount() {
			*coarser = append(*coarser, parent)
			promoted = true
		} else {
			kept = append(kept, level[start:end]...)
		}
		start = end
	}
	if promoted {
		slices.Sort(*coarser)
	}
	return kept
}

// Uncompact expands set into the cells at resolution res covering the same
// area, in canonical order. It fails with ErrResolutionTooCoarse if a cell of
// set is finer than res.
func Uncompact(set []cell.Cell, res int) (CellSet, error) {
	if err := cell.ValidateResolution(res); err != nil {
		return nil, err
	}
	for _, c := range set {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.Resolution() > res {
			return nil, fmt.Errorf("%w: cell %s has resolution %d, want at most %d", ErrResolutionTooCoarse, c, c.Resolution(), res)
		}
	}

	out := make(CellSet, 0, len(set))
	for _, c := range set {
		out = appendDescendants(out, c, res)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func appendDescendants(dst []cell.Cell, c cell.Cell, res int) []cell.Cell {
	if c.Resolution() == res {
		return append(dst, c)
	}
	for _, d := range c.ChildDigits() {
		dst = appendDescendants(dst, c.Child(d), res)
	}
	return dst
}

// MergeChunks compacts each chunk on its own worker, then compacts the union
// of the partial results. workers <= 0 means one worker per chunk.
func MergeChunks(ctx context.Context, chunks [][]cell.Cell, workers int) (CellSet, error) {
	partial := make([]CellSet, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := Compact(chunk)
			if err != nil {
				return err
			}
			partial[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, p := range partial {
		total += len(p)
	}
	union := make([]cell.Cell, 0, total)
	for _, p := range partial {
		union = append(union, p...)
	}
	return Compact(union)
}

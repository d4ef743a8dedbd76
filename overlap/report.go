package overlap

import (
	"slices"

	json "github.com/goccy/go-json"

	"github.com/hupe1980/hexzone/cell"
)

// Pair is one overlap between two regions: A belongs to the region of the
// outer report key, B to the region of the inner key.
type Pair struct {
	A cell.Cell
	B cell.Cell
}

// MarshalJSON encodes the pair as a two-element array of cell strings.
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]cell.Cell{p.A, p.B})
}

// UnmarshalJSON decodes a two-element array of cell strings.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var cells [2]cell.Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	p.A, p.B = cells[0], cells[1]
	return nil
}

func comparePairs(a, b Pair) int {
	if c := cell.Compare(a.A, b.A); c != 0 {
		return c
	}
	return cell.Compare(a.B, b.B)
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, comparePairs)
}

// Report maps a region name to the regions it overlaps and the overlapping
// cell pairs.
type Report map[string]map[string][]Pair

func (r Report) add(a, b string, pairs []Pair) {
	inner, ok := r[a]
	if !ok {
		inner = make(map[string][]Pair)
		r[a] = inner
	}
	inner[b] = append(inner[b], pairs...)
}

// Empty reports whether no overlap was found.
func (r Report) Empty() bool {
	return r.Conflicts() == 0
}

// Conflicts returns the total number of overlapping cell pairs.
func (r Report) Conflicts() int {
	var n int
	for _, inner := range r {
		for _, pairs := range inner {
			n += len(pairs)
		}
	}
	return n
}

// Canonical returns a copy of the report in which every region pair is keyed
// by the lexicographically smaller name, with pairs oriented and sorted to
// match. Canonical reports of the same regions are equal whatever order the
// regions were given in.
func (r Report) Canonical() Report {
	out := make(Report, len(r))
	for a, inner := range r {
		for b, pairs := range inner {
			if len(pairs) == 0 {
				continue
			}
			if a <= b {
				out.add(a, b, pairs)
				continue
			}
			swapped := make([]Pair, len(pairs))
			for i, p := range pairs {
				swapped[i] = Pair{A: p.B, B: p.A}
			}
			out.add(b, a, swapped)
		}
	}
	for _, inner := range out {
		for _, pairs := range inner {
			sortPairs(pairs)
		}
	}
	return out
}

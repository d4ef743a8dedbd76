package hextree

import (
	"iter"

	"github.com/hupe1980/hexzone/cell"
)

// Set is a Map without values. Complete sibling families always collapse, so
// the stored cells are the compacted form of everything added.
type Set struct {
	m *Map[struct{}]
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{m: New[struct{}](SetCompactor)}
}

// FromCells returns a Set holding cells. It panics on invalid cells.
func FromCells(cells []cell.Cell) *Set {
	s := NewSet()
	for _, c := range cells {
		s.Add(c)
	}
	return s
}

// Add adds c to the set.
func (s *Set) Add(c cell.Cell) { s.m.Insert(c, struct{}{}) }

// Contains reports whether c lies inside a stored cell.
func (s *Set) Contains(c cell.Cell) bool { return s.m.Contains(c) }

// Intersects reports whether c and a stored cell are related.
func (s *Set) Intersects(c cell.Cell) bool { return s.m.Intersects(c) }

// Lookup returns the stored cell containing c.
func (s *Set) Lookup(c cell.Cell) (cell.Cell, bool) {
	stored, _, ok := s.m.Lookup(c)
	return stored, ok
}

// All returns an iterator over the stored cells in canonical order.
func (s *Set) All() iter.Seq[cell.Cell] {
	return func(yield func(cell.Cell) bool) {
		for c := range s.m.All() {
			if !yield(c) {
				return
			}
		}
	}
}

// Cells returns the stored cells in canonical order.
func (s *Set) Cells() []cell.Cell { return s.m.Cells() }

// Len returns the number of stored cells.
func (s *Set) Len() int { return s.m.Len() }

// Merge adds every cell of other.
func (s *Set) Merge(other *Set) { s.m.Merge(other.m) }

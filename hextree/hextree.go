// Package hextree implements an ordered, collapse-aware mapping from cells to
// values.
//
// A Map is a prefix tree with one root per base cell. Each node is either a
// leaf, holding the value of the whole area of its cell, or an interior node
// with up to seven children. Storing a value for a cell covers every
// descendant of that cell. After each insertion the tree walks back up and
// replaces a node whose children are all leaves by a single leaf, provided
// the Compactor folds the children's values into one.
//
// Iteration order is canonical: by resolution, then by cell index.
package hextree

import (
	"iter"

	"github.com/hupe1980/hexzone/cell"
)

type node[V any] struct {
	leaf     bool
	value    V
	children [cell.MaxChildren]*node[V]
}

// Map is a prefix tree mapping cells to values.
//
// A Map is not safe for concurrent use. Workers build maps of their own and
// combine them with Merge.
type Map[V any] struct {
	roots     [cell.NumBaseCells]*node[V]
	compactor Compactor[V]
}

// New returns an empty Map that collapses siblings with compactor. A nil
// compactor never collapses.
func New[V any](compactor Compactor[V]) *Map[V] {
	if compactor == nil {
		compactor = NullCompactor[V]
	}
	return &Map[V]{compactor: compactor}
}

// Insert stores v for c and all of its descendants, replacing whatever was
// stored beneath c. A coarser leaf covering c is first split into its
// children so the rest of its area keeps the old value.
//
// Insert panics if c is not a valid cell.
func (m *Map[V]) Insert(c cell.Cell, v V) {
	if err := c.Validate(); err != nil {
		panic(err)
	}
	base := c.BaseCell()
	root, _ := cell.FromBaseCell(base)
	m.roots[base] = m.insert(m.roots[base], root, c, v)
}

func (m *Map[V]) insert(n *node[V], at, c cell.Cell, v V) *node[V] {
	res := at.Resolution()
	if res == c.Resolution() {
		return &node[V]{leaf: true, value: v}
	}
	if n == nil {
		n = &node[V]{}
	} else if n.leaf {
		split(n, at)
	}

	d := c.Digit(res + 1)
	n.children[d] = m.insert(n.children[d], at.Child(d), c, v)

	m.collapse(n, at)
	return n
}

// split turns leaf n into an interior node whose actual children all carry
// the former value.
func split[V any](n *node[V], at cell.Cell) {
	for _, d := range at.ChildDigits() {
		n.children[d] = &node[V]{leaf: true, value: n.value}
	}
	n.leaf = false
	var zero V
	n.value = zero
}

func (m *Map[V]) collapse(n *node[V], at cell.Cell) {
	digits := at.ChildDigits()
	first := n.children[digits[0]]
	if first == nil || !first.leaf {
		return
	}
	acc := first.value
	for _, d := range digits[1:] {
		child := n.children[d]
		if child == nil || !child.leaf {
			return
		}
		merged, ok := m.compactor(acc, child.value)
		if !ok {
			return
		}
		acc = merged
	}
	n.leaf = true
	n.value = acc
	n.children = [cell.MaxChildren]*node[V]{}
}

// Get returns the value stored for c or for the closest ancestor of c.
func (m *Map[V]) Get(c cell.Cell) (V, bool) {
	_, v, ok := m.Lookup(c)
	return v, ok
}

// Lookup returns the stored cell that is c or an ancestor of c, together with
// its value.
func (m *Map[V]) Lookup(c cell.Cell) (cell.Cell, V, bool) {
	var zero V
	at, n := m.descend(c)
	if n == nil || !n.leaf {
		return 0, zero, false
	}
	return at, n.value, true
}

// Contains reports whether c is covered by a stored cell.
func (m *Map[V]) Contains(c cell.Cell) bool {
	_, _, ok := m.Lookup(c)
	return ok
}

// Intersects reports whether a stored cell is c, an ancestor of c or a
// descendant of c.
func (m *Map[V]) Intersects(c cell.Cell) bool {
	_, n := m.descend(c)
	// Interior nodes are only created on the path to a leaf, so any node
	// reached at the resolution of c has a stored descendant.
	return n != nil
}

// descend walks from the root of c towards c and returns the first leaf on
// the way, or the node at the resolution of c. A nil node means the path left
// the tree.
func (m *Map[V]) descend(c cell.Cell) (cell.Cell, *node[V]) {
	if !c.IsValid() {
		return 0, nil
	}
	at, _ := cell.FromBaseCell(c.BaseCell())
	n := m.roots[c.BaseCell()]
	for n != nil {
		if n.leaf || at.Resolution() == c.Resolution() {
			return at, n
		}
		d := c.Digit(at.Resolution() + 1)
		at = at.Child(d)
		n = n.children[d]
	}
	return 0, nil
}

// All returns an iterator over the stored cells and their values in
// canonical order. The iterator is restartable.
func (m *Map[V]) All() iter.Seq2[cell.Cell, V] {
	return func(yield func(cell.Cell, V) bool) {
		type entry struct {
			c cell.Cell
			n *node[V]
		}

		var level []entry
		for base, root := range m.roots {
			if root != nil {
				c, _ := cell.FromBaseCell(base)
				level = append(level, entry{c, root})
			}
		}

		// Breadth first: each level is in index order because parents are
		// visited in index order and children in digit order.
		for len(level) > 0 {
			var next []entry
			for _, e := range level {
				if e.n.leaf {
					if !yield(e.c, e.n.value) {
						return
					}
					continue
				}
				for d, child := range e.n.children {
					if child != nil {
						next = append(next, entry{e.c.Child(uint8(d)), child})
					}
				}
			}
			level = next
		}
	}
}

// Cells returns the stored cells in canonical order.
func (m *Map[V]) Cells() []cell.Cell {
	var out []cell.Cell
	for c := range m.All() {
		out = append(out, c)
	}
	return out
}

// Len returns the number of stored cells.
func (m *Map[V]) Len() int {
	var n int
	for _, root := range m.roots {
		n += countLeaves(root)
	}
	return n
}

func countLeaves[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	if n.leaf {
		return 1
	}
	var total int
	for _, child := range n.children {
		total += countLeaves(child)
	}
	return total
}

// Merge inserts every entry of other into m in canonical order. Where both
// maps cover a cell, the entry of other wins.
func (m *Map[V]) Merge(other *Map[V]) {
	for c, v := range other.All() {
		m.Insert(c, v)
	}
}

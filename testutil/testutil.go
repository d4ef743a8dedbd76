package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/hexzone/cell"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Cell returns a random valid cell at resolution res.
func (r *RNG) Cell(res int) cell.Cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	base, _ := cell.FromBaseCell(r.rand.Intn(cell.NumBaseCells))
	return r.descend(base, res)
}

// Descendant returns a random descendant of parent at resolution res.
func (r *RNG) Descendant(parent cell.Cell, res int) cell.Cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.descend(parent, res)
}

// Descendants returns n random, not necessarily distinct, descendants of
// parent at resolution res.
func (r *RNG) Descendants(parent cell.Cell, res, n int) []cell.Cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]cell.Cell, n)
	for i := range out {
		out[i] = r.descend(parent, res)
	}
	return out
}

// Cells returns n random, not necessarily distinct, cells at resolution res.
func (r *RNG) Cells(n, res int) []cell.Cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]cell.Cell, n)
	for i := range out {
		base, _ := cell.FromBaseCell(r.rand.Intn(cell.NumBaseCells))
		out[i] = r.descend(base, res)
	}
	return out
}

// Shuffle permutes cells in place.
func (r *RNG) Shuffle(cells []cell.Cell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
}

func (r *RNG) descend(c cell.Cell, res int) cell.Cell {
	for c.Resolution() < res {
		digits := c.ChildDigits()
		c = c.Child(digits[r.rand.Intn(len(digits))])
	}
	return c
}

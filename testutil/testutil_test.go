package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42).Cells(50, 9)
	b := NewRNG(42).Cells(50, 9)
	assert.Equal(t, a, b)

	rng := NewRNG(42)
	first := rng.Cells(50, 9)
	rng.Reset()
	assert.Equal(t, first, rng.Cells(50, 9))
	assert.Equal(t, int64(42), rng.Seed())
}

func TestRNG_Cells(t *testing.T) {
	rng := NewRNG(7)
	for _, c := range rng.Cells(200, 6) {
		require.True(t, c.IsValid(), c.String())
		assert.Equal(t, 6, c.Resolution())
	}

	parent := rng.Cell(3)
	for _, c := range rng.Descendants(parent, 8, 100) {
		require.True(t, c.IsValid(), c.String())
		assert.Equal(t, 8, c.Resolution())
		assert.True(t, parent.Contains(c))
	}
}

func TestRNG_Shuffle(t *testing.T) {
	rng := NewRNG(1)
	cells := rng.Cells(30, 5)
	shuffled := append(cells[:0:0], cells...)
	rng.Shuffle(shuffled)
	assert.ElementsMatch(t, cells, shuffled)
}

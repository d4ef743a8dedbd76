// Package testutil provides testing utilities for hexzone.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source for generating cells,
// sibling families and shuffled inputs.
//
//	rng := testutil.NewRNG(seed)
//	c := rng.Cell(7)                 // random valid resolution 7 cell
//	fine := rng.Descendants(c, 9, 5) // 5 random resolution 9 cells below c
//	rng.Shuffle(fine)
package testutil

package hextree

// Compactor decides whether sibling values may be replaced by a single value
// on their parent. It is folded left to right across the children of a node:
// the first call receives the values of the first two children, later calls
// the running result and the next child. Returning false stops the fold and
// keeps the children.
type Compactor[V any] func(a, b V) (V, bool)

// EqCompactor collapses siblings that all hold the same value.
func EqCompactor[V comparable](a, b V) (V, bool) {
	return a, a == b
}

// NullCompactor never collapses.
func NullCompactor[V any](a, _ V) (V, bool) {
	return a, false
}

// SetCompactor collapses every complete family. It is the compactor of Set.
func SetCompactor(a, _ struct{}) (struct{}, bool) {
	return a, true
}

// EqualFunc returns a compactor that collapses siblings whose values are
// equal according to eq.
func EqualFunc[V any](eq func(a, b V) bool) Compactor[V] {
	return func(a, b V) (V, bool) {
		return a, eq(a, b)
	}
}

// ReduceFunc returns a compactor that always collapses, merging sibling values
// with reduce.
func ReduceFunc[V any](reduce func(a, b V) V) Compactor[V] {
	return func(a, b V) (V, bool) {
		return reduce(a, b), true
	}
}

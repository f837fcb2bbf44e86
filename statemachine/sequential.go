package statemachine

import "github.com/kalvarenga/rapidx/gen"

// Sequential is the sequential strategy factory: a size range plus glue
// into the host strategy protocol. It holds only the model's function
// pointers, so it is freely shareable across goroutines and NewTree
// calls.
type Sequential[S, T any] struct {
	Model Model[S, T]

	// Size bounds the number of transitions sampled into the sequence.
	// Size.Min must be <= Size.Max; both must be >= 0. A single desired
	// length is expressed as Size{Min: n, Max: n}.
	Size gen.Size
}

// NewTree draws an initial state and an acceptable sequence of
// transitions of sampled length from the model, and returns the
// ValueTree that owns them for the rest of its lifetime.
//
// NewTree borrows runner only for the duration of this call; it does not
// retain it.
func (s Sequential[S, T]) NewTree(runner Runner) (*ValueTree[S, T], error) {
	return newValueTree(s.Model, s.Size, runner)
}

// Package statemachine implements the sequential strategy for
// property-based state-machine testing: generating a random-but-valid
// sequence of transitions against an abstract reference model, and
// shrinking that sequence to a minimal counterexample when a property
// fails.
//
// The package consumes gen.Generator/gen.Shrinker (rapidx's existing
// randomized, shrinkable value primitive) for the atomic State and
// Transition values, and exposes a ValueTree whose Current/Simplify/
// Complicate methods a host test driver (see prop.TestStateMachine)
// alternates to minimize a failing sequence.
package statemachine

import "github.com/kalvarenga/rapidx/gen"

// Model is the user-supplied reference state machine. It plays the role
// that a trait with default methods would in a language with interfaces
// on values only; here it's a small struct of function pointers, so a
// caller never needs to carry around a model instance just to call its
// methods (see DESIGN.md).
type Model[S, T any] struct {
	// InitState returns a generator for the initial state.
	InitState func() gen.Generator[S]

	// Transitions returns a generator for a candidate transition given
	// the current state. Implementations typically branch on state to
	// bias which variants are reachable.
	Transitions func(state S) gen.Generator[T]

	// Apply advances the state by a transition. Must be pure and
	// deterministic.
	Apply func(state S, transition T) S

	// Preconditions reports whether a transition is legal in a state.
	// Nil means every transition is always legal. Must depend only on
	// its arguments and be deterministic; it is consulted both during
	// generation and during shrinking.
	Preconditions func(state S, transition T) bool
}

// precondition evaluates m.Preconditions, defaulting to true when unset.
func (m Model[S, T]) precondition(state S, t T) bool {
	if m.Preconditions == nil {
		return true
	}
	return m.Preconditions(state, t)
}

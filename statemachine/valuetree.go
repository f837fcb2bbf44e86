package statemachine

import (
	"github.com/kalvarenga/rapidx/gen"
	"github.com/kalvarenga/rapidx/internal/bitset"
)

// ValueTree is the generated value tree for a sequential state machine.
// It owns the initial-state atomic tree and every
// transition slot's atomic tree for its lifetime, and implements the
// host's current/simplify/complicate value-tree contract over the pair
// (State, []Transition).
type ValueTree[S, T any] struct {
	model Model[S, T]

	initialTree       *atomicTree[S]
	initialShrinkable bool
	lastValidInitial  S

	slots []*transitionSlot[T]
	maxIx int // -1 when there are no transitions at all

	// included and shrinkable are one bit per slot: included tracks
	// whether a slot is still part of the candidate sequence, shrinkable
	// tracks whether it still has room left to simplify.
	included   bitset.Set
	shrinkable bitset.Set

	shrink     op
	lastShrink *op
}

// newValueTree implements the sequence generator.
func newValueTree[S, T any](model Model[S, T], size gen.Size, runner Runner) (*ValueTree[S, T], error) {
	minN, maxN := size.Min, size.Max
	if maxN < minN {
		maxN = minN
	}

	initG := model.InitState()
	initVal, initShrink := initG.Generate(runner.Rand(), gen.Size{})
	initTree := newAtomicTree(initVal, initShrink)

	n := minN
	if maxN > minN {
		n += runner.Rand().Intn(maxN - minN + 1)
	}

	slots := make([]*transitionSlot[T], 0, n)
	state := initVal
	for len(slots) < n {
		tg := model.Transitions(state)
		t, tShrink := tg.Generate(runner.Rand(), gen.Size{})

		if model.precondition(state, t) {
			slots = append(slots, &transitionSlot[T]{
				tree:       newAtomicTree(t, tShrink),
				acceptable: t,
				status:     accepted,
			})
			state = model.Apply(state, t)
		} else if err := runner.RejectLocal("preconditions were not satisfied"); err != nil {
			return nil, err
		}
	}

	maxIx := len(slots) - 1

	// Start shrinking from the back of the list (Delete phase), unless
	// there are no transitions at all, in which case there's nothing to
	// delete or simplify and we go straight to the initial state.
	initialShrink := deleteTransition(maxIx)
	if maxIx < 0 {
		initialShrink = initialState
	}

	return &ValueTree[S, T]{
		model:             model,
		initialTree:       initTree,
		initialShrinkable: true,
		lastValidInitial:  initVal,
		slots:             slots,
		maxIx:             maxIx,
		included:          bitset.Saturated(len(slots)),
		shrinkable:        bitset.Saturated(len(slots)),
		shrink:            initialShrink,
		lastShrink:        nil,
	}, nil
}

// Current returns the pair (last-valid initial state, currently included
// acceptable transitions in order). Stable between calls.
func (vt *ValueTree[S, T]) Current() (S, []T) {
	return vt.lastValidInitial, vt.includedAcceptable(-1)
}

// includedAcceptable builds the candidate sequence: every included slot's
// `acceptable` value, except substituteIx (when >= 0) which is taken from
// its atomic tree's current value instead.
func (vt *ValueTree[S, T]) includedAcceptable(substituteIx int) []T {
	out := make([]T, 0, len(vt.slots))
	for i, sl := range vt.slots {
		if !vt.included.Test(i) {
			continue
		}
		if i == substituteIx {
			out = append(out, sl.tree.current())
		} else {
			out = append(out, sl.acceptable)
		}
	}
	return out
}

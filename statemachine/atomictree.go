package statemachine

import "github.com/kalvarenga/rapidx/gen"

// atomicTree adapts gen.Generator/gen.Shrinker — the accept-based pull
// shrinker every other generator in the gen package already implements —
// into the push-style current/simplify/complicate shape the shrink state
// machine (shrink.go) needs.
//
// gen.Shrinker's contract is `func(accept bool) (next T, ok bool)`: accept
// tells the shrinker whether the value returned by the *previous* call
// should become the new baseline before it proposes the next candidate.
// That maps directly onto simplify/complicate:
//
//   - simplify() calls shrink(true): the current value is committed as
//     the baseline, and the shrinker regrows its neighbor queue from it
//     before popping the next, smaller candidate.
//   - complicate() calls shrink(false): the baseline is left alone and
//     the shrinker pops the next candidate from the queue it already
//     grew around that baseline — i.e. a less aggressive neighbor of the
//     same reduction, which is the queue-based analogue of undoing the
//     last simplify by half.
//
// The very first call (whichever of the two is made first) is unaffected
// by the accept flag, since the shrinker's internal baseline and its
// "last proposed" value are still equal at that point.
type atomicTree[T any] struct {
	cur    T
	shrink gen.Shrinker[T]
}

func newAtomicTree[T any](v T, s gen.Shrinker[T]) *atomicTree[T] {
	return &atomicTree[T]{cur: v, shrink: s}
}

func (a *atomicTree[T]) current() T { return a.cur }

func (a *atomicTree[T]) simplify() bool {
	next, ok := a.shrink(true)
	if !ok {
		return false
	}
	a.cur = next
	return true
}

func (a *atomicTree[T]) complicate() bool {
	next, ok := a.shrink(false)
	if !ok {
		return false
	}
	a.cur = next
	return true
}

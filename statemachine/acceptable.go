package statemachine

// checkAcceptable replays the included transitions from the last-valid
// initial state, checking preconditions at every step. When substituteIx
// is >= 0, that slot's value is taken from its atomic tree's current()
// instead of its cached acceptable value. Pure and side-effect free.
func (vt *ValueTree[S, T]) checkAcceptable(substituteIx int) bool {
	state := vt.lastValidInitial
	for _, t := range vt.includedAcceptable(substituteIx) {
		if !vt.model.precondition(state, t) {
			return false
		}
		state = vt.model.Apply(state, t)
	}
	return true
}

// tryToFindAcceptableTransition is the recovery probe used by Simplify
// when the phase machine claims nothing is left to shrink but the last
// applied shrink was a SimplifyTransition. Starting at startIx, walking
// forward with wrap-around, it looks for the first included slot whose
// current (possibly still-pending) atomic-tree value is now acceptable in
// context — which can happen when an earlier wrap-around simplification
// unlocked a later slot that was previously rejected.
func (vt *ValueTree[S, T]) tryToFindAcceptableTransition(startIx int) bool {
	if vt.maxIx < 0 {
		return false
	}
	ix := startIx
	for {
		if vt.included.Test(ix) && vt.checkAcceptable(ix) {
			vt.slots[ix].acceptable = vt.slots[ix].tree.current()
			return true
		}
		if ix == vt.maxIx {
			ix = 0
		} else {
			ix++
		}
		if ix == startIx {
			return false
		}
	}
}

// countShrinkable returns how many slots still have their shrinkable bit
// set, regardless of whether they're currently included.
func (vt *ValueTree[S, T]) countShrinkable() int {
	return vt.shrinkable.Count()
}

// canSimplify reports whether the initial state is still shrinkable, or
// any included slot's simplification/complication has not yet been
// rejected.
func (vt *ValueTree[S, T]) canSimplify() bool {
	if vt.initialShrinkable {
		return true
	}
	for i, sl := range vt.slots {
		if !vt.included.Test(i) {
			continue
		}
		if sl.status != simplifyRejected && sl.status != complicateRejected {
			return true
		}
	}
	return false
}

// nextShrinkTransition advances the simplify scan position, wrapping
// around from the end of the list back to the front.
func (vt *ValueTree[S, T]) nextShrinkTransition(ix int) op {
	if ix == vt.maxIx {
		return simplifyTransition(0)
	}
	return simplifyTransition(ix + 1)
}

package statemachine

// Simplify attempts one shrink. It returns whether a shrink was applied,
// matching the host value-tree contract.
func (vt *ValueTree[S, T]) Simplify() bool {
	if vt.canSimplify() {
		return vt.trySimplify()
	}
	// Nothing left per the phase machine; if the last thing we did was
	// simplify a transition, a wrap-around simplification of an earlier
	// slot may have unlocked it. Probe for that before giving up.
	if vt.lastShrink != nil && vt.lastShrink.kind == simplifyKind {
		return vt.tryToFindAcceptableTransition(vt.lastShrink.ix)
	}
	return false
}

// Complicate undoes the most recently applied shrink by at most half,
// matching the host value-tree contract.
func (vt *ValueTree[S, T]) Complicate() bool {
	if vt.lastShrink == nil {
		return false
	}

	switch vt.lastShrink.kind {
	case deleteKind:
		ix := vt.lastShrink.ix
		vt.included.Set(ix)
		vt.shrinkable.Set(ix)
		vt.lastShrink = nil
		return true

	case simplifyKind:
		ix := vt.lastShrink.ix
		sl := vt.slots[ix]
		if sl.tree.complicate() {
			if vt.checkAcceptable(ix) {
				sl.acceptable = sl.tree.current()
				sl.status = accepted
				// Keep lastShrink set: further Complicate calls may
				// chain on the same slot.
				return true
			}
			sl.status = complicateRejected
		}
		vt.lastShrink = nil
		return false

	case initialStateKind:
		// Speculatively clear first; the source deliberately does not
		// chain lastShrink back on success here, unlike the
		// simplifyKind case above (see DESIGN.md, Open Question).
		vt.lastShrink = nil
		if vt.initialTree.complicate() && vt.checkAcceptable(-1) {
			vt.lastValidInitial = vt.initialTree.current()
			return true
		}
		return false
	}

	return false
}

// trySimplify drives the Delete -> Simplify -> InitialState phase
// machine and returns whether it applied a shrink.
func (vt *ValueTree[S, T]) trySimplify() bool {
	if vt.shrink.kind == deleteKind {
		ix := vt.shrink.ix
		vt.included.Clear(ix)

		prev := vt.shrink
		vt.lastShrink = &prev
		if ix == 0 {
			vt.shrink = simplifyTransition(0)
		} else {
			vt.shrink = deleteTransition(ix - 1)
		}

		if !vt.checkAcceptable(-1) {
			// Deleting this transition broke a later precondition;
			// restore it and move straight on to the next planned
			// step without reporting this attempt to the host.
			vt.included.Set(ix)
			vt.lastShrink = nil
			return vt.trySimplify()
		}

		// A deleted slot is not subject to further simplification.
		vt.shrinkable.Clear(ix)
		return true
	}

	for vt.shrink.kind == simplifyKind {
		if vt.countShrinkable() == 0 {
			vt.shrink = initialState
			break
		}

		ix := vt.shrink.ix
		sl := vt.slots[ix]

		if !vt.included.Test(ix) {
			vt.shrink = vt.nextShrinkTransition(ix)
			continue
		}
		if sl.status == simplifyRejected {
			vt.shrink = vt.nextShrinkTransition(ix)
			continue
		}

		if sl.tree.simplify() {
			prev := vt.shrink
			vt.lastShrink = &prev

			if vt.checkAcceptable(ix) {
				sl.acceptable = sl.tree.current()
				sl.status = accepted
				return true
			}

			sl.status = simplifyRejected
			vt.shrinkable.Clear(ix)
			vt.shrink = vt.nextShrinkTransition(ix)
			// Report only the first success from here on, falling
			// through to whatever the next phase is, exactly as the
			// public Simplify entry point would.
			return vt.Simplify()
		}

		vt.shrinkable.Clear(ix)
		vt.shrink = vt.nextShrinkTransition(ix)
	}

	if vt.shrink.kind == initialStateKind {
		if vt.initialTree.simplify() {
			if vt.checkAcceptable(-1) {
				vt.lastValidInitial = vt.initialTree.current()
				prev := vt.shrink
				vt.lastShrink = &prev
				return true
			}
			vt.lastShrink = nil
		}
		vt.initialShrinkable = false
		return false
	}

	panic("statemachine: unreachable shrink state")
}

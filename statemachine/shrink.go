package statemachine

// status is the tri-state a TransitionSlot carries to gate retries during
// shrinking.
type status int

const (
	// accepted marks a slot whose `acceptable` field equals the value
	// last checked in-context and found to satisfy preconditions.
	accepted status = iota
	// simplifyRejected freezes further Simplify attempts on this slot
	// until (possibly) the recovery probe in acceptable.go revisits it.
	simplifyRejected
	// complicateRejected blocks further Complicate chaining on this slot.
	complicateRejected
)

// kind identifies which of the three shrink operations is planned or was
// last applied.
type kind int

const (
	deleteKind kind = iota
	simplifyKind
	initialStateKind
)

// op is the shrink-plan sum type: DeleteTransition(i) |
// SimplifyTransition(i) | InitialState. ix is meaningless for
// initialStateKind.
type op struct {
	kind kind
	ix   int
}

func deleteTransition(ix int) op   { return op{kind: deleteKind, ix: ix} }
func simplifyTransition(ix int) op { return op{kind: simplifyKind, ix: ix} }

var initialState = op{kind: initialStateKind}

// transitionSlot is one sampled position in the sequence. Whether it is
// currently included in the candidate sequence, and whether it still has
// room to shrink, are tracked out-of-line in ValueTree's included/
// shrinkable bit-sets rather than here, so the whole sequence's bits can
// be queried and counted densely.
type transitionSlot[T any] struct {
	tree       *atomicTree[T]
	acceptable T
	status     status
}

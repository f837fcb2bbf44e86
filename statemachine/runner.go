package statemachine

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrTooManyRejects is returned by NewTree when the runner's local
// rejection cap is exceeded while sampling acceptable transitions.
var ErrTooManyRejects = errors.New("statemachine: too many rejected transitions")

// Runner is the source of randomness and the local-rejection counter the
// sequence generator needs. It mirrors the two things a host property
// runner is expected to provide: a source of uniform sampling and a
// reject_local hook that may signal abort once its cap is exceeded.
type Runner interface {
	// Rand returns the random source used to draw sizes and to seed
	// gen.Generator calls.
	Rand() *rand.Rand

	// RejectLocal records a local precondition rejection. It returns a
	// non-nil error once the runner's rejection budget is exhausted.
	RejectLocal(reason string) error
}

// runner is the default Runner, modeled on prop.Config's seed handling:
// a single *rand.Rand shared for the lifetime of one NewTree call, plus a
// fixed cap on local rejections.
type runner struct {
	r          *rand.Rand
	rejects    int
	maxRejects int
}

// NewRunner returns a Runner backed by r, aborting generation once more
// than maxRejects local precondition rejections have occurred. A
// maxRejects <= 0 defaults to 1000, matching the order of magnitude
// prop.Config's other defaults use.
func NewRunner(r *rand.Rand, maxRejects int) Runner {
	if maxRejects <= 0 {
		maxRejects = 1000
	}
	return &runner{r: r, maxRejects: maxRejects}
}

func (rr *runner) Rand() *rand.Rand { return rr.r }

func (rr *runner) RejectLocal(reason string) error {
	rr.rejects++
	if rr.rejects > rr.maxRejects {
		return fmt.Errorf("%w: %s (exceeded %d local rejects)", ErrTooManyRejects, reason, rr.maxRejects)
	}
	return nil
}

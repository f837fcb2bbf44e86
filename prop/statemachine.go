package prop

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/kalvarenga/rapidx/gen"
	"github.com/kalvarenga/rapidx/statemachine"
)

// Command is one named transition available in a StateMachine.
type Command[S, C any] struct {
	// Name identifies the command in failure reports.
	Name string

	// Generator produces candidate parameter values for this command.
	Generator gen.Generator[C]

	// Execute applies the command to a state, returning the next state
	// or an error if the command cannot legally run (e.g. because a SUT
	// call failed). Well-formed models guard these cases with
	// Precondition so Execute only errors on a genuine bug.
	Execute func(state S, cmd C) (S, error)

	// Precondition reports whether the command is legal in the given
	// state. Nil means always legal.
	Precondition func(state S, cmd C) bool

	// Postcondition checks an invariant of the transition itself (from
	// -> cmd -> to), independent of whether the transition was legal to
	// run at all. Nil means no extra check.
	Postcondition func(from S, cmd C, to S) bool
}

// StateMachine is a table of commands over a state type, the ergonomic
// entry point for TestStateMachine.
type StateMachine[S, C any] struct {
	InitialState S
	Commands     []Command[S, C]
}

// CommandSequence is a plain, already-generated sequence of command
// values (with no record of which Command produced each one).
type CommandSequence[C any] struct {
	Commands []C
}

// StateTransition records one executed step for a StateMachineResult.
type StateTransition[S, C any] struct {
	Command   C
	FromState S
	ToState   S
	Error     error
}

// StateMachineResult is the outcome of replaying a CommandSequence with
// executeStateMachine.
type StateMachineResult[S, C any] struct {
	FinalState       S
	ExecutionHistory []StateTransition[S, C]
	SkippedCommands  []C
}

// executeStateMachine replays a plain CommandSequence against sm.
//
// A bare CommandSequence carries only the produced values, not the index
// of the Command that produced them, so there is no generically reliable
// way to dispatch an arbitrary value back to its defining Command without
// reflection or an additional tagging convention from the caller. This
// helper instead resolves, for each value in turn, the first Command
// (in table order) whose Precondition holds in the current state — which
// is exact for the common single-command-type state machine, and is a
// documented simplification for tables mixing multiple command shapes
// (use TestStateMachine, which tracks the producing Command internally,
// for the general case).
func executeStateMachine[S, C any](sm StateMachine[S, C], seq CommandSequence[C]) StateMachineResult[S, C] {
	state := sm.InitialState
	result := StateMachineResult[S, C]{FinalState: state}

	for _, cmd := range seq.Commands {
		idx := -1
		for i, c := range sm.Commands {
			if c.Precondition == nil || c.Precondition(state, cmd) {
				idx = i
				break
			}
		}
		if idx == -1 {
			result.SkippedCommands = append(result.SkippedCommands, cmd)
			continue
		}

		c := sm.Commands[idx]
		next, err := c.Execute(state, cmd)
		result.ExecutionHistory = append(result.ExecutionHistory, StateTransition[S, C]{
			Command:   cmd,
			FromState: state,
			ToState:   next,
			Error:     err,
		})
		state = next
		if err != nil {
			break
		}
	}

	result.FinalState = state
	return result
}

// commandSequenceGenerator is a bare generator of CommandSequence values:
// a uniformly random length up to maxLength (or sz.Max when maxLength is
// 0), each position filled by a uniformly chosen command's Generator.
// Shrinking only truncates from the end; it does not know which Command
// produced which value, so it cannot simplify individual elements.
type commandSequenceGenerator[S, C any] struct {
	stateMachine StateMachine[S, C]
	maxLength    int
}

func (g commandSequenceGenerator[S, C]) Generate(r *rand.Rand, sz gen.Size) (CommandSequence[C], gen.Shrinker[CommandSequence[C]]) {
	if r == nil {
		r = rand.New(rand.NewSource(rand.Int63()))
	}

	maxLen := g.maxLength
	if maxLen <= 0 {
		maxLen = sz.Max
	}
	if maxLen < 0 {
		maxLen = 0
	}

	noShrink := func(bool) (CommandSequence[C], bool) { return CommandSequence[C]{}, false }

	if len(g.stateMachine.Commands) == 0 || maxLen == 0 {
		return CommandSequence[C]{}, noShrink
	}

	n := r.Intn(maxLen + 1)
	cmds := make([]C, n)
	for i := range cmds {
		c := g.stateMachine.Commands[r.Intn(len(g.stateMachine.Commands))]
		v, _ := c.Generator.Generate(r, gen.Size{})
		cmds[i] = v
	}

	idx := n
	return CommandSequence[C]{Commands: cmds}, func(accept bool) (CommandSequence[C], bool) {
		_ = accept // truncation doesn't need to rebase: it always shrinks from the original slice
		if idx == 0 {
			return CommandSequence[C]{}, false
		}
		idx--
		return CommandSequence[C]{Commands: append([]C(nil), cmds[:idx]...)}, true
	}
}

// taggedCommand pairs a generated command value with the index of the
// Command that produced it, so TestStateMachine always knows exactly
// which Precondition/Execute/Postcondition to invoke.
type taggedCommand[C any] struct {
	index int
	value C
}

// TestStateMachine runs property-based sequential state-machine testing
// over sm: it generates random-but-precondition-legal sequences of
// commands, executes them, checks postconditions, and shrinks any
// failure to a minimal counterexample using statemachine.Sequential.
func TestStateMachine[S, C any](t *testing.T, sm StateMachine[S, C], cfg Config) {
	t.Helper()

	if len(sm.Commands) == 0 {
		t.Fatalf("[rapidx] state machine %T has no commands", sm.InitialState)
		return
	}

	minN, maxN := cfg.MinTransitions, cfg.MaxTransitions
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 30
	}
	if maxN < minN {
		maxN = minN
	}

	seed := cfg.effectiveSeed()
	examples := cfg.Examples
	if examples <= 0 {
		examples = 1
	}
	gen.SetShrinkStrategy(cfg.ShrinkStrat)

	t.Logf("[rapidx] state machine seed=%d examples=%d transitions=[%d,%d] maxshrink=%d strategy=%s parallelism=%d",
		seed, examples, minN, maxN, cfg.MaxShrink, cfg.ShrinkStrat, cfg.Parallelism)

	model := statemachine.Model[S, taggedCommand[C]]{
		InitState: func() gen.Generator[S] {
			return gen.Const(sm.InitialState)
		},
		Transitions: func(state S) gen.Generator[taggedCommand[C]] {
			gens := make([]gen.Generator[taggedCommand[C]], len(sm.Commands))
			for i, c := range sm.Commands {
				idx := i
				gens[i] = gen.Map(c.Generator, func(v C) taggedCommand[C] {
					return taggedCommand[C]{index: idx, value: v}
				})
			}
			return gen.OneOf(gens...)
		},
		Apply: func(state S, tc taggedCommand[C]) S {
			next, err := sm.Commands[tc.index].Execute(state, tc.value)
			if err != nil {
				return state
			}
			return next
		},
		Preconditions: func(state S, tc taggedCommand[C]) bool {
			c := sm.Commands[tc.index]
			return c.Precondition == nil || c.Precondition(state, tc.value)
		},
	}

	strategy := statemachine.Sequential[S, taggedCommand[C]]{
		Model: model,
		Size:  gen.Size{Min: minN, Max: maxN},
	}

	execute := stateMachineExecutor(sm)

	r := rand.New(rand.NewSource(seed))

	if cfg.Parallelism <= 1 {
		runStateMachineSequential(t, strategy, execute, cfg, seed, examples, r)
	} else {
		runStateMachineParallel(t, strategy, execute, cfg, seed, examples, r)
	}
}

// stateMachineExecutor builds the closure TestStateMachine and its shrink
// loop use to replay a tagged command sequence against sm, checking both
// Execute's own errors and each command's Postcondition.
func stateMachineExecutor[S, C any](sm StateMachine[S, C]) func(S, []taggedCommand[C]) error {
	return func(state0 S, cmds []taggedCommand[C]) error {
		state := state0
		for i, tc := range cmds {
			c := sm.Commands[tc.index]
			next, err := c.Execute(state, tc.value)
			if err != nil {
				return fmt.Errorf("step %d (%s): %w", i, c.Name, err)
			}
			if c.Postcondition != nil && !c.Postcondition(state, tc.value, next) {
				return fmt.Errorf("step %d (%s): postcondition violated", i, c.Name)
			}
			state = next
		}
		return nil
	}
}

// shrinkStateMachine drives tree's Simplify/Complicate contract to a
// minimal still-failing candidate, never trusting a candidate it has not
// itself re-verified against execute. Every Simplify result is checked:
// if it no longer reproduces the failure, shrinkStateMachine backs off
// with repeated Complicate calls — re-verifying each one in turn — until
// either a still-failing candidate is found again or Complicate has
// nothing left to offer, in which case the previous verified-failing
// candidate is kept. The returned (state, commands) pair is therefore
// always one execute confirms still fails, at the cost of at most one
// extra execute call per Complicate step.
func shrinkStateMachine[S, C any](tree *statemachine.ValueTree[S, taggedCommand[C]], execute func(S, []taggedCommand[C]) error, maxSteps int) (S, []taggedCommand[C], int) {
	minState, minCmds := tree.Current()

	steps := 0
	for steps < maxSteps {
		if !tree.Simplify() {
			break
		}
		steps++

		state, cmds := tree.Current()
		if execute(state, cmds) != nil {
			minState, minCmds = state, cmds
			continue
		}

		// The simplified candidate no longer reproduces; back off by
		// halves until it does again, or until there's nothing left to
		// undo, in which case minState/minCmds stay at the last
		// candidate actually confirmed to fail.
		for tree.Complicate() {
			cState, cCmds := tree.Current()
			if execute(cState, cCmds) != nil {
				minState, minCmds = cState, cCmds
				break
			}
		}
	}

	return minState, minCmds, steps
}

// runStateMachineSequential runs examples one at a time, matching
// runSequential's own example/shrink/report structure in prop.go.
func runStateMachineSequential[S, C any](t *testing.T, strategy statemachine.Sequential[S, taggedCommand[C]], execute func(S, []taggedCommand[C]) error, cfg Config, seed int64, examples int, r *rand.Rand) {
	for ex := 0; ex < examples; ex++ {
		runner := statemachine.NewRunner(r, cfg.MaxLocalRejects)
		tree, err := strategy.NewTree(runner)
		if err != nil {
			t.Fatalf("[rapidx] state machine generation failed: %v", err)
			return
		}

		name := fmt.Sprintf("sm#%d", ex+1)
		s0, cmds := tree.Current()

		passed := t.Run(name, func(st *testing.T) {
			if err := execute(s0, cmds); err != nil {
				st.Fatal(err)
			}
		})
		if passed {
			continue
		}

		finalState, finalCmds, steps := shrinkStateMachine(tree, execute, cfg.effectiveMaxShrink())
		t.Fatalf("[rapidx] state machine property failed; seed=%d; example=%d; shrunk_steps=%d\n"+
			"initial state: %#v\ncommands: %#v",
			seed, ex+1, steps, finalState, finalCmds)

		if cfg.StopOnFirstFailure {
			return
		}
	}
}

// stateMachineFailure carries a shrunk counterexample from a parallel
// worker back to the reporting loop.
type stateMachineFailure[S, C any] struct {
	exampleIndex int
	state        S
	cmds         []taggedCommand[C]
	steps        int
}

// runStateMachineParallel runs examples across cfg.Parallelism worker
// goroutines, mirroring runParallel's worker-pool/failure-channel
// structure in prop.go. The shared *rand.Rand is only ever touched while
// holding randMutex, exactly as runParallel protects its own generator
// calls; once a tree is built, shrinking it needs no further randomness
// and proceeds unlocked.
func runStateMachineParallel[S, C any](t *testing.T, strategy statemachine.Sequential[S, taggedCommand[C]], execute func(S, []taggedCommand[C]) error, cfg Config, seed int64, examples int, r *rand.Rand) {
	testChan := make(chan int, examples)
	for i := 0; i < examples; i++ {
		testChan <- i
	}
	close(testChan)

	var wg sync.WaitGroup
	var randMutex sync.Mutex
	failureChan := make(chan stateMachineFailure[S, C], examples)

	for w := 0; w < cfg.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for ex := range testChan {
				randMutex.Lock()
				runner := statemachine.NewRunner(r, cfg.MaxLocalRejects)
				tree, err := strategy.NewTree(runner)
				randMutex.Unlock()
				if err != nil {
					// t.Fatalf must run on the test's own goroutine; report
					// via Errorf (safe for concurrent use) and skip this
					// example instead of trying to abort the whole run
					// from a worker goroutine.
					t.Errorf("[rapidx] state machine generation failed: %v", err)
					continue
				}

				name := fmt.Sprintf("sm#%d", ex+1)
				s0, cmds := tree.Current()

				passed := t.Run(name, func(st *testing.T) {
					if err := execute(s0, cmds); err != nil {
						st.Fatal(err)
					}
				})
				if passed {
					continue
				}

				finalState, finalCmds, steps := shrinkStateMachine(tree, execute, cfg.effectiveMaxShrink())
				failureChan <- stateMachineFailure[S, C]{exampleIndex: ex, state: finalState, cmds: finalCmds, steps: steps}

				if cfg.StopOnFirstFailure {
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(failureChan)
	}()

	for failure := range failureChan {
		t.Fatalf("[rapidx] state machine property failed; seed=%d; example=%d; shrunk_steps=%d\n"+
			"initial state: %#v\ncommands: %#v",
			seed, failure.exampleIndex+1, failure.steps, failure.state, failure.cmds)

		if cfg.StopOnFirstFailure {
			return
		}
	}
}

// effectiveMaxShrink returns cfg.MaxShrink, defaulting to 400 when unset,
// matching the default the rapidx.maxshrink flag uses for ForAll.
func (c Config) effectiveMaxShrink() int {
	if c.MaxShrink > 0 {
		return c.MaxShrink
	}
	return 400
}

package engine

import (
	"fmt"
	"sync"
)

// State is an entity's validation state. Unknown, Valid and Invalid are the
// settled (cacheable) states; Evaluating marks an in-flight evaluation and
// is never exposed as a cached verdict.
type State string

const (
	StateUnknown    State = "unknown"
	StateEvaluating State = "evaluating"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
)

// lifecycleTransitions is the closed transition table. Evaluating to
// Evaluating is legal: a newer evaluation may start before the previous one
// settles, and settled-to-settled covers the late commit of an overlapping
// run.
var lifecycleTransitions = map[State][]State{
	StateUnknown:    {StateEvaluating, StateUnknown},
	StateEvaluating: {StateEvaluating, StateValid, StateInvalid, StateUnknown},
	StateValid:      {StateEvaluating, StateValid, StateInvalid, StateUnknown},
	StateInvalid:    {StateEvaluating, StateValid, StateInvalid, StateUnknown},
}

// lifecycle is the per-entity state machine. The settled state only moves
// together with the cached outcome, so callers never observe an intermediate
// verdict between "started re-evaluating" and "settled".
type lifecycle struct {
	mu      sync.Mutex
	current State
	settled State
}

func newLifecycle() lifecycle {
	return lifecycle{current: StateUnknown, settled: StateUnknown}
}

func (l *lifecycle) to(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := false
	for _, target := range lifecycleTransitions[l.current] {
		if target == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.current, next)
	}

	l.current = next
	if next != StateEvaluating {
		l.settled = next
	}
	return nil
}

// Settled returns the last settled state, masking any in-flight evaluation.
func (l *lifecycle) Settled() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settled
}

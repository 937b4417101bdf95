package game

import (
	"errors"
	"fmt"
)

// ErrActionUnavailable is returned when an operation is called in the
// right phase but the house rules or hand state do not permit it
// (e.g. doubling a three-card hand). UI affordances are expected to
// disable such actions; the engine declines them without mutating
// state.
var ErrActionUnavailable = errors.New("action not available")

// PhaseError reports an operation invoked in the wrong phase. It is a
// sequencing bug in the caller, never a user-facing condition, and the
// round's state is untouched.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s called in phase %s", e.Op, e.Phase)
}

func phaseErr(op string, phase Phase) error {
	return &PhaseError{Op: op, Phase: phase}
}

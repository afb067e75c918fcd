package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition: from, to, or event cannot be empty")
	ErrEmptyTable        = errors.New("transition table has no transitions")
)

// ErrUnsupportedTransition indicates the event is not legal in the given phase.
type ErrUnsupportedTransition struct {
	Phase string
	Event string
}

func (e *ErrUnsupportedTransition) Error() string {
	return fmt.Sprintf("not support transition from state '%s' for event '%s'", e.Phase, e.Event)
}

func NewErrUnsupportedTransition(phase, event string) *ErrUnsupportedTransition {
	return &ErrUnsupportedTransition{
		Phase: phase,
		Event: event,
	}
}

// ErrTransitionRejected indicates every candidate transition was vetoed by its guards.
type ErrTransitionRejected struct {
	Phase string
	Event string
}

func (e *ErrTransitionRejected) Error() string {
	return fmt.Sprintf("transition from state '%s' for event '%s' was rejected by guards", e.Phase, e.Event)
}

func NewErrTransitionRejected(phase, event string) *ErrTransitionRejected {
	return &ErrTransitionRejected{
		Phase: phase,
		Event: event,
	}
}

func IsUnsupportedTransitionError(err error) bool {
	var e *ErrUnsupportedTransition
	return errors.As(err, &e)
}

func IsTransitionRejectedError(err error) bool {
	var e *ErrTransitionRejected
	return errors.As(err, &e)
}

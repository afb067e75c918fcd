package statemachine

import (
	"context"
)

// Action executes side effects during a transition. Returning an error aborts the transition.
type Action[P ~string, E ~string] func(ctx context.Context, from, to P, event E, data any) error

// Guard evaluates whether a transition should be taken based on runtime data.
type Guard[P ~string, E ~string] func(ctx context.Context, from P, event E, data any) bool

// Transition defines a phase change triggered by an event, with optional guards and actions.
type Transition[P ~string, E ~string] struct {
	From    P
	To      P
	Event   E
	Guards  []Guard[P, E]  // All must pass for the transition to be taken
	Actions []Action[P, E] // Executed in order once the transition is chosen
}

// Machine is the read side of a transition table.
type Machine[P ~string, E ~string] interface {
	Fire(ctx context.Context, from P, event E, data any) (P, error)
	Can(ctx context.Context, from P, event E, data any) bool
	Events(from P) []E
}

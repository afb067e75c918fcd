package statemachine

import (
	"context"
	"fmt"
	"slices"
)

// Table is an immutable transition table.
// Uses a nested map for O(1) lookups: [fromPhase][event][]Transition.
type Table[P ~string, E ~string] struct {
	transitions map[P]map[E][]Transition[P, E]
	// events keeps registration order per phase so Events is deterministic.
	events map[P][]E
}

func newTable[P ~string, E ~string]() *Table[P, E] {
	return &Table[P, E]{
		transitions: make(map[P]map[E][]Transition[P, E]),
		events:      make(map[P][]E),
	}
}

func (t *Table[P, E]) add(tr Transition[P, E]) error {
	if tr.From == "" || tr.To == "" || tr.Event == "" {
		return ErrInvalidTransition
	}

	if _, ok := t.transitions[tr.From]; !ok {
		t.transitions[tr.From] = make(map[E][]Transition[P, E])
	}
	if _, ok := t.transitions[tr.From][tr.Event]; !ok {
		t.events[tr.From] = append(t.events[tr.From], tr.Event)
	}

	// Multiple transitions allowed for same from/event to support guard-based branching
	t.transitions[tr.From][tr.Event] = append(t.transitions[tr.From][tr.Event], tr)
	return nil
}

// Fire resolves the transition for event in phase from, runs its actions and
// returns the target phase. The table is not modified.
func (t *Table[P, E]) Fire(ctx context.Context, from P, event E, data any) (P, error) {
	tr, err := t.lookup(ctx, from, event, data)
	if err != nil {
		return from, err
	}

	for _, action := range tr.Actions {
		if action != nil {
			if err := action(ctx, from, tr.To, event, data); err != nil {
				return from, fmt.Errorf("action failed: %w", err)
			}
		}
	}

	return tr.To, nil
}

// Can reports whether Fire would succeed, without running actions.
func (t *Table[P, E]) Can(ctx context.Context, from P, event E, data any) bool {
	_, err := t.lookup(ctx, from, event, data)
	return err == nil
}

// Events returns the events that have at least one transition out of phase from,
// in registration order. Guards are not evaluated.
func (t *Table[P, E]) Events(from P) []E {
	return slices.Clone(t.events[from])
}

// Has reports whether event is defined for phase from, ignoring guards.
func (t *Table[P, E]) Has(from P, event E) bool {
	return len(t.transitions[from][event]) > 0
}

func (t *Table[P, E]) lookup(ctx context.Context, from P, event E, data any) (*Transition[P, E], error) {
	transitions := t.transitions[from][event]
	if len(transitions) == 0 {
		return nil, NewErrUnsupportedTransition(string(from), string(event))
	}

	// First transition with passing guards wins (enables priority ordering)
	for i, tr := range transitions {
		allGuardsPassed := true
		for _, guard := range tr.Guards {
			if guard != nil && !guard(ctx, from, event, data) {
				allGuardsPassed = false
				break
			}
		}
		if allGuardsPassed {
			return &transitions[i], nil
		}
	}

	return nil, NewErrTransitionRejected(string(from), string(event))
}

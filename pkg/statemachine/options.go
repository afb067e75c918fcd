package statemachine

import (
	"fmt"
)

// Option configures a table during construction.
type Option[P ~string, E ~string] func(*Table[P, E]) error

// TransitionOption configures a single transition with guards and actions.
type TransitionOption[P ~string, E ~string] func(*transitionConfig[P, E])

// TransitionDef defines a transition between phases.
type TransitionDef[P ~string, E ~string] struct {
	From    P
	To      P
	Event   E
	Guards  []Guard[P, E]
	Actions []Action[P, E]
}

type transitionConfig[P ~string, E ~string] struct {
	guards  []Guard[P, E]
	actions []Action[P, E]
}

// New creates a transition table from the given options.
func New[P ~string, E ~string](opts ...Option[P, E]) (*Table[P, E], error) {
	t := newTable[P, E]()

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	if len(t.transitions) == 0 {
		return nil, ErrEmptyTable
	}

	return t, nil
}

// MustNew works like New but panics if any option fails to apply.
// Tables are package-level wiring, so a broken one should stop startup.
func MustNew[P ~string, E ~string](opts ...Option[P, E]) *Table[P, E] {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create transition table: %v", err))
	}
	return t
}

// WithTransition adds a single transition to the table.
func WithTransition[P ~string, E ~string](from, to P, event E, opts ...TransitionOption[P, E]) Option[P, E] {
	return func(t *Table[P, E]) error {
		cfg := &transitionConfig[P, E]{}
		for _, opt := range opts {
			opt(cfg)
		}

		return t.add(Transition[P, E]{
			From:    from,
			To:      to,
			Event:   event,
			Guards:  cfg.guards,
			Actions: cfg.actions,
		})
	}
}

// WithTransitions adds multiple transitions to the table at once.
func WithTransitions[P ~string, E ~string](transitions []TransitionDef[P, E]) Option[P, E] {
	return func(t *Table[P, E]) error {
		for i, def := range transitions {
			err := t.add(Transition[P, E]{
				From:    def.From,
				To:      def.To,
				Event:   def.Event,
				Guards:  def.Guards,
				Actions: def.Actions,
			})
			if err != nil {
				return fmt.Errorf("failed to add transition[%d] %q->%q on %q: %w",
					i, def.From, def.To, def.Event, err)
			}
		}
		return nil
	}
}

// WithGuard adds a single guard to a transition.
func WithGuard[P ~string, E ~string](guard Guard[P, E]) TransitionOption[P, E] {
	return func(cfg *transitionConfig[P, E]) {
		if guard != nil {
			cfg.guards = append(cfg.guards, guard)
		}
	}
}

// WithGuards adds multiple guards to a transition.
func WithGuards[P ~string, E ~string](guards ...Guard[P, E]) TransitionOption[P, E] {
	return func(cfg *transitionConfig[P, E]) {
		for _, guard := range guards {
			if guard != nil {
				cfg.guards = append(cfg.guards, guard)
			}
		}
	}
}

// WithAction adds a single action to a transition.
func WithAction[P ~string, E ~string](action Action[P, E]) TransitionOption[P, E] {
	return func(cfg *transitionConfig[P, E]) {
		if action != nil {
			cfg.actions = append(cfg.actions, action)
		}
	}
}

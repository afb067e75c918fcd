// Package statemachine provides a generic transition table for finite-state
// machines whose phases and events are string-backed types.
//
// A Table maps (phase, event) pairs to an ordered list of transitions. It does
// not hold the current phase itself: the owner of the state (for example a
// store publishing immutable snapshots) asks the table which phase an event
// leads to and decides what to publish. The table handles:
//  1. Transition lookup for the given phase and event
//  2. Optional Guard evaluation to choose between competing transitions
//  3. Execution of side-effect Actions of the chosen transition
//  4. Enumeration of the events legal in a phase
//
// # Usage
//
//	type Phase string
//	type Event string
//
//	const (
//	    Draft    Phase = "draft"
//	    InReview Phase = "in_review"
//	    Submit   Event = "submit"
//	)
//
//	table := statemachine.MustNew(
//	    statemachine.WithTransition(Draft, InReview, Submit),
//	)
//
//	next, err := table.Fire(ctx, Draft, Submit, nil)
//
// # Guards and Actions
//
// Several transitions may be registered for the same phase and event. They are
// evaluated in registration order and the first one whose guards all pass wins,
// which lets callers branch on runtime data:
//
//	isValid := func(ctx context.Context, from Phase, evt Event, data any) bool {
//	    errs, _ := data.(map[string]string)
//	    return len(errs) == 0
//	}
//
//	table := statemachine.MustNew(
//	    statemachine.WithTransition(Editing, Valid, Edit, statemachine.WithGuard(isValid)),
//	    statemachine.WithTransition(Editing, Invalid, Edit),
//	)
//
// Actions run after guards and before Fire returns; an action error aborts the
// transition.
//
// # Error Handling
//
// Fire never panics on an illegal request. It returns a typed error the caller
// can match on:
//
//	if statemachine.IsUnsupportedTransitionError(err) { /* event not legal in phase */ }
//	if statemachine.IsTransitionRejectedError(err)   { /* guards vetoed */ }
//
// # Concurrency
//
// A Table is immutable after construction and safe for concurrent use.
package statemachine

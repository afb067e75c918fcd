package userlist

import (
	"context"

	"github.com/dmitrymomot/useradmin/pkg/statemachine"
)

// startedFrom guards the load-failure branches: the list returns to the phase
// the load started from, data being the Loading snapshot.
func startedFrom(p Phase) statemachine.Guard[Phase, Event] {
	return func(_ context.Context, _ Phase, _ Event, data any) bool {
		l, ok := data.(Loading)
		return ok && l.From == p
	}
}

var table = statemachine.MustNew(
	statemachine.WithTransitions([]statemachine.TransitionDef[Phase, Event]{
		{From: PhaseInitial, To: PhaseLoading, Event: EventInitial},

		{From: PhaseWithoutSelectedUser, To: PhaseLoading, Event: EventLoadUsers},
		{From: PhaseWithoutSelectedUser, To: PhaseWithSelectedUser, Event: EventSelectUser},

		{From: PhaseWithSelectedUser, To: PhaseLoading, Event: EventLoadUsers},
		{From: PhaseWithSelectedUser, To: PhaseWithSelectedUser, Event: EventSelectUser},
		{From: PhaseWithSelectedUser, To: PhaseWithSelectedUser, Event: EventOnUpdateUser},
		{From: PhaseWithSelectedUser, To: PhaseWithSelectedUser, Event: EventOnDeleteUser},

		{From: PhaseLoading, To: PhaseWithoutSelectedUser, Event: eventLoaded},
		{From: PhaseLoading, To: PhaseWithSelectedUser, Event: eventLoadFailed, Guards: []statemachine.Guard[Phase, Event]{startedFrom(PhaseWithSelectedUser)}},
		{From: PhaseLoading, To: PhaseWithoutSelectedUser, Event: eventLoadFailed, Guards: []statemachine.Guard[Phase, Event]{startedFrom(PhaseWithoutSelectedUser)}},
		{From: PhaseLoading, To: PhaseInitial, Event: eventLoadFailed},
	}),
)

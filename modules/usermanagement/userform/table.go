package userform

import (
	"context"

	"github.com/dmitrymomot/useradmin/pkg/statemachine"
	"github.com/dmitrymomot/useradmin/svc/users"
)

type guard = statemachine.Guard[Phase, Event]

func isCreation(_ context.Context, _ Phase, _ Event, data any) bool {
	t, ok := data.(Creation)
	return ok && t.UserType.Valid()
}

func isUpdate(_ context.Context, _ Phase, _ Event, data any) bool {
	t, ok := data.(Update)
	return ok && t.UserID != ""
}

// isValid expects the recomputed validation map as data.
func isValid(_ context.Context, _ Phase, _ Event, data any) bool {
	invalid, ok := data.(map[users.Field]string)
	return ok && len(invalid) == 0
}

func editTransitions(from Phase) []statemachine.TransitionDef[Phase, Event] {
	defs := []statemachine.TransitionDef[Phase, Event]{
		{From: from, To: PhaseEditValid, Event: EventSetEditingUser, Guards: []guard{isValid}},
		{From: from, To: PhaseEditInvalid, Event: EventSetEditingUser},
	}
	if from == PhaseEditValid {
		defs = append(defs, statemachine.TransitionDef[Phase, Event]{From: from, To: PhaseLoading, Event: EventSubmit})
	}
	return append(defs, statemachine.TransitionDef[Phase, Event]{From: from, To: from, Event: EventOnEndEditing})
}

var table = statemachine.MustNew(
	statemachine.WithTransition(PhaseInitial, PhaseEditPristine, EventInitial, statemachine.WithGuard(guard(isCreation))),
	statemachine.WithTransition(PhaseInitial, PhaseLoading, EventInitial, statemachine.WithGuard(guard(isUpdate))),

	statemachine.WithTransitions(editTransitions(PhaseEditPristine)),
	statemachine.WithTransitions(editTransitions(PhaseEditValid)),
	statemachine.WithTransitions(editTransitions(PhaseEditInvalid)),

	statemachine.WithTransition(PhaseLoading, PhaseEditPristine, eventLoaded),
	statemachine.WithTransition(PhaseLoading, PhaseInitial, eventLoadFailed),
	statemachine.WithTransition(PhaseLoading, PhaseEditValid, eventSubmitted),
	statemachine.WithTransition(PhaseLoading, PhaseEditValid, eventSubmitFailed),
)

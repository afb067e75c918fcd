package userdeletion

import "github.com/dmitrymomot/useradmin/pkg/statemachine"

var table = statemachine.MustNew(
	statemachine.WithTransition(PhaseInitial, PhaseLoading, EventInitial),

	statemachine.WithTransition(PhaseWaitingConfirmation, PhaseLoading, EventSubmit),
	statemachine.WithTransition(PhaseWaitingConfirmation, PhaseWaitingConfirmation, EventOnEndDeletion),

	statemachine.WithTransition(PhaseLoading, PhaseWaitingConfirmation, eventLoaded),
	statemachine.WithTransition(PhaseLoading, PhaseInitial, eventLoadFailed),
	statemachine.WithTransition(PhaseLoading, PhaseWaitingConfirmation, eventDeleted),
	statemachine.WithTransition(PhaseLoading, PhaseWaitingConfirmation, eventDeleteFailed),
)

package userdeletion

import (
	"slices"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/svc/users"
)

type Phase string

const (
	PhaseInitial             Phase = "initial"
	PhaseLoading             Phase = "loading"
	PhaseWaitingConfirmation Phase = "waiting-confirmation"
)

type Event string

const (
	EventInitial       Event = "initial"
	EventSubmit        Event = "submit"
	EventOnEndDeletion Event = "on-end-deletion"

	eventLoaded       Event = ".loaded"
	eventLoadFailed   Event = ".load-failed"
	eventDeleted      Event = ".deleted"
	eventDeleteFailed Event = ".delete-failed"
)

const (
	MsgLoadUserFailed = "Load user failed"
	MsgSubmitFailed   = "Submit failed"
)

// State is one of Initial, Loading or WaitingConfirmation.
type State interface {
	flow.Snapshot[Phase]
	Actions() []Event
	Failure() *flow.Error
	isState()
}

type Initial struct {
	Error *flow.Error
}

// Loading covers both fetching the user, when User is nil, and deleting it.
type Loading struct {
	UserID string
	User   *users.Summary
	Error  *flow.Error
}

// WaitingConfirmation shows the user about to be deleted. Deleted is set once
// the deletion went through.
type WaitingConfirmation struct {
	User    users.Summary
	Deleted bool
	Error   *flow.Error
}

func (Initial) Phase() Phase             { return PhaseInitial }
func (Loading) Phase() Phase             { return PhaseLoading }
func (WaitingConfirmation) Phase() Phase { return PhaseWaitingConfirmation }

func (s Initial) PhaseName() string             { return string(s.Phase()) }
func (s Loading) PhaseName() string             { return string(s.Phase()) }
func (s WaitingConfirmation) PhaseName() string { return string(s.Phase()) }

func (s Initial) Actions() []Event             { return flow.Actions(table, s.Phase()) }
func (s Loading) Actions() []Event             { return flow.Actions(table, s.Phase()) }
func (s WaitingConfirmation) Actions() []Event { return flow.Actions(table, s.Phase()) }

func (s Initial) Failure() *flow.Error             { return s.Error }
func (s Loading) Failure() *flow.Error             { return s.Error }
func (s WaitingConfirmation) Failure() *flow.Error { return s.Error }

func (Initial) isState()             {}
func (Loading) isState()             {}
func (WaitingConfirmation) isState() {}

// UserOf returns the user shown by s.
func UserOf(s State) (users.Summary, bool) {
	switch s := s.(type) {
	case Loading:
		if s.User == nil {
			return users.Summary{}, false
		}
		return *s.User, true
	case WaitingConfirmation:
		return s.User, true
	default:
		return users.Summary{}, false
	}
}

func Can(s State, event Event) bool {
	return slices.Contains(s.Actions(), event)
}

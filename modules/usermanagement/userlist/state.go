package userlist

import (
	"slices"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/svc/users"
)

type Phase string

const (
	PhaseInitial             Phase = "initial"
	PhaseLoading             Phase = "loading"
	PhaseWithoutSelectedUser Phase = "without-selected-user"
	PhaseWithSelectedUser    Phase = "with-selected-user"
)

type Event string

const (
	EventInitial      Event = "initial"
	EventLoadUsers    Event = "load-users"
	EventSelectUser   Event = "select-user"
	EventOnUpdateUser Event = "on-update-user"
	EventOnDeleteUser Event = "on-delete-user"

	eventLoaded     Event = ".loaded"
	eventLoadFailed Event = ".load-failed"
)

// MsgLoadUsersFailed is attached when fetching the list fails.
const MsgLoadUsersFailed = "Load users failed"

// State is one of Initial, Loading, WithoutSelectedUser or WithSelectedUser.
type State interface {
	flow.Snapshot[Phase]
	// Actions lists the events the phase accepts.
	Actions() []Event
	// Failure returns the error attached to the snapshot, if any.
	Failure() *flow.Error
	isState()
}

type Initial struct {
	Error *flow.Error
}

// Loading keeps whatever the list showed before the fetch started.
type Loading struct {
	From           Phase
	Users          []users.Summary
	SelectedUserID string
	Error          *flow.Error
}

type WithoutSelectedUser struct {
	Users []users.Summary
	Error *flow.Error
}

type WithSelectedUser struct {
	Users          []users.Summary
	SelectedUserID string
	Error          *flow.Error
}

func (Initial) Phase() Phase             { return PhaseInitial }
func (Loading) Phase() Phase             { return PhaseLoading }
func (WithoutSelectedUser) Phase() Phase { return PhaseWithoutSelectedUser }
func (WithSelectedUser) Phase() Phase    { return PhaseWithSelectedUser }

func (s Initial) PhaseName() string             { return string(s.Phase()) }
func (s Loading) PhaseName() string             { return string(s.Phase()) }
func (s WithoutSelectedUser) PhaseName() string { return string(s.Phase()) }
func (s WithSelectedUser) PhaseName() string    { return string(s.Phase()) }

func (s Initial) Actions() []Event             { return flow.Actions(table, s.Phase()) }
func (s Loading) Actions() []Event             { return flow.Actions(table, s.Phase()) }
func (s WithoutSelectedUser) Actions() []Event { return flow.Actions(table, s.Phase()) }
func (s WithSelectedUser) Actions() []Event    { return flow.Actions(table, s.Phase()) }

func (s Initial) Failure() *flow.Error             { return s.Error }
func (s Loading) Failure() *flow.Error             { return s.Error }
func (s WithoutSelectedUser) Failure() *flow.Error { return s.Error }
func (s WithSelectedUser) Failure() *flow.Error    { return s.Error }

func (Initial) isState()             {}
func (Loading) isState()             {}
func (WithoutSelectedUser) isState() {}
func (WithSelectedUser) isState()    {}

// UsersOf returns the users carried by s, nil for Initial.
func UsersOf(s State) []users.Summary {
	switch s := s.(type) {
	case Loading:
		return s.Users
	case WithoutSelectedUser:
		return s.Users
	case WithSelectedUser:
		return s.Users
	default:
		return nil
	}
}

// SelectedUserID returns the selection carried by s, if any.
func SelectedUserID(s State) string {
	switch s := s.(type) {
	case Loading:
		return s.SelectedUserID
	case WithSelectedUser:
		return s.SelectedUserID
	default:
		return ""
	}
}

// Can reports whether s accepts event.
func Can(s State, event Event) bool {
	return slices.Contains(s.Actions(), event)
}

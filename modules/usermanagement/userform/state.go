package userform

import (
	"maps"
	"slices"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/svc/users"
)

type Phase string

const (
	PhaseInitial      Phase = "initial"
	PhaseLoading      Phase = "loading"
	PhaseEditPristine Phase = "edit-pristine"
	PhaseEditValid    Phase = "edit-valid"
	PhaseEditInvalid  Phase = "edit-invalid"
)

type Event string

const (
	EventInitial        Event = "initial"
	EventSetEditingUser Event = "set-editing-user"
	EventSubmit         Event = "submit"
	EventOnEndEditing   Event = "on-end-editing"

	eventLoaded       Event = ".loaded"
	eventLoadFailed   Event = ".load-failed"
	eventSubmitted    Event = ".submitted"
	eventSubmitFailed Event = ".submit-failed"
)

const (
	MsgInitialFailed = "Initial failed"
	MsgSubmitFailed  = "Submit failed"
)

// Mode tells whether the form creates a user or updates an existing one.
type Mode string

const (
	ModeCreation Mode = "creation"
	ModeUpdate   Mode = "update"
)

// Target selects what Init prepares: Creation or Update.
type Target interface {
	Mode() Mode
	isTarget()
}

// Creation starts a blank form for a new user of the given type.
type Creation struct {
	UserType users.Type
}

// Update loads an existing user into the form.
type Update struct {
	UserID string
}

func (Creation) Mode() Mode { return ModeCreation }
func (Update) Mode() Mode   { return ModeUpdate }
func (Creation) isTarget()  {}
func (Update) isTarget()    {}

// State is one of Initial, Loading, EditPristine, EditValid or EditInvalid.
// UserID is set on every phase once the form edits an existing user.
type State interface {
	flow.Snapshot[Phase]
	Actions() []Event
	Failure() *flow.Error
	isState()
}

type Initial struct {
	Error *flow.Error
}

// Loading covers both fetching the user to update, when EditingUser is nil,
// and submitting EditingUser.
type Loading struct {
	UserID      string
	EditingUser *users.Draft
	Error       *flow.Error
}

type EditPristine struct {
	UserID      string
	EditingUser users.Draft
	Error       *flow.Error
}

// EditValid is also where a submit lands. CreatedID holds the id assigned by
// the last successful creation.
type EditValid struct {
	UserID      string
	EditingUser users.Draft
	CreatedID   string
	Error       *flow.Error
}

type EditInvalid struct {
	UserID      string
	EditingUser users.Draft
	Invalid     map[users.Field]string
	Error       *flow.Error
}

func (Initial) Phase() Phase      { return PhaseInitial }
func (Loading) Phase() Phase      { return PhaseLoading }
func (EditPristine) Phase() Phase { return PhaseEditPristine }
func (EditValid) Phase() Phase    { return PhaseEditValid }
func (EditInvalid) Phase() Phase  { return PhaseEditInvalid }

func (s Initial) PhaseName() string      { return string(s.Phase()) }
func (s Loading) PhaseName() string      { return string(s.Phase()) }
func (s EditPristine) PhaseName() string { return string(s.Phase()) }
func (s EditValid) PhaseName() string    { return string(s.Phase()) }
func (s EditInvalid) PhaseName() string  { return string(s.Phase()) }

func (s Initial) Actions() []Event      { return flow.Actions(table, s.Phase()) }
func (s Loading) Actions() []Event      { return flow.Actions(table, s.Phase()) }
func (s EditPristine) Actions() []Event { return flow.Actions(table, s.Phase()) }
func (s EditValid) Actions() []Event    { return flow.Actions(table, s.Phase()) }
func (s EditInvalid) Actions() []Event  { return flow.Actions(table, s.Phase()) }

func (s Initial) Failure() *flow.Error      { return s.Error }
func (s Loading) Failure() *flow.Error      { return s.Error }
func (s EditPristine) Failure() *flow.Error { return s.Error }
func (s EditValid) Failure() *flow.Error    { return s.Error }
func (s EditInvalid) Failure() *flow.Error  { return s.Error }

func (Initial) isState()      {}
func (Loading) isState()      {}
func (EditPristine) isState() {}
func (EditValid) isState()    {}
func (EditInvalid) isState()  {}

// UserIDOf returns the id of the user being updated, empty when creating.
func UserIDOf(s State) string {
	switch s := s.(type) {
	case Loading:
		return s.UserID
	case EditPristine:
		return s.UserID
	case EditValid:
		return s.UserID
	case EditInvalid:
		return s.UserID
	default:
		return ""
	}
}

// ModeOf derives the form mode from s.
func ModeOf(s State) Mode {
	if UserIDOf(s) != "" {
		return ModeUpdate
	}
	return ModeCreation
}

// EditingUserOf returns the draft carried by s.
func EditingUserOf(s State) (users.Draft, bool) {
	switch s := s.(type) {
	case Loading:
		if s.EditingUser == nil {
			return users.Draft{}, false
		}
		return *s.EditingUser, true
	case EditPristine:
		return s.EditingUser, true
	case EditValid:
		return s.EditingUser, true
	case EditInvalid:
		return s.EditingUser, true
	default:
		return users.Draft{}, false
	}
}

// InvalidOf returns a copy of the validation map of s, empty outside EditInvalid.
func InvalidOf(s State) map[users.Field]string {
	if s, ok := s.(EditInvalid); ok {
		return maps.Clone(s.Invalid)
	}
	return map[users.Field]string{}
}

func Can(s State, event Event) bool {
	return slices.Contains(s.Actions(), event)
}

// Patch changes the fields whose pointer is set. Lanr is ignored for MFA drafts.
type Patch struct {
	Name  *string
	Email *string
	Lanr  *string
}

// Set returns a pointer to v, for building a Patch.
func Set(v string) *string {
	return &v
}

// Apply returns d with the patch merged in.
func (p Patch) Apply(d users.Draft) users.Draft {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.Lanr != nil && d.IsDoctor() {
		d.Lanr = *p.Lanr
	}
	return d
}

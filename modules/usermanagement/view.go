package usermanagement

import (
	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userform"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userlist"
	"github.com/dmitrymomot/useradmin/pkg/toast"
)

// View is the combined snapshot a renderer draws: the coordinator phase,
// the list, the open form or confirmation if any, and the presentation
// surfaces.
type View struct {
	Mode     State
	List     userlist.State
	Form     userform.State     // nil unless Mode is Editing
	Deletion userdeletion.State // nil unless Mode is Deleting
	Loading  bool
	Toasts   []toast.Toast
}

func (v View) PhaseName() string {
	if v.Mode == nil {
		return string(PhaseReady)
	}
	return v.Mode.PhaseName()
}

// Actions lists every action currently available on the screen: the
// coordinator's first, then those of the visible workflow. In ready mode
// start-deleting is only listed when the list has a selection to delete.
// A form or confirmation cannot be closed while it is loading.
func (v View) Actions() []string {
	var out []string
	switch v.Mode.(type) {
	case Editing:
		if v.Form == nil || v.Form.Phase() != userform.PhaseLoading {
			out = append(out, string(EventEndEditing))
		}
		if v.Form != nil {
			out = appendEvents(out, v.Form.Actions())
		}
	case Deleting:
		if v.Deletion == nil || v.Deletion.Phase() != userdeletion.PhaseLoading {
			out = append(out, string(EventEndDeleting))
		}
		if v.Deletion != nil {
			out = appendEvents(out, v.Deletion.Actions())
		}
	default:
		out = append(out, string(EventStartEditing))
		if v.List != nil && userlist.Can(v.List, userlist.EventOnDeleteUser) {
			out = append(out, string(EventStartDeleting))
		}
		if v.List != nil {
			out = appendEvents(out, v.List.Actions())
		}
	}
	return out
}

func appendEvents[E ~string](dst []string, events []E) []string {
	for _, e := range events {
		dst = append(dst, string(e))
	}
	return dst
}

// Errors returns the failures attached to the visible workflows.
func (v View) Errors() []*flow.Error {
	var out []*flow.Error
	if v.List != nil && v.List.Failure() != nil {
		out = append(out, v.List.Failure())
	}
	if v.Form != nil && v.Form.Failure() != nil {
		out = append(out, v.Form.Failure())
	}
	if v.Deletion != nil && v.Deletion.Failure() != nil {
		out = append(out, v.Deletion.Failure())
	}
	return out
}

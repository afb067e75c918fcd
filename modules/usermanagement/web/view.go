package web

import (
	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userform"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userlist"
	"github.com/dmitrymomot/useradmin/pkg/toast"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// ViewJSON is the wire form of usermanagement.View.
type ViewJSON struct {
	Phase    string        `json:"phase"`
	Actions  []string      `json:"actions"`
	Loading  bool          `json:"loading"`
	List     ListJSON      `json:"list"`
	Form     *FormJSON     `json:"form,omitempty"`
	Deletion *DeletionJSON `json:"deletion,omitempty"`
	Toasts   []toast.Toast `json:"toasts"`
	Errors   []string      `json:"errors,omitempty"`
}

type ListJSON struct {
	Phase          string          `json:"phase"`
	Users          []users.Summary `json:"users"`
	SelectedUserID string          `json:"selected_user_id,omitempty"`
}

type FormJSON struct {
	Phase     string                 `json:"phase"`
	Mode      string                 `json:"mode"`
	UserID    string                 `json:"user_id,omitempty"`
	Draft     *users.Draft           `json:"draft,omitempty"`
	Invalid   map[users.Field]string `json:"invalid,omitempty"`
	CreatedID string                 `json:"created_id,omitempty"`
}

type DeletionJSON struct {
	Phase   string         `json:"phase"`
	User    *users.Summary `json:"user,omitempty"`
	Deleted bool           `json:"deleted"`
}

// NewViewJSON converts v.
func NewViewJSON(v usermanagement.View) ViewJSON {
	out := ViewJSON{
		Phase:   v.PhaseName(),
		Actions: v.Actions(),
		Loading: v.Loading,
		Toasts:  v.Toasts,
	}
	if out.Toasts == nil {
		out.Toasts = []toast.Toast{}
	}
	if v.List != nil {
		out.List = ListJSON{
			Phase:          v.List.PhaseName(),
			Users:          userlist.UsersOf(v.List),
			SelectedUserID: userlist.SelectedUserID(v.List),
		}
	}
	if out.List.Users == nil {
		out.List.Users = []users.Summary{}
	}
	if v.Form != nil {
		f := &FormJSON{
			Phase:   v.Form.PhaseName(),
			Mode:    string(userform.ModeOf(v.Form)),
			UserID:  userform.UserIDOf(v.Form),
			Invalid: userform.InvalidOf(v.Form),
		}
		if d, ok := userform.EditingUserOf(v.Form); ok {
			f.Draft = &d
		}
		if s, ok := v.Form.(userform.EditValid); ok {
			f.CreatedID = s.CreatedID
		}
		out.Form = f
	}
	if v.Deletion != nil {
		d := &DeletionJSON{Phase: v.Deletion.PhaseName()}
		if u, ok := userdeletion.UserOf(v.Deletion); ok {
			d.User = &u
		}
		if s, ok := v.Deletion.(userdeletion.WaitingConfirmation); ok {
			d.Deleted = s.Deleted
		}
		out.Deletion = d
	}
	for _, e := range v.Errors() {
		out.Errors = append(out.Errors, e.Message)
	}
	return out
}

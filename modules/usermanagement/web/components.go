package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/useradmin/handler"
	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userform"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userlist"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// DataStarScript is the client bundle loaded by Page.
const DataStarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

// ScreenID is the element id the stream patches.
const ScreenID = "screen"

// html collects markup and escapes text on the way in.
type html struct {
	strings.Builder
}

func (h *html) raw(parts ...string) {
	for _, p := range parts {
		h.WriteString(p)
	}
}

func (h *html) text(s string) {
	h.WriteString(templ.EscapeString(s))
}

func (h *html) button(label, action string, enabled bool) {
	h.raw(`<button type="button" data-on-click="`, templ.EscapeString(action), `"`)
	if !enabled {
		h.raw(` disabled`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}

func component(render func(h *html)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var h html
		render(&h)
		_, err := io.WriteString(w, h.String())
		return err
	})
}

func post(path string) string {
	return "@post('" + path + "')"
}

// Page is the full document. The screen subscribes to the stream on load.
func Page(v usermanagement.View) templ.Component {
	return component(func(h *html) {
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>Users</title>`,
			`<script type="module" src="`, DataStarScript, `"></script>`,
			`</head><body data-on-load="@get('/stream')">`)
		renderScreen(h, v)
		h.raw(`</body></html>`)
	})
}

// Screen renders the patchable part of the page.
func Screen(v usermanagement.View) templ.Component {
	return component(func(h *html) { renderScreen(h, v) })
}

func renderScreen(h *html, v usermanagement.View) {
	actions := v.Actions()
	can := func(a string) bool { return slices.Contains(actions, a) }

	h.raw(`<main id="`, ScreenID, `" data-phase="`, templ.EscapeString(v.PhaseName()), `">`)
	if v.Loading {
		h.raw(`<div id="loading" class="loading" role="progressbar">Loading…</div>`)
	}
	renderToasts(h, v)

	switch mode := v.Mode.(type) {
	case usermanagement.Editing:
		renderForm(h, v.Form, mode.Target, can)
	case usermanagement.Deleting:
		renderDeletion(h, v.Deletion, can)
	default:
		renderList(h, v.List, can)
	}
	h.raw(`</main>`)
}

func renderToasts(h *html, v usermanagement.View) {
	h.raw(`<ul id="toasts" class="toasts">`)
	for _, t := range v.Toasts {
		h.raw(`<li class="toast toast-`, templ.EscapeString(string(t.Type)), `" id="toast-`, templ.EscapeString(t.ID), `">`)
		h.text(t.Message)
		h.button("×", post("/actions/toasts/"+t.ID+"/dismiss"), true)
		h.raw(`</li>`)
	}
	h.raw(`</ul>`)
}

func renderList(h *html, list userlist.State, can func(string) bool) {
	h.raw(`<section class="users">`)
	h.raw(`<nav class="toolbar">`)
	h.button("Reload", post("/actions/load-users"), can(string(userlist.EventLoadUsers)))
	for _, t := range users.Types {
		h.button("New "+typeLabel(t), post("/actions/users/new/"+string(t)), can(string(usermanagement.EventStartEditing)))
	}
	h.button("Edit", post("/actions/update"), can(string(userlist.EventOnUpdateUser)))
	h.button("Delete", post("/actions/delete"), can(string(usermanagement.EventStartDeleting)))
	h.raw(`</nav>`)

	if list == nil {
		h.raw(`</section>`)
		return
	}
	if e := list.Failure(); e != nil {
		h.raw(`<p class="error">`)
		h.text(e.Message)
		h.raw(`</p>`)
	}

	selected := userlist.SelectedUserID(list)
	selectable := can(string(userlist.EventSelectUser))
	h.raw(`<table><thead><tr><th>Name</th><th>Type</th></tr></thead><tbody>`)
	for _, u := range userlist.UsersOf(list) {
		h.raw(`<tr id="user-`, templ.EscapeString(u.ID), `"`)
		if u.ID == selected {
			h.raw(` class="selected" aria-selected="true"`)
		}
		if selectable {
			h.raw(` data-on-click="`, templ.EscapeString(post("/actions/users/"+u.ID+"/select")), `"`)
		}
		h.raw(`><td>`)
		h.text(u.Name)
		h.raw(`</td><td>`)
		h.text(typeLabel(u.Type))
		h.raw(`</td></tr>`)
	}
	h.raw(`</tbody></table></section>`)
}

func renderForm(h *html, form userform.State, target userform.Target, can func(string) bool) {
	title := "New user"
	if target != nil && target.Mode() == userform.ModeUpdate {
		title = "Edit user"
	}
	h.raw(`<section class="user-form"><h2>`)
	h.text(title)
	h.raw(`</h2>`)

	if form == nil || form.Phase() == userform.PhaseInitial && form.Failure() == nil {
		h.raw(`</section>`)
		return
	}
	if e := form.Failure(); e != nil {
		h.raw(`<p class="error">`)
		h.text(e.Message)
		h.raw(`</p>`)
	}

	draft, ok := userform.EditingUserOf(form)
	if ok {
		invalid := userform.InvalidOf(form)
		h.raw(`<form data-signals="`, templ.EscapeString(signalsOf(draft)), `">`)
		field(h, users.FieldName, "Name", invalid)
		field(h, users.FieldEmail, "Email", invalid)
		if draft.IsDoctor() {
			field(h, users.FieldLanr, "LANR", invalid)
		}
		h.raw(`</form>`)
	}

	h.raw(`<nav class="toolbar">`)
	h.button("Save", post("/actions/form/submit"), can(string(userform.EventSubmit)))
	if form.Phase() == userform.PhaseInitial {
		h.button("Retry", post("/actions/form/retry"), can(string(userform.EventInitial)))
	}
	h.button("Cancel", post("/actions/form/cancel"), can(string(usermanagement.EventEndEditing)))
	h.raw(`</nav></section>`)
}

func field(h *html, f users.Field, label string, invalid map[users.Field]string) {
	name := string(f)
	h.raw(`<label>`)
	h.text(label)
	h.raw(` <input name="`, name, `" data-bind-`, name,
		` data-on-input__debounce.300ms="`, templ.EscapeString(post("/actions/form")), `"`)
	msg, bad := invalid[f]
	if bad {
		h.raw(` aria-invalid="true"`)
	}
	h.raw(`></label>`)
	if bad {
		h.raw(`<small class="invalid">`)
		h.text(msg)
		h.raw(`</small>`)
	}
}

func signalsOf(d users.Draft) string {
	b, err := json.Marshal(map[string]string{
		string(users.FieldName):  d.Name,
		string(users.FieldEmail): d.Email,
		string(users.FieldLanr):  d.Lanr,
	})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func renderDeletion(h *html, deletion userdeletion.State, can func(string) bool) {
	h.raw(`<section class="user-deletion">`)
	if deletion != nil {
		if e := deletion.Failure(); e != nil {
			h.raw(`<p class="error">`)
			h.text(e.Message)
			h.raw(`</p>`)
		}
		if u, ok := userdeletion.UserOf(deletion); ok {
			h.raw(`<p>`)
			h.text(fmt.Sprintf("Delete %s (%s)?", u.Name, typeLabel(u.Type)))
			h.raw(`</p>`)
		}
	}
	h.raw(`<nav class="toolbar">`)
	h.button("Delete", post("/actions/deletion/submit"), can(string(userdeletion.EventSubmit)))
	if deletion != nil && deletion.Phase() == userdeletion.PhaseInitial {
		h.button("Retry", post("/actions/deletion/retry"), can(string(userdeletion.EventInitial)))
	}
	h.button("Cancel", post("/actions/deletion/cancel"), can(string(usermanagement.EventEndDeleting)))
	h.raw(`</nav></section>`)
}

func typeLabel(t users.Type) string {
	switch t {
	case users.TypeDoctor:
		return "Doctor"
	case users.TypeMFA:
		return "MFA"
	default:
		return string(t)
	}
}

// ErrorPage renders the standalone error document.
func ErrorPage(p handler.ErrorPageParams) templ.Component {
	return component(func(h *html) {
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Error</title></head><body>`)
		h.raw(`<h1>`, fmt.Sprint(p.StatusCode), `</h1><p>`)
		h.text(p.Error)
		h.raw(`</p><a href="/">Back</a>`)
		if p.RequestID != "" {
			h.raw(`<small>`)
			h.text(p.RequestID)
			h.raw(`</small>`)
		}
		h.raw(`</body></html>`)
	})
}

// ErrorToast renders a request error as a toast item.
func ErrorToast(p handler.ErrorToastParams) templ.Component {
	return component(func(h *html) {
		h.raw(`<li class="toast toast-`, templ.EscapeString(p.Type), `">`)
		h.text(p.Message)
		h.raw(`</li>`)
	})
}

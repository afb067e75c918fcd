package web_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/handler"
	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userlist"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/web"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/svc/users"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()

	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func loadedView(t *testing.T, seed ...users.User) usermanagement.View {
	t.Helper()

	svc := users.NewMemoryService(users.WithMemoryLogger(logger.Discard()), users.WithSeed(seed...))
	s := usermanagement.NewScreen(svc, usermanagement.WithLogger(logger.Discard()))
	t.Cleanup(s.Close)

	fut, err := s.Start(context.Background())
	require.NoError(t, err)
	_, err = fut.Await()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.View().List.Phase() == userlist.PhaseWithoutSelectedUser
	}, 2*time.Second, 5*time.Millisecond)
	return s.View()
}

func TestScreen_EscapesUserData(t *testing.T) {
	t.Parallel()

	v := loadedView(t, users.User{
		ID:    "x1",
		Draft: users.Draft{Name: "<script>alert(1)</script>", Email: "x@email.com", Type: users.TypeMFA},
	})
	out := render(t, web.Screen(v))

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `id="user-x1"`)
}

func TestScreen_ButtonsFollowActions(t *testing.T) {
	t.Parallel()

	out := render(t, web.Screen(loadedView(t, users.Fixtures()...)))

	assert.Contains(t, out, "/actions/users/new/doctor")
	assert.Contains(t, out, "/actions/users/doctor-01/select")
	// Nothing is selected yet.
	assert.Regexp(t, `data-on-click="@post\(&#39;/actions/delete&#39;\)" disabled`, out)
}

func TestScreen_FailedConfirmationCanClose(t *testing.T) {
	t.Parallel()

	out := render(t, web.Screen(usermanagement.View{
		Mode:     usermanagement.Deleting{UserID: "gone"},
		Deletion: userdeletion.Initial{Error: flow.NewError(userdeletion.MsgLoadUserFailed)},
	}))

	assert.Contains(t, out, userdeletion.MsgLoadUserFailed)
	assert.Contains(t, out, `data-on-click="@post(&#39;/actions/deletion/retry&#39;)">Retry`)
	assert.Contains(t, out, `data-on-click="@post(&#39;/actions/deletion/cancel&#39;)">Cancel`)
	assert.Contains(t, out, `data-on-click="@post(&#39;/actions/deletion/submit&#39;)" disabled>`)
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	out := render(t, web.ErrorPage(handler.ErrorPageParams{
		Error:      "Not Found",
		StatusCode: 404,
		RequestID:  "req-1",
	}))

	assert.Contains(t, out, "<h1>404</h1>")
	assert.Contains(t, out, "Not Found")
	assert.Contains(t, out, "req-1")
}

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/web"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/svc/users"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type envelope struct {
	Data  web.ViewJSON `json:"data"`
	Error *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

type testApp struct {
	t        *testing.T
	server   *httptest.Server
	client   *http.Client
	registry *web.Registry
	svc      *users.MemoryService
}

func newApp(t *testing.T, opts ...users.MemoryOption) *testApp {
	t.Helper()

	svc := users.NewMemoryService(append([]users.MemoryOption{users.WithMemoryLogger(logger.Discard())}, opts...)...)
	registry := web.NewRegistry(func() *usermanagement.Screen {
		return usermanagement.NewScreen(svc,
			usermanagement.WithLogger(logger.Discard()),
			usermanagement.WithToastTTL(time.Minute),
		)
	}, web.WithRegistryLogger(logger.Discard()))
	t.Cleanup(registry.Close)

	server := httptest.NewServer(web.NewRouter(registry, web.WithRouterLogger(logger.Discard())))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{t: t, server: server, client: &http.Client{Jar: jar}, registry: registry, svc: svc}
}

func (a *testApp) do(method, path string, body any, header http.Header) *http.Response {
	a.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.server.URL+path, r)
	require.NoError(a.t, err)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := a.client.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) json(method, path string, body any) (int, envelope) {
	a.t.Helper()

	resp := a.do(method, path, body, nil)
	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a *testApp) view() web.ViewJSON {
	a.t.Helper()

	code, env := a.json(http.MethodGet, "/api/view", nil)
	require.Equal(a.t, http.StatusOK, code)
	return env.Data
}

func (a *testApp) ready() web.ViewJSON {
	a.t.Helper()

	var v web.ViewJSON
	require.Eventually(a.t, func() bool {
		v = a.view()
		return v.List.Phase == "without-selected-user" || v.List.Phase == "with-selected-user"
	}, waitFor, tick)
	return v
}

func names(v web.ViewJSON) []string {
	out := make([]string, 0, len(v.List.Users))
	for _, u := range v.List.Users {
		out = append(out, u.Name)
	}
	return out
}

func TestRouter_Page(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	resp := app.do(http.MethodGet, "/", nil, http.Header{"Accept": {"text/html"}})
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `id="screen"`)
	assert.Contains(t, string(body), `@get('/stream')`)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == web.DefaultCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, app.registry.Len())
}

func TestRouter_SessionIsReused(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()
	app.view()

	assert.Equal(t, 1, app.registry.Len())
}

func TestRouter_CreateUser(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	code, _ := app.json(http.MethodPost, "/actions/users/new/doctor", nil)
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		f := app.view().Form
		return f != nil && f.Phase == "edit-pristine"
	}, waitFor, tick)

	code, env := app.json(http.MethodPost, "/actions/form", map[string]string{"name": "New Doctor"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Data.Form)
	assert.Equal(t, "edit-invalid", env.Data.Form.Phase)
	assert.Contains(t, env.Data.Form.Invalid, users.FieldEmail)

	code, env = app.json(http.MethodPost, "/actions/form", map[string]string{
		"email": "new@email.com",
		"lanr":  "LANR-99",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "edit-valid", env.Data.Form.Phase)

	code, _ = app.json(http.MethodPost, "/actions/form/submit", nil)
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		v := app.view()
		return v.Phase == "ready" && len(v.List.Users) == 4
	}, waitFor, tick)

	v := app.view()
	assert.Contains(t, names(v), "New Doctor")
	require.NotEmpty(t, v.Toasts)
	assert.Equal(t, usermanagement.MsgUserCreated, v.Toasts[0].Message)
}

func TestRouter_DeleteSelected(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	code, env := app.json(http.MethodPost, "/actions/users/mfa-01/select", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mfa-01", env.Data.List.SelectedUserID)

	code, _ = app.json(http.MethodPost, "/actions/delete", nil)
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		d := app.view().Deletion
		return d != nil && d.Phase == "waiting-confirmation"
	}, waitFor, tick)

	code, _ = app.json(http.MethodPost, "/actions/deletion/submit", nil)
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		v := app.view()
		return v.Phase == "ready" && len(v.List.Users) == 2
	}, waitFor, tick)
	assert.NotContains(t, names(app.view()), "MFA 01")
}

func TestRouter_DeleteVanishedUser(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	code, _ := app.json(http.MethodPost, "/actions/users/mfa-01/select", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, app.svc.Delete(context.Background(), "mfa-01"))

	code, _ = app.json(http.MethodPost, "/actions/delete", nil)
	require.Equal(t, http.StatusOK, code)
	require.Eventually(t, func() bool {
		d := app.view().Deletion
		return d != nil && d.Phase == "initial"
	}, waitFor, tick)
	assert.Equal(t, []string{"end-deleting", "initial"}, app.view().Actions)

	code, env := app.json(http.MethodPost, "/actions/deletion/retry", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "initial", env.Data.Deletion.Phase)

	code, env = app.json(http.MethodPost, "/actions/deletion/cancel", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", env.Data.Phase)

	code, _ = app.json(http.MethodPost, "/actions/users/new/mfa", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_UnsupportedAction(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	code, env := app.json(http.MethodPost, "/actions/form/submit", nil)
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unsupported_action", env.Error.Code)
	assert.Equal(t, "ready", app.view().Phase)
}

func TestRouter_InvalidUserType(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	code, env := app.json(http.MethodPost, "/actions/users/new/nurse", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, []string{users.MsgInvalidType}, env.Error.Details["type"])
}

func TestRouter_UnknownToast(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	code, env := app.json(http.MethodPost, "/actions/toasts/missing/dismiss", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestRouter_DataStarActionIsEmpty(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	resp := app.do(http.MethodPost, "/actions/load-users", nil, http.Header{"Datastar-Request": {"true"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRouter_DataStarErrorIsToast(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	resp := app.do(http.MethodPost, "/actions/deletion/cancel", nil, http.Header{"Datastar-Request": {"true"}})
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "datastar-patch-elements")
	assert.Contains(t, string(body), "#toasts")
}

func TestRouter_StreamRequiresDataStar(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	code, env := app.json(http.MethodGet, "/stream", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "datastar_required", env.Error.Code)
}

func TestRouter_Stream(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.ready()

	req, err := http.NewRequest(http.MethodGet, app.server.URL+"/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Datastar-Request", "true")
	resp, err := app.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	buf := make([]byte, 4096)
	var got strings.Builder
	for !strings.Contains(got.String(), "Doctor 01") {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		require.NoError(t, err)
	}
	assert.Contains(t, got.String(), "datastar-patch-elements")
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	resp := app.do(http.MethodGet, "/healthz", nil, nil)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ALIVE", string(body))
	assert.Zero(t, app.registry.Len())
}

func TestRouter_RegistryClosed(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.registry.Close()

	code, env := app.json(http.MethodGet, "/api/view", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unavailable", env.Error.Code)
}

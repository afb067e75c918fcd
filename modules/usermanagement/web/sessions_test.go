package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/web"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/svc/users"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRegistry(t *testing.T, opts ...web.RegistryOption) *web.Registry {
	t.Helper()

	svc := users.NewMemoryService(users.WithMemoryLogger(logger.Discard()))
	r := web.NewRegistry(func() *usermanagement.Screen {
		return usermanagement.NewScreen(svc, usermanagement.WithLogger(logger.Discard()))
	}, append([]web.RegistryOption{web.WithRegistryLogger(logger.Discard())}, opts...)...)
	t.Cleanup(r.Close)
	return r
}

func acquire(t *testing.T, r *web.Registry, cookie *http.Cookie) (string, *usermanagement.Screen, *http.Cookie) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	id, screen, err := r.Acquire(w, req)
	require.NoError(t, err)

	for _, c := range w.Result().Cookies() {
		if c.Name == web.DefaultCookieName {
			return id, screen, c
		}
	}
	return id, screen, nil
}

func TestRegistry_Acquire(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	id, screen, cookie := acquire(t, r, nil)
	require.NotNil(t, cookie)
	assert.Equal(t, id, cookie.Value)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	again, same, setAgain := acquire(t, r, cookie)
	assert.Equal(t, id, again)
	assert.Same(t, screen, same)
	assert.Nil(t, setAgain)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RejectsForeignCookie(t *testing.T) {
	t.Parallel()

	r := newRegistry(t)
	id, _, cookie := acquire(t, r, &http.Cookie{Name: web.DefaultCookieName, Value: "not-a-uuid"})

	require.NotNil(t, cookie)
	assert.NotEqual(t, "not-a-uuid", id)
}

func TestRegistry_SweepIdle(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newRegistry(t, web.WithClock(c.Now), web.WithIdleTimeout(time.Minute))

	acquire(t, r, nil)
	streamed, _, _ := acquire(t, r, nil)
	detach := r.Attach(streamed)

	c.Advance(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	detach()
	detach()
	assert.Zero(t, r.Sweep())

	c.Advance(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Zero(t, r.Len())
}

func TestRegistry_RunClosesOnCancel(t *testing.T) {
	t.Parallel()

	r := newRegistry(t, web.WithSweepInterval(5*time.Millisecond))
	acquire(t, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Zero(t, r.Len())

	_, _, err := r.Acquire(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, web.ErrRegistryClosed)
}

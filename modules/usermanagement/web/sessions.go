package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/pkg/logger"
)

// ErrRegistryClosed is returned once the registry has shut down.
var ErrRegistryClosed = errors.New("web: session registry closed")

// DefaultCookieName names the session cookie.
const DefaultCookieName = "useradmin_session"

// ScreenFactory creates the screen of a new session.
type ScreenFactory func() *usermanagement.Screen

type session struct {
	id       string
	screen   *usermanagement.Screen
	lastSeen time.Time
	streams  int
}

// Registry maps session cookies to screens.
type Registry struct {
	newScreen ScreenFactory
	idle      time.Duration
	sweep     time.Duration
	cookie    string
	secure    bool
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout closes sessions without requests or open streams for d.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithSweepInterval sets how often Run looks for idle sessions.
func WithSweepInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.sweep = d
		}
	}
}

// WithCookie sets the cookie name and its Secure flag.
func WithCookie(name string, secure bool) RegistryOption {
	return func(r *Registry) {
		if name != "" {
			r.cookie = name
		}
		r.secure = secure
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry creating screens with newScreen.
func NewRegistry(newScreen ScreenFactory, opts ...RegistryOption) *Registry {
	r := &Registry{
		newScreen: newScreen,
		idle:      30 * time.Minute,
		sweep:     time.Minute,
		cookie:    DefaultCookieName,
		now:       time.Now,
		logger:    slog.Default(),
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("sessions"))
	return r
}

// Acquire returns the session of the request, creating it and setting the
// cookie when the request has none or an unknown one. New screens are
// started right away.
func (r *Registry) Acquire(w http.ResponseWriter, req *http.Request) (string, *usermanagement.Screen, error) {
	id := ""
	if c, err := req.Cookie(r.cookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			id = c.Value
		}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", nil, ErrRegistryClosed
	}
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		r.mu.Unlock()
		return s.id, s.screen, nil
	}

	s := &session{id: uuid.NewString(), screen: r.newScreen(), lastSeen: r.now()}
	r.sessions[s.id] = s
	r.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     r.cookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})

	ctx := context.WithoutCancel(req.Context())
	r.logger.InfoContext(ctx, "session created", logger.SessionID(s.id))
	if _, err := s.screen.Start(ctx); err != nil {
		r.logger.WarnContext(ctx, "screen start rejected", logger.SessionID(s.id), logger.Error(err))
	}
	return s.id, s.screen, nil
}

// Attach marks a stream open on session id so it is never swept while the
// stream lasts. The returned function detaches it.
func (r *Registry) Attach(id string) (detach func()) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		s.streams++
	}
	r.mu.Unlock()
	if !ok {
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			s.streams--
			s.lastSeen = r.now()
			r.mu.Unlock()
		})
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes the sessions idle for longer than the idle timeout and
// returns how many it closed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	var expired []*session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.streams == 0 && s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.screen.Close()
		r.logger.Info("session expired", logger.SessionID(s.id))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.DebugContext(ctx, "idle sessions swept", slog.Int("count", n))
			}
		}
	}
}

// Close closes every session. Later Acquire calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.screen.Close()
	}
}

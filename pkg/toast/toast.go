package toast

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/store"
)

// Type is the toast severity.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 2 * time.Second

const (
	PhaseEmpty   = "empty"
	PhaseShowing = "showing"
)

// Toast is one transient message.
type Toast struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// State lists the visible toasts, oldest first.
type State struct {
	Items []Toast
}

func (s State) PhaseName() string {
	if len(s.Items) == 0 {
		return PhaseEmpty
	}
	return PhaseShowing
}

// Center holds the visible toasts and dismisses each one after its TTL.
type Center struct {
	store  *store.Store[State]
	ttl    time.Duration
	newID  func() string
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// Option configures a Center.
type Option func(*Center)

// WithTTL sets the display duration. Zero or negative keeps toasts until dismissed.
func WithTTL(d time.Duration) Option {
	return func(c *Center) {
		c.ttl = d
	}
}

// WithLogger sets the logger of the center and its store.
func WithLogger(l *slog.Logger) Option {
	return func(c *Center) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator overrides UUID generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Center) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func NewCenter(opts ...Option) *Center {
	c := &Center{
		ttl:    DefaultTTL,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.Default(),
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.store = store.New(State{Items: []Toast{}}, store.WithName("toast"), store.WithLogger(c.logger))
	return c
}

// Show displays a toast and schedules its dismissal.
func (c *Center) Show(typ Type, message string) Toast {
	t := Toast{
		ID:        c.newID(),
		Type:      typ,
		Message:   message,
		CreatedAt: c.now(),
	}

	_, _, err := c.store.Transition(func(s State) (State, error) {
		items := make([]Toast, 0, len(s.Items)+1)
		items = append(items, s.Items...)
		return State{Items: append(items, t)}, nil
	})
	if err != nil {
		return t
	}
	c.logger.Debug("toast shown", logger.Component("toast"), slog.String("type", string(typ)), slog.String("message", message))

	if c.ttl > 0 {
		c.mu.Lock()
		if !c.closed {
			c.timers[t.ID] = time.AfterFunc(c.ttl, func() { c.Dismiss(t.ID) })
		}
		c.mu.Unlock()
	}
	return t
}

func (c *Center) Success(message string) Toast { return c.Show(TypeSuccess, message) }

func (c *Center) Error(message string) Toast { return c.Show(TypeError, message) }

// Dismiss removes the toast with the given id and reports whether it was visible.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	if tm, ok := c.timers[id]; ok {
		tm.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	removed := false
	_, _, _ = c.store.Transition(func(s State) (State, error) {
		i := slices.IndexFunc(s.Items, func(t Toast) bool { return t.ID == id })
		if i < 0 {
			return s, store.ErrUnchanged
		}
		removed = true
		return State{Items: slices.Delete(slices.Clone(s.Items), i, i+1)}, nil
	})
	return removed
}

func (c *Center) State() State { return c.store.State() }

func (c *Center) Subscribe(fn func(State)) func() { return c.store.Subscribe(fn) }

func (c *Center) Watch(ctx context.Context) <-chan State { return c.store.Watch(ctx) }

// Close stops pending dismissals and closes the store.
func (c *Center) Close() {
	c.mu.Lock()
	c.closed = true
	for id, tm := range c.timers {
		tm.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()
	c.store.Close()
}

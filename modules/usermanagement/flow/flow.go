package flow

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/statemachine"
	"github.com/dmitrymomot/useradmin/pkg/store"
)

// Error is the user-facing failure attached to a snapshot.
type Error struct {
	Message string `json:"message"`
}

// NewError returns a pointer suitable for a snapshot's Error field.
func NewError(msg string) *Error {
	return &Error{Message: msg}
}

// Snapshot is implemented by the phase structs of a workflow.
type Snapshot[P ~string] interface {
	store.Phased
	Phase() P
}

// Next builds the snapshot for phase to out of the current one.
type Next[S any, P ~string] func(cur S, to P) (S, error)

// Machine drives one workflow instance.
type Machine[S Snapshot[P], P ~string, E ~string] struct {
	name   string
	table  *statemachine.Table[P, E]
	store  *store.Store[S]
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[uint64]context.CancelFunc
	nextID   uint64
}

// New creates a machine publishing initial.
func New[S Snapshot[P], P ~string, E ~string](name string, table *statemachine.Table[P, E], initial S, log *slog.Logger) *Machine[S, P, E] {
	if log == nil {
		log = slog.Default()
	}
	return &Machine[S, P, E]{
		name:     name,
		table:    table,
		store:    store.New(initial, store.WithName(name), store.WithLogger(log)),
		logger:   log,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Fire checks event against the current phase and publishes next's result.
// A table rejection is returned as is, typically *statemachine.ErrUnsupportedTransition.
// next may return store.ErrUnchanged to accept the event without publishing.
func (m *Machine[S, P, E]) Fire(ctx context.Context, event E, data any, next Next[S, P]) (S, uint64, error) {
	return m.store.Transition(m.step(ctx, event, constant[S](data), next))
}

// FireFunc works like Fire but derives the guard data from the current
// snapshot, inside the same atomic step.
func (m *Machine[S, P, E]) FireFunc(ctx context.Context, event E, data func(cur S) any, next Next[S, P]) (S, uint64, error) {
	return m.store.Transition(m.step(ctx, event, data, next))
}

// FireAt works like Fire but only while the store is still at generation gen.
// Otherwise it returns store.ErrStale.
func (m *Machine[S, P, E]) FireAt(ctx context.Context, gen uint64, event E, data any, next Next[S, P]) (S, error) {
	return m.store.TransitionAt(gen, m.step(ctx, event, constant[S](data), next))
}

// Check validates event against the current phase without publishing and
// returns the snapshot it was checked against.
func (m *Machine[S, P, E]) Check(ctx context.Context, event E, data any) (S, error) {
	var checked S
	_, _, err := m.Fire(ctx, event, data, func(cur S, _ P) (S, error) {
		checked = cur
		return cur, store.ErrUnchanged
	})
	if err != nil {
		return m.store.State(), err
	}
	return checked, nil
}

func constant[S any](v any) func(S) any {
	return func(S) any { return v }
}

func (m *Machine[S, P, E]) step(ctx context.Context, event E, data func(S) any, next Next[S, P]) func(S) (S, error) {
	return func(cur S) (S, error) {
		to, err := m.table.Fire(ctx, cur.Phase(), event, data(cur))
		if err != nil {
			m.logger.DebugContext(ctx, "event rejected",
				logger.Workflow(m.name),
				logger.Phase(cur.PhaseName()),
				logger.Event(string(event)),
				logger.Error(err),
			)
			return cur, err
		}
		return next(cur, to)
	}
}

// Bind derives a context that Reset and Dispose cancel. The returned cancel
// must be called once the asynchronous work is over.
func (m *Machine[S, P, E]) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.inflight[id] = cancel
	m.mu.Unlock()

	context.AfterFunc(ctx, func() {
		m.mu.Lock()
		delete(m.inflight, id)
		m.mu.Unlock()
	})
	return ctx, cancel
}

// Pending reports the number of bound contexts still running.
func (m *Machine[S, P, E]) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inflight)
}

func (m *Machine[S, P, E]) cancelInflight() {
	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.inflight))
	for _, c := range m.inflight {
		cancels = append(cancels, c)
	}
	m.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

// Reset cancels in-flight work and publishes s as the new current snapshot.
func (m *Machine[S, P, E]) Reset(s S) error {
	m.cancelInflight()
	return m.store.Reset(s)
}

// Dispose cancels in-flight work and closes the store. Watch channels are
// closed and further actions fail with store.ErrClosed.
func (m *Machine[S, P, E]) Dispose() {
	m.cancelInflight()
	m.store.Close()
}

func (m *Machine[S, P, E]) State() S { return m.store.State() }

func (m *Machine[S, P, E]) Generation() uint64 { return m.store.Generation() }

func (m *Machine[S, P, E]) Subscribe(fn func(S)) func() { return m.store.Subscribe(fn) }

func (m *Machine[S, P, E]) Watch(ctx context.Context) <-chan S { return m.store.Watch(ctx) }

// Actions returns the public events of phase p in table order.
func (m *Machine[S, P, E]) Actions(p P) []E {
	return Actions(m.table, p)
}

// Actions returns the events defined for phase p, leaving out the internal
// ones, which are recognised by their leading dot.
func Actions[P ~string, E ~string](table *statemachine.Table[P, E], p P) []E {
	return slices.DeleteFunc(table.Events(p), func(e E) bool {
		return len(e) > 0 && e[0] == '.'
	})
}

// IsUnsupported reports whether err is an illegal-transition rejection.
func IsUnsupported(err error) bool {
	return statemachine.IsUnsupportedTransitionError(err) || statemachine.IsTransitionRejectedError(err)
}

// IsDiscarded reports whether err means an asynchronous result arrived after
// its workflow moved on.
func IsDiscarded(err error) bool {
	return errors.Is(err, store.ErrStale) || errors.Is(err, store.ErrClosed) || errors.Is(err, context.Canceled)
}

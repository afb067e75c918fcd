// Package userlist implements the user-list workflow: fetch the users, select
// one, and hand the selection to update or delete flows.
package userlist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/pkg/async"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/store"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// Service is the part of users.Service the list needs.
type Service interface {
	List(ctx context.Context) ([]users.Summary, error)
}

// Option configures a List.
type Option func(*List)

// WithLogger sets the logger used by the list and its store.
func WithLogger(l *slog.Logger) Option {
	return func(list *List) {
		if l != nil {
			list.logger = l
		}
	}
}

// List is one user-list workflow instance.
type List struct {
	m      *flow.Machine[State, Phase, Event]
	svc    Service
	logger *slog.Logger

	mu      sync.Mutex
	pending *async.Future[[]users.Summary]
}

// New returns a list in the initial phase.
func New(svc Service, opts ...Option) *List {
	l := &List{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Workflow("userlist"))
	l.m = flow.New[State, Phase, Event]("userlist", table, Initial{}, l.logger)
	return l
}

// Init starts the first load. It is only accepted in the initial phase.
func (l *List) Init(ctx context.Context) (*async.Future[[]users.Summary], error) {
	return l.load(ctx, EventInitial)
}

// LoadUsers reloads the list. While a load is in flight it returns that
// load's future instead of starting another one. A list hydrated into
// loading has no fetch to join; the call resolves at once with the users
// the snapshot carries.
func (l *List) LoadUsers(ctx context.Context) (*async.Future[[]users.Summary], error) {
	return l.load(ctx, EventLoadUsers)
}

// Refresh loads the list from whatever phase it is in: Init from initial,
// LoadUsers otherwise.
func (l *List) Refresh(ctx context.Context) (*async.Future[[]users.Summary], error) {
	if _, ok := l.State().(Initial); ok {
		return l.Init(ctx)
	}
	return l.LoadUsers(ctx)
}

type loadStart struct {
	gen     uint64
	loading Loading
}

// load publishes Loading and fetches in the background. The fetch runs on a
// context detached from ctx's cancellation; Reset, Dispose or Future.Cancel
// stop it.
func (l *List) load(ctx context.Context, event Event) (*async.Future[[]users.Summary], error) {
	l.mu.Lock()
	if f := l.pending; f != nil {
		l.mu.Unlock()
		l.logger.DebugContext(ctx, "load already in flight", logger.Event(string(event)))
		return f, nil
	}
	if cur := l.State(); cur.Phase() == PhaseLoading {
		l.mu.Unlock()
		l.logger.DebugContext(ctx, "hydrated load ignored", logger.Event(string(event)))
		return async.Resolved(UsersOf(cur), nil), nil
	}

	start := make(chan loadStart, 1)
	bound, cancel := l.m.Bind(context.WithoutCancel(ctx))

	var f *async.Future[[]users.Summary]
	f = async.Async(bound, start, func(ctx context.Context, start chan loadStart) ([]users.Summary, error) {
		defer cancel()

		var st loadStart
		select {
		case s, ok := <-start:
			if !ok {
				return nil, context.Canceled
			}
			st = s
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return l.fetch(ctx, f, st)
	})
	l.pending = f
	l.mu.Unlock()

	next, gen, err := l.m.Fire(ctx, event, nil, func(cur State, _ Phase) (State, error) {
		return Loading{
			From:           cur.Phase(),
			Users:          UsersOf(cur),
			SelectedUserID: SelectedUserID(cur),
		}, nil
	})
	if err != nil {
		l.releasePending(f)
		close(start)
		cancel()
		return nil, err
	}

	start <- loadStart{gen: gen, loading: next.(Loading)}
	return f, nil
}

func (l *List) fetch(ctx context.Context, self *async.Future[[]users.Summary], st loadStart) ([]users.Summary, error) {
	list, err := l.svc.List(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "load users failed", logger.Error(err))
		_, ferr := l.m.FireAt(ctx, st.gen, eventLoadFailed, st.loading, func(cur State, to Phase) (State, error) {
			l.releasePending(self)
			ld, ok := cur.(Loading)
			if !ok {
				return cur, fmt.Errorf("load failure in phase %s", cur.PhaseName())
			}
			fail := flow.NewError(MsgLoadUsersFailed)
			switch to {
			case PhaseWithSelectedUser:
				return WithSelectedUser{Users: ld.Users, SelectedUserID: ld.SelectedUserID, Error: fail}, nil
			case PhaseWithoutSelectedUser:
				return WithoutSelectedUser{Users: ld.Users, Error: fail}, nil
			default:
				return Initial{Error: fail}, nil
			}
		})
		if ferr != nil {
			l.logger.DebugContext(ctx, "load failure discarded", logger.Error(ferr))
		}
		return nil, err
	}

	list = slices.Clone(list)
	_, err = l.m.FireAt(ctx, st.gen, eventLoaded, st.loading, func(State, Phase) (State, error) {
		l.releasePending(self)
		return WithoutSelectedUser{Users: list}, nil
	})
	if err != nil {
		l.logger.DebugContext(ctx, "loaded users discarded", logger.Error(err))
		return nil, err
	}
	return list, nil
}

func (l *List) releasePending(f *async.Future[[]users.Summary]) {
	l.mu.Lock()
	if l.pending == f {
		l.pending = nil
	}
	l.mu.Unlock()
}

// SelectUser marks id as selected. Selecting the current selection again
// publishes nothing.
func (l *List) SelectUser(ctx context.Context, id string) error {
	_, _, err := l.m.Fire(ctx, EventSelectUser, id, func(cur State, _ Phase) (State, error) {
		switch cur := cur.(type) {
		case WithSelectedUser:
			if cur.SelectedUserID == id {
				return cur, store.ErrUnchanged
			}
			cur.SelectedUserID = id
			return cur, nil
		case WithoutSelectedUser:
			return WithSelectedUser{Users: cur.Users, SelectedUserID: id, Error: cur.Error}, nil
		default:
			return cur, fmt.Errorf("select user in phase %s", cur.PhaseName())
		}
	})
	return err
}

// OnUpdateUser calls cb with the selected user id.
func (l *List) OnUpdateUser(ctx context.Context, cb func(userID string)) error {
	return l.withSelection(ctx, EventOnUpdateUser, cb)
}

// OnDeleteUser calls cb with the selected user id.
func (l *List) OnDeleteUser(ctx context.Context, cb func(userID string)) error {
	return l.withSelection(ctx, EventOnDeleteUser, cb)
}

func (l *List) withSelection(ctx context.Context, event Event, cb func(string)) error {
	s, err := l.m.Check(ctx, event, nil)
	if err != nil {
		return err
	}
	if cb != nil {
		cb(SelectedUserID(s))
	}
	return nil
}

// Hydrate cancels in-flight work and replaces the snapshot with s.
func (l *List) Hydrate(s State) error {
	if s == nil {
		s = Initial{}
	}
	l.mu.Lock()
	l.pending = nil
	l.mu.Unlock()
	return l.m.Reset(s)
}

// Reset returns the list to its initial phase.
func (l *List) Reset() error {
	return l.Hydrate(Initial{})
}

// Dispose cancels in-flight work and closes the store.
func (l *List) Dispose() {
	l.mu.Lock()
	l.pending = nil
	l.mu.Unlock()
	l.m.Dispose()
}

func (l *List) State() State { return l.m.State() }

func (l *List) Actions() []Event { return l.State().Actions() }

func (l *List) Generation() uint64 { return l.m.Generation() }

func (l *List) Subscribe(fn func(State)) func() { return l.m.Subscribe(fn) }

func (l *List) Watch(ctx context.Context) <-chan State { return l.m.Watch(ctx) }

// Package userform implements the create and update workflow of a single
// user: prepare a draft, validate every edit, and submit it.
package userform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/pkg/async"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// Service is the part of users.Service the form needs.
type Service interface {
	Get(ctx context.Context, id string) (users.User, error)
	Create(ctx context.Context, d users.Draft) (string, error)
	Update(ctx context.Context, u users.User) error
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger used by the form and its store.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// Form is one user-form workflow instance.
type Form struct {
	m      *flow.Machine[State, Phase, Event]
	svc    Service
	logger *slog.Logger
}

// New returns a form in the initial phase.
func New(svc Service, opts ...Option) *Form {
	f := &Form{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logger.Workflow("userform"))
	f.m = flow.New[State, Phase, Event]("userform", table, Initial{}, f.logger)
	return f
}

// Init prepares the form for target. A Creation target moves straight to
// edit-pristine with a blank draft and returns a resolved future. An Update
// target loads the user first; the future reports whether that succeeded.
func (f *Form) Init(ctx context.Context, target Target) (*async.Future[bool], error) {
	next, gen, err := f.m.Fire(ctx, EventInitial, target, func(cur State, to Phase) (State, error) {
		switch t := target.(type) {
		case Creation:
			return EditPristine{EditingUser: users.NewDraft(t.UserType)}, nil
		case Update:
			return Loading{UserID: t.UserID}, nil
		default:
			return cur, fmt.Errorf("unknown form target %T", target)
		}
	})
	if err != nil {
		return nil, err
	}
	if next.Phase() != PhaseLoading {
		return async.Resolved(true, nil), nil
	}

	userID := target.(Update).UserID
	bound, cancel := f.m.Bind(context.WithoutCancel(ctx))
	return async.Async(bound, userID, func(ctx context.Context, userID string) (bool, error) {
		defer cancel()

		u, err := f.svc.Get(ctx, userID)
		if err != nil {
			f.logger.WarnContext(ctx, "load user failed", logger.UserID(userID), logger.Error(err))
			_, ferr := f.m.FireAt(ctx, gen, eventLoadFailed, nil, func(State, Phase) (State, error) {
				return Initial{Error: flow.NewError(MsgInitialFailed)}, nil
			})
			return false, ferr
		}

		_, err = f.m.FireAt(ctx, gen, eventLoaded, nil, func(State, Phase) (State, error) {
			return EditPristine{UserID: userID, EditingUser: u.Draft}, nil
		})
		if err != nil {
			return false, err
		}
		return true, nil
	}), nil
}

// SetEditingUser merges p into the draft and revalidates it from scratch.
// The form moves to edit-valid or edit-invalid accordingly. Editing clears
// a previous submit failure.
func (f *Form) SetEditingUser(ctx context.Context, p Patch) error {
	merged := func(cur State) users.Draft {
		d, _ := EditingUserOf(cur)
		return p.Apply(d)
	}
	_, _, err := f.m.FireFunc(ctx, EventSetEditingUser,
		func(cur State) any { return users.Validate(merged(cur)) },
		func(cur State, to Phase) (State, error) {
			d := merged(cur)
			userID := UserIDOf(cur)
			if to == PhaseEditValid {
				return EditValid{UserID: userID, EditingUser: d}, nil
			}
			return EditInvalid{UserID: userID, EditingUser: d, Invalid: users.Validate(d)}, nil
		},
	)
	return err
}

// Submit stores the draft: Create when the form has no user id, Update
// otherwise. The future is true on success. A service failure lands in
// edit-valid with MsgSubmitFailed and a false result; an error from the
// future means the outcome was discarded because the form moved on.
func (f *Form) Submit(ctx context.Context) (*async.Future[bool], error) {
	next, gen, err := f.m.Fire(ctx, EventSubmit, nil, func(cur State, _ Phase) (State, error) {
		v, ok := cur.(EditValid)
		if !ok {
			return cur, fmt.Errorf("submit in phase %s", cur.PhaseName())
		}
		d := v.EditingUser
		return Loading{UserID: v.UserID, EditingUser: &d}, nil
	})
	if err != nil {
		return nil, err
	}

	ld := next.(Loading)
	bound, cancel := f.m.Bind(context.WithoutCancel(ctx))
	return async.Async(bound, ld, func(ctx context.Context, ld Loading) (bool, error) {
		defer cancel()

		draft := *ld.EditingUser
		var createdID string
		var err error
		if ld.UserID == "" {
			createdID, err = f.svc.Create(ctx, draft)
		} else {
			err = f.svc.Update(ctx, users.User{ID: ld.UserID, Draft: draft})
		}

		if err != nil {
			f.logger.WarnContext(ctx, "submit user failed", logger.UserID(ld.UserID), logger.Error(err))
			_, ferr := f.m.FireAt(ctx, gen, eventSubmitFailed, nil, func(State, Phase) (State, error) {
				return EditValid{UserID: ld.UserID, EditingUser: draft, Error: flow.NewError(MsgSubmitFailed)}, nil
			})
			return false, ferr
		}

		_, err = f.m.FireAt(ctx, gen, eventSubmitted, nil, func(State, Phase) (State, error) {
			return EditValid{UserID: ld.UserID, EditingUser: draft, CreatedID: createdID}, nil
		})
		if err != nil {
			return false, err
		}
		if createdID != "" {
			f.logger.InfoContext(ctx, "user created", logger.UserID(createdID))
		} else {
			f.logger.InfoContext(ctx, "user updated", logger.UserID(ld.UserID))
		}
		return true, nil
	}), nil
}

// OnEndEditing calls cb if the form is in an edit phase.
func (f *Form) OnEndEditing(ctx context.Context, cb func()) error {
	if _, err := f.m.Check(ctx, EventOnEndEditing, nil); err != nil {
		return err
	}
	if cb != nil {
		cb()
	}
	return nil
}

// Mode reports whether the form creates or updates a user.
func (f *Form) Mode() Mode { return ModeOf(f.State()) }

// Hydrate cancels in-flight work and replaces the snapshot with s.
func (f *Form) Hydrate(s State) error {
	if s == nil {
		s = Initial{}
	}
	return f.m.Reset(s)
}

// Reset returns the form to its initial phase.
func (f *Form) Reset() error { return f.Hydrate(Initial{}) }

// Dispose cancels in-flight work and closes the store.
func (f *Form) Dispose() { f.m.Dispose() }

func (f *Form) State() State { return f.m.State() }

func (f *Form) Actions() []Event { return f.State().Actions() }

func (f *Form) Generation() uint64 { return f.m.Generation() }

func (f *Form) Subscribe(fn func(State)) func() { return f.m.Subscribe(fn) }

func (f *Form) Watch(ctx context.Context) <-chan State { return f.m.Watch(ctx) }

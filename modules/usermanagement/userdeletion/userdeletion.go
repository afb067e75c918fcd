// Package userdeletion implements the deletion workflow: load the user,
// wait for confirmation, delete.
package userdeletion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/pkg/async"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// ErrEmptyUserID is returned by Init without a user id.
var ErrEmptyUserID = errors.New("userdeletion: empty user id")

// Service is the part of users.Service the deletion needs.
type Service interface {
	Get(ctx context.Context, id string) (users.User, error)
	Delete(ctx context.Context, id string) error
}

// Option configures a Deletion.
type Option func(*Deletion)

// WithLogger sets the logger used by the deletion and its store.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deletion) {
		if l != nil {
			d.logger = l
		}
	}
}

// Deletion is one user-deletion workflow instance.
type Deletion struct {
	m      *flow.Machine[State, Phase, Event]
	svc    Service
	logger *slog.Logger
}

func New(svc Service, opts ...Option) *Deletion {
	d := &Deletion{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Workflow("userdeletion"))
	d.m = flow.New[State, Phase, Event]("userdeletion", table, Initial{}, d.logger)
	return d
}

// Init loads the user to delete. The future reports whether it was found.
func (d *Deletion) Init(ctx context.Context, userID string) (*async.Future[bool], error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	_, gen, err := d.m.Fire(ctx, EventInitial, userID, func(State, Phase) (State, error) {
		return Loading{UserID: userID}, nil
	})
	if err != nil {
		return nil, err
	}

	bound, cancel := d.m.Bind(context.WithoutCancel(ctx))
	return async.Async(bound, userID, func(ctx context.Context, userID string) (bool, error) {
		defer cancel()

		u, err := d.svc.Get(ctx, userID)
		if err != nil {
			d.logger.WarnContext(ctx, "load user failed", logger.UserID(userID), logger.Error(err))
			_, ferr := d.m.FireAt(ctx, gen, eventLoadFailed, nil, func(State, Phase) (State, error) {
				return Initial{Error: flow.NewError(MsgLoadUserFailed)}, nil
			})
			return false, ferr
		}

		_, err = d.m.FireAt(ctx, gen, eventLoaded, nil, func(State, Phase) (State, error) {
			return WaitingConfirmation{User: u.Summary()}, nil
		})
		if err != nil {
			return false, err
		}
		return true, nil
	}), nil
}

// Submit deletes the user. The future is true on success; a service failure
// returns to waiting-confirmation with MsgSubmitFailed and a false result.
func (d *Deletion) Submit(ctx context.Context) (*async.Future[bool], error) {
	next, gen, err := d.m.Fire(ctx, EventSubmit, nil, func(cur State, _ Phase) (State, error) {
		w, ok := cur.(WaitingConfirmation)
		if !ok {
			return cur, fmt.Errorf("submit in phase %s", cur.PhaseName())
		}
		u := w.User
		return Loading{UserID: u.ID, User: &u}, nil
	})
	if err != nil {
		return nil, err
	}

	target := *next.(Loading).User
	bound, cancel := d.m.Bind(context.WithoutCancel(ctx))
	return async.Async(bound, target, func(ctx context.Context, target users.Summary) (bool, error) {
		defer cancel()

		if err := d.svc.Delete(ctx, target.ID); err != nil {
			d.logger.WarnContext(ctx, "delete user failed", logger.UserID(target.ID), logger.Error(err))
			_, ferr := d.m.FireAt(ctx, gen, eventDeleteFailed, nil, func(State, Phase) (State, error) {
				return WaitingConfirmation{User: target, Error: flow.NewError(MsgSubmitFailed)}, nil
			})
			return false, ferr
		}

		_, err := d.m.FireAt(ctx, gen, eventDeleted, nil, func(State, Phase) (State, error) {
			return WaitingConfirmation{User: target, Deleted: true}, nil
		})
		if err != nil {
			return false, err
		}
		d.logger.InfoContext(ctx, "user deleted", logger.UserID(target.ID))
		return true, nil
	}), nil
}

// OnEndDeletion calls cb while waiting for confirmation.
func (d *Deletion) OnEndDeletion(ctx context.Context, cb func()) error {
	if _, err := d.m.Check(ctx, EventOnEndDeletion, nil); err != nil {
		return err
	}
	if cb != nil {
		cb()
	}
	return nil
}

// Hydrate cancels in-flight work and replaces the snapshot with s.
func (d *Deletion) Hydrate(s State) error {
	if s == nil {
		s = Initial{}
	}
	return d.m.Reset(s)
}

// Reset returns the deletion to its initial phase.
func (d *Deletion) Reset() error { return d.Hydrate(Initial{}) }

// Dispose cancels in-flight work and closes the store.
func (d *Deletion) Dispose() { d.m.Dispose() }

func (d *Deletion) State() State { return d.m.State() }

func (d *Deletion) Actions() []Event { return d.State().Actions() }

func (d *Deletion) Generation() uint64 { return d.m.Generation() }

func (d *Deletion) Subscribe(fn func(State)) func() { return d.m.Subscribe(fn) }

func (d *Deletion) Watch(ctx context.Context) <-chan State { return d.m.Watch(ctx) }

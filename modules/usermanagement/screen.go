package usermanagement

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userform"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userlist"
	"github.com/dmitrymomot/useradmin/pkg/async"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/pageloading"
	"github.com/dmitrymomot/useradmin/pkg/statemachine"
	"github.com/dmitrymomot/useradmin/pkg/store"
	"github.com/dmitrymomot/useradmin/pkg/toast"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// Success toasts.
const (
	MsgUserCreated = "User created"
	MsgUserUpdated = "User updated"
	MsgUserDeleted = "User deleted"
)

// ScreenOption configures a Screen.
type ScreenOption func(*screenConfig)

type screenConfig struct {
	logger   *slog.Logger
	toastTTL time.Duration
}

// WithLogger sets the logger shared by every workflow of the screen.
func WithLogger(l *slog.Logger) ScreenOption {
	return func(c *screenConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithToastTTL sets how long toasts stay visible.
func WithToastTTL(d time.Duration) ScreenOption {
	return func(c *screenConfig) {
		c.toastTTL = d
	}
}

// Screen is one mounted user-management screen. It owns the list and the
// coordinator for its whole life, and a form or deletion instance while the
// coordinator is editing or deleting.
type Screen struct {
	svc    users.Service
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	list      *userlist.List
	coord     *Coordinator
	indicator *pageloading.Indicator
	toasts    *toast.Center
	view      *store.Store[View]

	mu       sync.Mutex
	form     *child[*userform.Form]
	deletion *child[*userdeletion.Deletion]
	unsubs   []func()
	closed   bool
}

// child is a spawned workflow with its presentation binding. gen is the
// coordinator generation that opened it.
type child[W interface{ Dispose() }] struct {
	w       W
	gen     uint64
	release func()
}

func (c *child[W]) dispose() {
	c.release()
	c.w.Dispose()
}

// NewScreen wires a screen against svc. Call Start to load the list and
// Close on teardown.
func NewScreen(svc users.Service, opts ...ScreenOption) *Screen {
	cfg := screenConfig{logger: slog.Default(), toastTTL: toast.DefaultTTL}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Screen{
		svc:       svc,
		logger:    cfg.logger,
		ctx:       ctx,
		cancel:    cancel,
		indicator: pageloading.New(store.WithLogger(cfg.logger)),
		toasts:    toast.NewCenter(toast.WithTTL(cfg.toastTTL), toast.WithLogger(cfg.logger)),
	}
	s.list = userlist.New(svc, userlist.WithLogger(cfg.logger))
	s.coord = NewCoordinator(s.reloadList, cfg.logger)
	s.view = store.New(View{
		Mode:   s.coord.State(),
		List:   s.list.State(),
		Toasts: s.toasts.State().Items,
	}, store.WithName("screen"), store.WithLogger(cfg.logger))

	listener, release := present[userlist.State](s.indicator, s.toasts)
	s.unsubs = append(s.unsubs,
		release,
		s.list.Subscribe(func(st userlist.State) {
			listener(st)
			s.publish(func(v View) View { v.List = st; return v })
		}),
		s.coord.Subscribe(s.onModeChange),
		s.indicator.Subscribe(func(st pageloading.State) {
			s.publish(func(v View) View { v.Loading = st.Visible(); return v })
		}),
		s.toasts.Subscribe(func(st toast.State) {
			s.publish(func(v View) View { v.Toasts = st.Items; return v })
		}),
	)
	return s
}

// Start loads the list.
func (s *Screen) Start(ctx context.Context) (*async.Future[[]users.Summary], error) {
	return s.list.Refresh(ctx)
}

func (s *Screen) reloadList(ctx context.Context) {
	if _, err := s.list.Refresh(ctx); err != nil && !errors.Is(err, store.ErrClosed) {
		s.logger.WarnContext(ctx, "list reload rejected", logger.Error(err))
	}
}

func (s *Screen) publish(fn func(View) View) {
	_, _, _ = s.view.Transition(func(v View) (View, error) {
		return fn(v), nil
	})
}

// onModeChange spawns the workflow the coordinator switched to and disposes
// the one it left.
func (s *Screen) onModeChange(mode State) {
	var form *userform.Form
	var deletion *userdeletion.Deletion

	gen := s.coord.Generation()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	oldForm, oldDeletion := s.form, s.deletion
	s.form, s.deletion = nil, nil
	switch mode.(type) {
	case Editing:
		form = userform.New(s.svc, userform.WithLogger(s.logger))
		s.form = s.bindForm(form, gen)
	case Deleting:
		deletion = userdeletion.New(s.svc, userdeletion.WithLogger(s.logger))
		s.deletion = s.bindDeletion(deletion, gen)
	}
	s.mu.Unlock()

	if oldForm != nil {
		oldForm.dispose()
	}
	if oldDeletion != nil {
		oldDeletion.dispose()
	}

	s.publish(func(v View) View {
		v.Mode = mode
		v.Form, v.Deletion = nil, nil
		if form != nil {
			v.Form = form.State()
		}
		if deletion != nil {
			v.Deletion = deletion.State()
		}
		return v
	})

	switch m := mode.(type) {
	case Editing:
		if _, err := form.Init(s.ctx, m.Target); err != nil {
			s.logger.WarnContext(s.ctx, "form init rejected", logger.Error(err))
		}
	case Deleting:
		if _, err := deletion.Init(s.ctx, m.UserID); err != nil {
			s.logger.WarnContext(s.ctx, "deletion init rejected", logger.Error(err))
		}
	}
}

func (s *Screen) bindForm(f *userform.Form, gen uint64) *child[*userform.Form] {
	listener, release := present[userform.State](s.indicator, s.toasts)
	unsub := f.Subscribe(func(st userform.State) {
		listener(st)
		if cur, _ := s.currentForm(); cur != f {
			return
		}
		s.publish(func(v View) View { v.Form = st; return v })
	})
	return &child[*userform.Form]{w: f, gen: gen, release: func() { unsub(); release() }}
}

func (s *Screen) bindDeletion(d *userdeletion.Deletion, gen uint64) *child[*userdeletion.Deletion] {
	listener, release := present[userdeletion.State](s.indicator, s.toasts)
	unsub := d.Subscribe(func(st userdeletion.State) {
		listener(st)
		if cur, _ := s.currentDeletion(); cur != d {
			return
		}
		s.publish(func(v View) View { v.Deletion = st; return v })
	})
	return &child[*userdeletion.Deletion]{w: d, gen: gen, release: func() { unsub(); release() }}
}

func (s *Screen) currentForm() (*userform.Form, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form == nil {
		return nil, 0
	}
	return s.form.w, s.form.gen
}

func (s *Screen) currentDeletion() (*userdeletion.Deletion, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deletion == nil {
		return nil, 0
	}
	return s.deletion.w, s.deletion.gen
}

// presentable is the part of a workflow snapshot the presentation binding reads.
type presentable interface {
	PhaseName() string
	Failure() *flow.Error
}

// present binds a workflow to the loading indicator and the toasts: the
// indicator is shown while the workflow is loading and every newly attached
// error is toasted. release hides the indicator if the workflow goes away
// while loading.
func present[S presentable](ind *pageloading.Indicator, toasts *toast.Center) (listener func(S), release func()) {
	var (
		mu      sync.Mutex
		shown   bool
		lastErr *flow.Error
	)
	listener = func(st S) {
		mu.Lock()
		defer mu.Unlock()

		loading := st.PhaseName() == "loading"
		switch {
		case loading && !shown:
			ind.Show()
			shown = true
		case !loading && shown:
			ind.Hide()
			shown = false
		}

		if e := st.Failure(); e != nil && e != lastErr {
			toasts.Error(e.Message)
		}
		lastErr = st.Failure()
	}
	release = func() {
		mu.Lock()
		defer mu.Unlock()
		if shown {
			ind.Hide()
			shown = false
		}
	}
	return listener, release
}

// unsupported reports an action the screen cannot route in its current mode.
func (s *Screen) unsupported(event string) error {
	return statemachine.NewErrUnsupportedTransition(s.coord.State().PhaseName(), event)
}

// LoadUsers reloads the list.
func (s *Screen) LoadUsers(ctx context.Context) (*async.Future[[]users.Summary], error) {
	return s.list.LoadUsers(ctx)
}

// SelectUser selects id in the list.
func (s *Screen) SelectUser(ctx context.Context, id string) error {
	return s.list.SelectUser(ctx, id)
}

// GoToCreation opens an empty form for a new user of type t.
func (s *Screen) GoToCreation(ctx context.Context, t users.Type) error {
	return s.coord.StartEditing(ctx, userform.Creation{UserType: t})
}

// UpdateSelected opens the form for the selected user.
func (s *Screen) UpdateSelected(ctx context.Context) error {
	var startErr error
	err := s.list.OnUpdateUser(ctx, func(id string) {
		startErr = s.coord.StartEditing(ctx, userform.Update{UserID: id})
	})
	return errors.Join(err, startErr)
}

// DeleteSelected opens the deletion confirmation for the selected user.
func (s *Screen) DeleteSelected(ctx context.Context) error {
	var startErr error
	err := s.list.OnDeleteUser(ctx, func(id string) {
		startErr = s.coord.StartDeleting(ctx, id)
	})
	return errors.Join(err, startErr)
}

// SetEditingUser edits the open form.
func (s *Screen) SetEditingUser(ctx context.Context, p userform.Patch) error {
	f, _ := s.currentForm()
	if f == nil {
		return s.unsupported(string(userform.EventSetEditingUser))
	}
	return f.SetEditingUser(ctx, p)
}

// SubmitForm submits the open form. On success it toasts, closes the form
// and reloads the list before the returned future completes.
func (s *Screen) SubmitForm(ctx context.Context) (*async.Future[bool], error) {
	f, gen := s.currentForm()
	if f == nil {
		return nil, s.unsupported(string(userform.EventSubmit))
	}
	msg := MsgUserCreated
	if f.Mode() == userform.ModeUpdate {
		msg = MsgUserUpdated
	}
	fut, err := f.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return s.afterSubmit(ctx, fut, gen, msg), nil
}

// RetryEditing runs the form's initial load again after it failed.
func (s *Screen) RetryEditing(ctx context.Context) (*async.Future[bool], error) {
	f, _ := s.currentForm()
	mode, ok := s.coord.State().(Editing)
	if f == nil || !ok {
		return nil, s.unsupported(string(userform.EventInitial))
	}
	return f.Init(ctx, mode.Target)
}

// CancelEditing closes the open form without saving. A form whose initial
// load failed has nothing to abandon and is closed directly.
func (s *Screen) CancelEditing(ctx context.Context) error {
	f, _ := s.currentForm()
	if f == nil {
		return s.unsupported(string(userform.EventOnEndEditing))
	}
	if f.State().Phase() == userform.PhaseInitial {
		return s.coord.EndEditing(ctx)
	}
	var endErr error
	err := f.OnEndEditing(ctx, func() { endErr = s.coord.EndEditing(ctx) })
	return errors.Join(err, endErr)
}

// SubmitDeletion deletes the user under confirmation. On success it toasts,
// closes the confirmation and reloads the list before the returned future
// completes.
func (s *Screen) SubmitDeletion(ctx context.Context) (*async.Future[bool], error) {
	d, gen := s.currentDeletion()
	if d == nil {
		return nil, s.unsupported(string(userdeletion.EventSubmit))
	}
	fut, err := d.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return s.afterSubmit(ctx, fut, gen, MsgUserDeleted), nil
}

// RetryDeletion loads the user under confirmation again after it failed.
func (s *Screen) RetryDeletion(ctx context.Context) (*async.Future[bool], error) {
	d, _ := s.currentDeletion()
	mode, ok := s.coord.State().(Deleting)
	if d == nil || !ok {
		return nil, s.unsupported(string(userdeletion.EventInitial))
	}
	return d.Init(ctx, mode.UserID)
}

// CancelDeletion closes the confirmation without deleting. A confirmation
// whose user failed to load is closed directly.
func (s *Screen) CancelDeletion(ctx context.Context) error {
	d, _ := s.currentDeletion()
	if d == nil {
		return s.unsupported(string(userdeletion.EventOnEndDeletion))
	}
	if d.State().Phase() == userdeletion.PhaseInitial {
		return s.coord.EndDeleting(ctx)
	}
	var endErr error
	err := d.OnEndDeletion(ctx, func() { endErr = s.coord.EndDeleting(ctx) })
	return errors.Join(err, endErr)
}

// afterSubmit closes the workflow opened at gen once its submit succeeded.
// The list reloads even if the workflow was closed first.
func (s *Screen) afterSubmit(ctx context.Context, fut *async.Future[bool], gen uint64, msg string) *async.Future[bool] {
	ctx = context.WithoutCancel(ctx)
	return async.Then(fut, func(ok bool, err error) (bool, error) {
		if err != nil || !ok {
			return ok, err
		}
		s.toasts.Success(msg)
		if err := s.coord.SubmitSucceeded(ctx, gen); err != nil {
			return true, err
		}
		return true, nil
	})
}

// DismissToast hides a toast before its TTL.
func (s *Screen) DismissToast(id string) bool {
	return s.toasts.Dismiss(id)
}

// View returns the current combined snapshot.
func (s *Screen) View() View { return s.view.State() }

// Subscribe registers fn for every combined snapshot.
func (s *Screen) Subscribe(fn func(View)) func() { return s.view.Subscribe(fn) }

// Watch streams combined snapshots, starting with the current one.
func (s *Screen) Watch(ctx context.Context) <-chan View { return s.view.Watch(ctx) }

// Close disposes every workflow of the screen. Watch channels are closed.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	form, deletion := s.form, s.deletion
	s.form, s.deletion = nil, nil
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	s.cancel()
	if form != nil {
		form.dispose()
	}
	if deletion != nil {
		deletion.dispose()
	}
	for _, u := range unsubs {
		u()
	}
	s.list.Dispose()
	s.coord.Dispose()
	s.toasts.Close()
	s.indicator.Close()
	s.view.Close()
}

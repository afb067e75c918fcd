package usermanagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userform"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/statemachine"
	"github.com/dmitrymomot/useradmin/pkg/store"
)

type Phase string

const (
	PhaseReady    Phase = "ready"
	PhaseEditing  Phase = "editing"
	PhaseDeleting Phase = "deleting"
)

type Event string

const (
	EventStartEditing  Event = "start-editing"
	EventStartDeleting Event = "start-deleting"
	EventEndEditing    Event = "end-editing"
	EventEndDeleting   Event = "end-deleting"

	eventSubmitSucceeded Event = ".submit-succeeded"
)

// State is one of Ready, Editing or Deleting.
type State interface {
	flow.Snapshot[Phase]
	Actions() []Event
	isState()
}

type Ready struct{}

// Editing shows the user form for Target.
type Editing struct {
	Target userform.Target
}

// Deleting shows the deletion confirmation for UserID.
type Deleting struct {
	UserID string
}

func (Ready) Phase() Phase    { return PhaseReady }
func (Editing) Phase() Phase  { return PhaseEditing }
func (Deleting) Phase() Phase { return PhaseDeleting }

func (s Ready) PhaseName() string    { return string(s.Phase()) }
func (s Editing) PhaseName() string  { return string(s.Phase()) }
func (s Deleting) PhaseName() string { return string(s.Phase()) }

func (s Ready) Actions() []Event    { return flow.Actions(coordinatorTable, s.Phase()) }
func (s Editing) Actions() []Event  { return flow.Actions(coordinatorTable, s.Phase()) }
func (s Deleting) Actions() []Event { return flow.Actions(coordinatorTable, s.Phase()) }

func (Ready) isState()    {}
func (Editing) isState()  {}
func (Deleting) isState() {}

var coordinatorTable = statemachine.MustNew(
	statemachine.WithTransition(PhaseReady, PhaseEditing, EventStartEditing),
	statemachine.WithTransition(PhaseReady, PhaseDeleting, EventStartDeleting),
	statemachine.WithTransition(PhaseEditing, PhaseReady, EventEndEditing),
	statemachine.WithTransition(PhaseEditing, PhaseReady, eventSubmitSucceeded),
	statemachine.WithTransition(PhaseDeleting, PhaseReady, EventEndDeleting),
	statemachine.WithTransition(PhaseDeleting, PhaseReady, eventSubmitSucceeded),
)

// Reloader asks the list to fetch again. It must not block.
type Reloader func(ctx context.Context)

// Coordinator switches the screen between the list, the form and the
// deletion confirmation.
type Coordinator struct {
	m      *flow.Machine[State, Phase, Event]
	reload Reloader
	logger *slog.Logger
}

func NewCoordinator(reload Reloader, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Workflow("usermanagement"))
	return &Coordinator{
		m:      flow.New[State, Phase, Event]("usermanagement", coordinatorTable, Ready{}, log),
		reload: reload,
		logger: log,
	}
}

// StartEditing opens the form for target.
func (c *Coordinator) StartEditing(ctx context.Context, target userform.Target) error {
	if target == nil {
		return fmt.Errorf("start editing: nil target")
	}
	_, _, err := c.m.Fire(ctx, EventStartEditing, target, func(State, Phase) (State, error) {
		return Editing{Target: target}, nil
	})
	return err
}

// StartDeleting opens the deletion confirmation for userID.
func (c *Coordinator) StartDeleting(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("start deleting: %w", userdeletion.ErrEmptyUserID)
	}
	_, _, err := c.m.Fire(ctx, EventStartDeleting, userID, func(State, Phase) (State, error) {
		return Deleting{UserID: userID}, nil
	})
	return err
}

func (c *Coordinator) EndEditing(ctx context.Context) error {
	return c.back(ctx, EventEndEditing)
}

func (c *Coordinator) EndDeleting(ctx context.Context) error {
	return c.back(ctx, EventEndDeleting)
}

// SubmitSucceeded closes the form or confirmation opened at generation gen
// and fires the reload signal. The reload fires even when that form was
// closed or replaced in the meantime; only the transition is skipped then.
func (c *Coordinator) SubmitSucceeded(ctx context.Context, gen uint64) error {
	_, err := c.m.FireAt(ctx, gen, eventSubmitSucceeded, nil, func(State, Phase) (State, error) {
		return Ready{}, nil
	})
	if c.reload != nil {
		c.reload(ctx)
	}
	if errors.Is(err, store.ErrStale) || flow.IsUnsupported(err) {
		c.logger.DebugContext(ctx, "submit success after mode change", logger.Error(err))
		return nil
	}
	return err
}

func (c *Coordinator) back(ctx context.Context, event Event) error {
	_, _, err := c.m.Fire(ctx, event, nil, func(State, Phase) (State, error) {
		return Ready{}, nil
	})
	return err
}

func (c *Coordinator) Reset() error { return c.m.Reset(Ready{}) }

func (c *Coordinator) Dispose() { c.m.Dispose() }

func (c *Coordinator) State() State { return c.m.State() }

// Generation counts committed mode changes.
func (c *Coordinator) Generation() uint64 { return c.m.Generation() }

func (c *Coordinator) Actions() []Event { return c.State().Actions() }

func (c *Coordinator) Subscribe(fn func(State)) func() { return c.m.Subscribe(fn) }

func (c *Coordinator) Watch(ctx context.Context) <-chan State { return c.m.Watch(ctx) }

// Package pageloading provides the page-level loading indicator driven by the
// workflows' loading phases.
package pageloading

import (
	"context"
	"sync"

	"github.com/dmitrymomot/useradmin/pkg/store"
)

const (
	PhaseHidden = "hidden"
	PhaseShown  = "shown"
)

// State is the indicator snapshot. Pending counts the Show calls not yet
// matched by Hide.
type State struct {
	Pending int
}

func (s State) PhaseName() string {
	if s.Visible() {
		return PhaseShown
	}
	return PhaseHidden
}

// Visible reports whether the indicator is shown.
func (s State) Visible() bool {
	return s.Pending > 0
}

// Indicator is a reference-counted loading indicator: it stays shown while at
// least one caller that called Show has not called Hide yet.
type Indicator struct {
	store *store.Store[State]
}

func New(opts ...store.Option) *Indicator {
	opts = append([]store.Option{store.WithName("pageloading")}, opts...)
	return &Indicator{store: store.New(State{}, opts...)}
}

// Show registers one pending operation.
func (i *Indicator) Show() {
	_, _, _ = i.store.Transition(func(s State) (State, error) {
		s.Pending++
		return s, nil
	})
}

// Hide releases one pending operation. Extra calls are ignored.
func (i *Indicator) Hide() {
	_, _, _ = i.store.Transition(func(s State) (State, error) {
		if s.Pending == 0 {
			return s, store.ErrUnchanged
		}
		s.Pending--
		return s, nil
	})
}

// Track calls Show and returns the matching Hide, which is safe to call twice.
func (i *Indicator) Track() (done func()) {
	i.Show()
	var once sync.Once
	return func() { once.Do(i.Hide) }
}

func (i *Indicator) State() State { return i.store.State() }

func (i *Indicator) Visible() bool { return i.store.State().Visible() }

func (i *Indicator) Subscribe(fn func(State)) func() { return i.store.Subscribe(fn) }

func (i *Indicator) Watch(ctx context.Context) <-chan State { return i.store.Watch(ctx) }

func (i *Indicator) Close() { i.store.Close() }

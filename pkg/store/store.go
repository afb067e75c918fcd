package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/useradmin/pkg/logger"
)

// ErrUnchanged may be returned by a transition function to signal that the
// current snapshot stays as is. Transition then returns nil and publishes nothing.
var ErrUnchanged = errors.New("store: unchanged")

// Phased is implemented by every snapshot type a Store can hold.
type Phased interface {
	PhaseName() string
}

// Listener observes published snapshots.
type Listener[S Phased] func(S)

type listener[S Phased] struct {
	id uint64
	fn Listener[S]
}

// Store owns the current snapshot of one workflow instance.
// All methods are safe for concurrent use.
type Store[S Phased] struct {
	cfg config

	mu         sync.Mutex
	state      S
	generation uint64
	closed     bool

	listeners []listener[S]
	nextID    uint64

	// queue holds committed snapshots not yet delivered to listeners.
	queue    []S
	draining bool

	watchers map[*watcher[S]]struct{}
}

// New creates a store holding initial.
func New[S Phased](initial S, opts ...Option) *Store[S] {
	cfg := config{
		name:        "store",
		logger:      slog.Default(),
		watchBuffer: 16,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store[S]{
		cfg:      cfg,
		state:    initial,
		watchers: make(map[*watcher[S]]struct{}),
	}
}

// State returns the current snapshot.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the number of snapshots published so far.
func (s *Store[S]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Subscribe registers fn to be called with every published snapshot.
// The returned function removes the listener; calling it more than once is safe.
func (s *Store[S]) Subscribe(fn Listener[S]) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[S]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(l listener[S]) bool {
				return l.id == id
			})
		})
	}
}

// Transition computes the next snapshot from the current one and publishes it.
// fn runs under the store lock and must not call back into the store.
// If fn returns an error the state is left untouched and the error is returned,
// except for ErrUnchanged which yields a nil error.
func (s *Store[S]) Transition(fn func(current S) (S, error)) (S, uint64, error) {
	s.mu.Lock()
	if s.closed {
		cur, gen := s.state, s.generation
		s.mu.Unlock()
		return cur, gen, ErrClosed
	}
	return s.apply(fn)
}

// TransitionAt works like Transition but only if no snapshot was published
// after generation gen. Otherwise it returns ErrStale without calling fn.
func (s *Store[S]) TransitionAt(gen uint64, fn func(current S) (S, error)) (S, error) {
	s.mu.Lock()
	if s.closed {
		cur := s.state
		s.mu.Unlock()
		return cur, ErrClosed
	}
	if s.generation != gen {
		cur := s.state
		s.mu.Unlock()
		s.cfg.logger.Debug("stale resolution discarded",
			logger.Workflow(s.cfg.name),
			slog.Uint64("expected_generation", gen),
			slog.Uint64("generation", s.generation),
		)
		return cur, ErrStale
	}
	next, _, err := s.apply(fn)
	return next, err
}

// Reset publishes next unconditionally and advances the generation.
func (s *Store[S]) Reset(next S) error {
	_, _, err := s.Transition(func(S) (S, error) { return next, nil })
	return err
}

// Close releases watchers and listeners. Later transitions return ErrClosed.
func (s *Store[S]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.listeners = nil
	for w := range s.watchers {
		w.close()
	}
	clear(s.watchers)
}

// apply must be called with s.mu held; it releases the lock.
func (s *Store[S]) apply(fn func(S) (S, error)) (S, uint64, error) {
	prev := s.state
	next, err := fn(prev)
	if err != nil {
		gen := s.generation
		s.mu.Unlock()
		if errors.Is(err, ErrUnchanged) {
			return prev, gen, nil
		}
		return prev, gen, err
	}

	s.state = next
	s.generation++
	gen := s.generation
	s.queue = append(s.queue, next)
	for w := range s.watchers {
		w.send(next)
	}
	s.trace(prev, next)

	s.deliver()
	return next, gen, nil
}

// deliver must be called with s.mu held; it releases the lock.
// Only one goroutine drains the queue at a time, which keeps delivery ordered
// and lets listeners trigger further transitions.
func (s *Store[S]) deliver() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.queue) > 0 {
		snap := s.queue[0]
		var zero S
		s.queue[0] = zero
		s.queue = s.queue[1:]
		listeners := slices.Clone(s.listeners)

		s.mu.Unlock()
		for _, l := range listeners {
			l.fn(snap)
		}
		s.mu.Lock()
	}

	s.draining = false
	s.mu.Unlock()
}

func (s *Store[S]) trace(prev, next S) {
	from, to := prev.PhaseName(), next.PhaseName()
	if from == to {
		s.cfg.logger.Debug("state updated",
			logger.Workflow(s.cfg.name),
			logger.Phase(to),
		)
		return
	}
	s.cfg.logger.Debug("state transition",
		logger.Workflow(s.cfg.name),
		logger.Transition(from, to),
	)
}

// Watch returns a channel receiving the current snapshot followed by every
// published one. A watcher whose buffer is full loses its oldest pending
// snapshot instead of blocking publication. The channel is closed when ctx is
// done or the store is closed.
func (s *Store[S]) Watch(ctx context.Context) <-chan S {
	w := newWatcher[S](s.cfg.watchBuffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		w.close()
		return w.ch
	}
	s.watchers[w] = struct{}{}
	w.send(s.state)
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if _, ok := s.watchers[w]; ok {
				delete(s.watchers, w)
				w.close()
			}
			s.mu.Unlock()
		case <-w.done:
		}
	}()

	return w.ch
}

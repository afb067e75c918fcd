package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/pkg/store"
)

type snap struct {
	phase string
	n     int
}

func (s snap) PhaseName() string { return s.phase }

func newStore() *store.Store[snap] {
	return store.New(snap{phase: "initial"}, store.WithName("test"), store.WithLogger(logger.Discard()))
}

func TestTransition(t *testing.T) {
	t.Parallel()

	t.Run("publishes to listeners synchronously", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		var got []snap
		s.Subscribe(func(v snap) { got = append(got, v) })

		next, gen, err := s.Transition(func(cur snap) (snap, error) {
			return snap{phase: "loading", n: cur.n + 1}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), gen)
		assert.Equal(t, snap{phase: "loading", n: 1}, next)
		assert.Equal(t, []snap{{phase: "loading", n: 1}}, got)
		assert.Equal(t, next, s.State())
	})

	t.Run("error leaves state untouched", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		calls := 0
		s.Subscribe(func(snap) { calls++ })
		boom := errors.New("boom")

		cur, gen, err := s.Transition(func(snap) (snap, error) {
			return snap{phase: "broken"}, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "initial", cur.phase)
		assert.Equal(t, uint64(0), gen)
		assert.Equal(t, uint64(0), s.Generation())
		assert.Zero(t, calls)
	})

	t.Run("unchanged publishes nothing", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		calls := 0
		s.Subscribe(func(snap) { calls++ })

		_, _, err := s.Transition(func(cur snap) (snap, error) { return cur, store.ErrUnchanged })
		require.NoError(t, err)
		assert.Zero(t, calls)
		assert.Equal(t, uint64(0), s.Generation())
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		calls := 0
		unsubscribe := s.Subscribe(func(snap) { calls++ })
		unsubscribe()
		unsubscribe()

		require.NoError(t, s.Reset(snap{phase: "ready"}))
		assert.Zero(t, calls)
	})

	t.Run("listener re-entrance is queued in order", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		var order []string
		s.Subscribe(func(v snap) {
			order = append(order, "a:"+v.phase)
			if v.phase == "loading" {
				_, _, err := s.Transition(func(snap) (snap, error) { return snap{phase: "loaded"}, nil })
				assert.NoError(t, err)
			}
		})
		s.Subscribe(func(v snap) { order = append(order, "b:"+v.phase) })

		require.NoError(t, s.Reset(snap{phase: "loading"}))
		assert.Equal(t, []string{"a:loading", "b:loading", "a:loaded", "b:loaded"}, order)
		assert.Equal(t, "loaded", s.State().phase)
	})
}

func TestTransitionAt(t *testing.T) {
	t.Parallel()
	s := newStore()

	_, gen, err := s.Transition(func(snap) (snap, error) { return snap{phase: "loading"}, nil })
	require.NoError(t, err)

	// A newer transition makes the captured generation stale.
	require.NoError(t, s.Reset(snap{phase: "initial"}))

	called := false
	cur, err := s.TransitionAt(gen, func(snap) (snap, error) {
		called = true
		return snap{phase: "loaded"}, nil
	})
	assert.ErrorIs(t, err, store.ErrStale)
	assert.False(t, called)
	assert.Equal(t, "initial", cur.phase)

	next, err := s.TransitionAt(s.Generation(), func(snap) (snap, error) { return snap{phase: "loaded"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "loaded", next.phase)
}

func TestClose(t *testing.T) {
	t.Parallel()
	s := newStore()
	ch := s.Watch(context.Background())
	s.Close()
	s.Close()

	_, _, err := s.Transition(func(cur snap) (snap, error) { return cur, nil })
	assert.ErrorIs(t, err, store.ErrClosed)
	_, err = s.TransitionAt(0, func(cur snap) (snap, error) { return cur, nil })
	assert.ErrorIs(t, err, store.ErrClosed)

	first, ok := <-ch
	assert.True(t, ok)
	assert.Equal(t, "initial", first.phase)
	_, ok = <-ch
	assert.False(t, ok)

	_, ok = <-s.Watch(context.Background())
	assert.False(t, ok, "watch on closed store returns closed channel")
}

func TestWatch(t *testing.T) {
	t.Parallel()

	t.Run("receives current then published snapshots", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := s.Watch(ctx)
		require.NoError(t, s.Reset(snap{phase: "loading"}))

		assert.Equal(t, "initial", (<-ch).phase)
		assert.Equal(t, "loading", (<-ch).phase)
	})

	t.Run("slow watcher keeps the latest snapshot", func(t *testing.T) {
		t.Parallel()
		s := store.New(snap{phase: "initial"}, store.WithWatchBuffer(1), store.WithLogger(logger.Discard()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch := s.Watch(ctx)
		for i := 1; i <= 5; i++ {
			require.NoError(t, s.Reset(snap{phase: "step", n: i}))
		}

		assert.Equal(t, 5, (<-ch).n)
	})

	t.Run("channel closes on context cancel", func(t *testing.T) {
		t.Parallel()
		s := newStore()
		ctx, cancel := context.WithCancel(context.Background())
		ch := s.Watch(ctx)
		<-ch
		cancel()

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("watch channel was not closed")
		}
	})
}

func TestConcurrentTransitions(t *testing.T) {
	t.Parallel()
	s := newStore()
	var mu sync.Mutex
	seen := 0
	s.Subscribe(func(snap) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Transition(func(cur snap) (snap, error) {
				return snap{phase: "counting", n: cur.n + 1}, nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.State().n)
	assert.Equal(t, uint64(50), s.Generation())
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen == 50
	}, time.Second, 5*time.Millisecond)
}

package store

// watcher is a channel subscriber. send and close are only called with the
// owning store's lock held, so they never race each other.
type watcher[S any] struct {
	ch     chan S
	done   chan struct{}
	closed bool
}

func newWatcher[S any](bufferSize int) *watcher[S] {
	return &watcher[S]{
		ch:   make(chan S, max(bufferSize, 1)),
		done: make(chan struct{}),
	}
}

func (w *watcher[S]) send(v S) {
	if w.closed {
		return
	}
	select {
	case w.ch <- v:
		return
	default:
	}
	// Buffer full: drop the oldest pending snapshot so the latest one wins.
	select {
	case <-w.ch:
	default:
	}
	select {
	case w.ch <- v:
	default:
	}
}

func (w *watcher[S]) close() {
	if w.closed {
		return
	}
	w.closed = true
	close(w.ch)
	close(w.done)
}

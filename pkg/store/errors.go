package store

import "errors"

var (
	// ErrClosed is returned by transitions attempted after Close.
	ErrClosed = errors.New("store: closed")
	// ErrStale is returned by TransitionAt when the generation has advanced.
	ErrStale = errors.New("store: stale generation")
)

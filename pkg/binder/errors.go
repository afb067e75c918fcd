package binder

import "errors"

var (
	// ErrNotApplicable means the request does not carry the binder's source.
	ErrNotApplicable = errors.New("binder not applicable")

	ErrInvalidPath    = errors.New("failed to parse path parameters")
	ErrInvalidQuery   = errors.New("failed to parse query parameters")
	ErrInvalidSignals = errors.New("failed to read datastar signals")
)

package users

import "errors"

var (
	ErrNotFound       = errors.New("users: user not found")
	ErrInvalidVariant = errors.New("users: invalid user variant")
	ErrInvalidDraft   = errors.New("users: invalid user payload")
	ErrInvalidSeed    = errors.New("users: invalid seed data")
)

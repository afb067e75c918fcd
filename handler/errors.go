package handler

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

var (
	// ErrNilResponse means a handler returned nil instead of a Response.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrSSENotInitialized means a stream was requested outside a DataStar request.
	ErrSSENotInitialized = errors.New("SSE not initialized for this request")
	// ErrBadRequest wraps binder failures.
	ErrBadRequest = NewHTTPError(http.StatusBadRequest, "bad_request")
)

// HTTPError is an error carrying a status code and a machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

// NewHTTPError returns an HTTPError.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Key)
}

// Is matches any HTTPError with the same code and key.
func (e HTTPError) Is(target error) bool {
	var t HTTPError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Key == e.Key
}

// ValidationError maps field names to their messages.
type ValidationError map[string][]string

// NewValidationError builds a ValidationError from one message per field.
func NewValidationError(fields map[string]string) ValidationError {
	v := make(ValidationError, len(fields))
	for k, msg := range fields {
		v[k] = []string{msg}
	}
	return v
}

func (v ValidationError) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// errorResponse defers to the ErrorHandler.
type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error returns a Response whose rendering fails with err, routing it to
// the ErrorHandler.
func Error(err error) Response {
	return errorResponse{err: err}
}

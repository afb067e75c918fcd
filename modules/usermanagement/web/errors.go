package web

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/useradmin/handler"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userdeletion"
	"github.com/dmitrymomot/useradmin/svc/users"
)

var (
	errUnsupportedAction = handler.NewHTTPError(http.StatusConflict, "unsupported_action")
	errDiscarded         = handler.NewHTTPError(http.StatusConflict, "discarded")
	errNotFound          = handler.NewHTTPError(http.StatusNotFound, "not_found")
	errInvalidUser       = handler.NewHTTPError(http.StatusUnprocessableEntity, "invalid_user")
	errEmptyUserID       = handler.NewHTTPError(http.StatusBadRequest, "empty_user_id")
	errUnavailable       = handler.NewHTTPError(http.StatusServiceUnavailable, "unavailable")
)

// classify maps workflow and service errors to HTTP errors.
func classify(err error) (handler.HTTPError, bool) {
	switch {
	case flow.IsUnsupported(err):
		return errUnsupportedAction, true
	case errors.Is(err, ErrRegistryClosed):
		return errUnavailable, true
	case flow.IsDiscarded(err):
		return errDiscarded, true
	case errors.Is(err, users.ErrNotFound):
		return errNotFound, true
	case errors.Is(err, users.ErrInvalidDraft), errors.Is(err, users.ErrInvalidVariant):
		return errInvalidUser, true
	case errors.Is(err, userdeletion.ErrEmptyUserID):
		return errEmptyUserID, true
	}
	return handler.HTTPError{}, false
}

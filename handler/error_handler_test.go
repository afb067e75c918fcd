package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/handler"
	"github.com/dmitrymomot/useradmin/pkg/logger"
)

var errMissing = errors.New("user not found")

func classify(err error) (handler.HTTPError, bool) {
	if errors.Is(err, errMissing) {
		return handler.NewHTTPError(http.StatusNotFound, "not_found"), true
	}
	return handler.HTTPError{}, false
}

func errorPage(p handler.ErrorPageParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<h1>"+templ.EscapeString(p.Error)+"</h1>")
		return err
	})
}

func errorToast(p handler.ErrorToastParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="toast `+p.Type+`">`+templ.EscapeString(p.Message)+`</div>`)
		return err
	})
}

func newErrorHandler() handler.ErrorHandler[handler.Context] {
	return handler.NewErrorHandler(logger.Discard(), handler.ErrorHandlerConfig{
		ErrorPage:  errorPage,
		ErrorToast: errorToast,
		Classify:   classify,
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		key    string
	}{
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, key: "internal_error"},
		{name: "http error", err: handler.NewHTTPError(http.StatusConflict, "unsupported_action"), status: http.StatusConflict, key: "unsupported_action"},
		{name: "classified", err: errors.Join(errors.New("get"), errMissing), status: http.StatusNotFound, key: "not_found"},
		{name: "validation", err: handler.NewValidationError(map[string]string{"name": "Invalid name"}), status: http.StatusUnprocessableEntity, key: "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := handler.Classify(tt.err, classify)
			assert.Equal(t, tt.status, info.StatusCode)
			assert.Equal(t, tt.key, info.Key)
		})
	}
}

func TestErrorHandler_Page(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/users/x", nil)
	newErrorHandler()(handler.NewContext(w, r), errMissing)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "<h1>user not found</h1>", w.Body.String())
}

func TestErrorHandler_JSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/form", nil)
	r.Header.Set("Accept", "application/json")
	newErrorHandler()(handler.NewContext(w, r), handler.NewValidationError(map[string]string{"email": "Invalid email"}))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body handler.JSONResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, []string{"Invalid email"}, body.Error.Details["email"])
}

func TestErrorHandler_DataStarToast(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/actions/delete", nil)
	r.Header.Set("Datastar-Request", "true")
	newErrorHandler()(handler.NewContext(w, r), handler.NewHTTPError(http.StatusConflict, "unsupported_action"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, w.Body.String(), "datastar-patch-elements")
	assert.Contains(t, w.Body.String(), `class="toast warning"`)
	assert.Contains(t, w.Body.String(), "#toasts")
}

func TestErrorHandler_Fallback(t *testing.T) {
	t.Parallel()

	h := handler.NewErrorHandler(logger.Discard(), handler.ErrorHandlerConfig{})
	w := httptest.NewRecorder()
	h(handler.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil)), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An error occurred processing your request")
}

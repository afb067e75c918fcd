package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/useradmin/pkg/logger"
)

// ErrorPageParams is passed to ErrorHandlerConfig.ErrorPage.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
}

// ErrorToastParams is passed to ErrorHandlerConfig.ErrorToast.
type ErrorToastParams struct {
	Message   string
	Type      string // "error" or "warning"
	RequestID string
}

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	StatusCode int
	Key        string
	Message    string
	Details    map[string][]string
	Type       string
	LogLevel   slog.Level
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders full pages for plain browser requests.
	ErrorPage func(ErrorPageParams) templ.Component
	// ErrorToast renders the toast patched in for DataStar requests.
	ErrorToast func(ErrorToastParams) templ.Component
	// ToastTarget defaults to "#toasts".
	ToastTarget string
	// ToastMode defaults to PatchPrepend.
	ToastMode datastar.ElementPatchMode
	// Classify maps application errors to an HTTPError. Errors it does not
	// recognise fall back to HTTPError and ValidationError detection.
	Classify func(error) (HTTPError, bool)
}

func (cfg ErrorHandlerConfig) withDefaults() ErrorHandlerConfig {
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toasts"
	}
	if cfg.ToastMode == "" {
		cfg.ToastMode = PatchPrepend
	}
	return cfg
}

// Classify turns err into an ErrorInfo. classify may be nil.
func Classify(err error, classify func(error) (HTTPError, bool)) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Key:        "internal_error",
		Message:    "An error occurred processing your request",
	}

	var httpErr HTTPError
	if classify != nil {
		if mapped, ok := classify(err); ok {
			info.StatusCode, info.Key = mapped.Code, mapped.Key
			info.Message = err.Error()
		}
	}
	if info.Key == "internal_error" && errors.As(err, &httpErr) {
		info.StatusCode, info.Key = httpErr.Code, httpErr.Key
		info.Message = http.StatusText(httpErr.Code)
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		info.StatusCode = http.StatusUnprocessableEntity
		info.Key = "validation_error"
		info.Message = validationErr.Error()
		info.Details = validationErr
	}

	if info.StatusCode < http.StatusInternalServerError {
		info.Type = "warning"
		info.LogLevel = slog.LevelWarn
	} else {
		info.Type = "error"
		info.LogLevel = slog.LevelError
	}
	return info
}

// NewErrorHandler returns an ErrorHandler that answers DataStar requests
// with a toast patch, JSON clients with the error envelope and browsers
// with the error page.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		w := ctx.ResponseWriter()
		requestID := middleware.GetReqID(r.Context())
		info := Classify(err, cfg.Classify)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestID),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		var renderErr error
		switch {
		case IsDataStar(r) && cfg.ErrorToast != nil:
			// Status codes cannot reach the client once the stream is open.
			renderErr = Templ(cfg.ErrorToast(ErrorToastParams{
				Message:   info.Message,
				Type:      info.Type,
				RequestID: requestID,
			}), WithTarget(cfg.ToastTarget), WithPatchMode(cfg.ToastMode)).Render(w, r)
		case WantsJSON(r) || IsDataStar(r):
			renderErr = JSONError(info).Render(w, r)
		case cfg.ErrorPage != nil:
			renderErr = TemplWithStatus(info.StatusCode, cfg.ErrorPage(ErrorPageParams{
				Error:      info.Message,
				StatusCode: info.StatusCode,
				RequestID:  requestID,
				RetryURL:   r.URL.Path,
			})).Render(w, r)
		default:
			http.Error(w, info.Message, info.StatusCode)
		}

		if renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error",
				logger.RequestID(requestID),
				logger.Error(renderErr),
			)
		}
	}
}

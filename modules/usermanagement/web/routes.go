package web

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/useradmin/handler"
	"github.com/dmitrymomot/useradmin/modules/usermanagement"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/flow"
	"github.com/dmitrymomot/useradmin/modules/usermanagement/userform"
	"github.com/dmitrymomot/useradmin/pkg/async"
	"github.com/dmitrymomot/useradmin/pkg/binder"
	"github.com/dmitrymomot/useradmin/pkg/httpserver"
	"github.com/dmitrymomot/useradmin/pkg/logger"
	"github.com/dmitrymomot/useradmin/svc/users"
)

// Context is the handler context of every screen route.
type Context struct {
	handler.Context
	sessionID string
	screen    *usermanagement.Screen
	err       error
}

// SessionID returns the id of the session the request belongs to.
func (c *Context) SessionID() string { return c.sessionID }

// Screen returns the session's screen.
func (c *Context) Screen() *usermanagement.Screen { return c.screen }

type router struct {
	registry      *Registry
	logger        *slog.Logger
	errors        handler.ErrorHandler[handler.Context]
	checks        []httpserver.Check
	healthTimeout time.Duration
}

// RouterOption configures NewRouter.
type RouterOption func(*router)

// WithRouterLogger sets the logger for requests and errors.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithReadinessChecks adds checks served on /readyz.
func WithReadinessChecks(timeout time.Duration, checks ...httpserver.Check) RouterOption {
	return func(r *router) {
		r.healthTimeout = timeout
		r.checks = append(r.checks, checks...)
	}
}

// NewRouter mounts the page, its event stream, the JSON view and the
// screen actions.
//
// Actions sent by DataStar answer 204 and the change reaches the page
// through the stream. Other clients get the resulting view as JSON;
// asynchronous actions are awaited first unless ?wait=false is given.
func NewRouter(registry *Registry, opts ...RouterOption) http.Handler {
	rt := &router{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.errors = handler.NewErrorHandler(rt.logger, handler.ErrorHandlerConfig{
		ErrorPage:  ErrorPage,
		ErrorToast: ErrorToast,
		Classify:   classify,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(rt.logger), middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(rt.logger, 0))
	r.Get("/readyz", httpserver.HealthCheckHandler(rt.logger, rt.healthTimeout, rt.checks...))

	r.Get("/", route(rt, rt.page))
	r.Get("/stream", route(rt, rt.stream))
	r.Get("/api/view", route(rt, rt.view))

	r.Route("/actions", func(r chi.Router) {
		r.Post("/load-users", route(rt, rt.loadUsers, binder.Query()))
		r.Post("/users/{id}/select", route(rt, rt.selectUser, binder.Path(chi.URLParam)))
		r.Post("/users/new/{type}", route(rt, rt.goToCreation, binder.Path(chi.URLParam)))
		r.Post("/update", route(rt, rt.updateSelected))
		r.Post("/delete", route(rt, rt.deleteSelected))
		r.Post("/form", route(rt, rt.setEditingUser, binder.Signals()))
		r.Post("/form/submit", route(rt, rt.submitForm, binder.Query()))
		r.Post("/form/retry", route(rt, rt.retryEditing, binder.Query()))
		r.Post("/form/cancel", route(rt, rt.cancelEditing))
		r.Post("/deletion/submit", route(rt, rt.submitDeletion, binder.Query()))
		r.Post("/deletion/retry", route(rt, rt.retryDeletion, binder.Query()))
		r.Post("/deletion/cancel", route(rt, rt.cancelDeletion))
		r.Post("/toasts/{id}/dismiss", route(rt, rt.dismissToast, binder.Path(chi.URLParam)))
	})
	return r
}

func route[R any](rt *router, h handler.HandlerFunc[*Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithContextFactory[*Context, R](rt.newContext),
		handler.WithErrorHandler[*Context, R](rt.handleError),
		handler.WithBinders[*Context, R](binders...),
		handler.WithDecorators[*Context, R](requireSession[R]),
	)
}

func (rt *router) newContext(w http.ResponseWriter, r *http.Request) *Context {
	c := &Context{Context: handler.NewContext(w, r)}
	c.sessionID, c.screen, c.err = rt.registry.Acquire(w, r)
	return c
}

func (rt *router) handleError(c *Context, err error) {
	rt.errors(c, err)
}

func requireSession[R any](next handler.HandlerFunc[*Context, R]) handler.HandlerFunc[*Context, R] {
	return func(c *Context, req R) handler.Response {
		if c.err != nil {
			return handler.Error(c.err)
		}
		return next(c, req)
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(logger.Component("http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.DebugContext(r.Context(), "request",
				logger.RequestID(middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}

type noRequest struct{}

type idRequest struct {
	ID string `path:"id"`
}

type typeRequest struct {
	Type string `path:"type"`
}

type asyncRequest struct {
	Wait *bool `query:"wait"`
}

// formSignals are the form fields DataStar sends; absent fields stay nil.
type formSignals struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Lanr  *string `json:"lanr"`
}

func (rt *router) page(c *Context, _ noRequest) handler.Response {
	return handler.Templ(Page(c.Screen().View()))
}

func (rt *router) stream(c *Context, _ noRequest) handler.Response {
	return handler.SSE(func(sc handler.StreamContext) error {
		detach := rt.registry.Attach(c.SessionID())
		defer detach()

		for v := range c.Screen().Watch(sc) {
			if err := sc.SendComponent(Screen(v), handler.WithTarget("#"+ScreenID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (rt *router) view(c *Context, _ noRequest) handler.Response {
	return handler.JSON(NewViewJSON(c.Screen().View()))
}

// done answers an action that changed the screen.
func done(c *Context) handler.Response {
	if handler.IsDataStar(c.Request()) {
		return handler.Empty()
	}
	return handler.JSON(NewViewJSON(c.Screen().View()))
}

// settle waits for fut when the client asked for it. Outcomes that lost
// their race with a later action are not errors to the caller.
func settle[T any](c *Context, req asyncRequest, fut *async.Future[T], err error) handler.Response {
	if err != nil {
		return handler.Error(err)
	}
	wait := !handler.IsDataStar(c.Request())
	if req.Wait != nil {
		wait = *req.Wait
	}
	if wait {
		if _, err := fut.AwaitContext(c); err != nil && !flow.IsDiscarded(err) {
			return handler.Error(err)
		}
	}
	return done(c)
}

func (rt *router) loadUsers(c *Context, req asyncRequest) handler.Response {
	fut, err := c.Screen().LoadUsers(c)
	return settle(c, req, fut, err)
}

func (rt *router) selectUser(c *Context, req idRequest) handler.Response {
	if err := c.Screen().SelectUser(c, req.ID); err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) goToCreation(c *Context, req typeRequest) handler.Response {
	t := users.Type(req.Type)
	if !slices.Contains(users.Types, t) {
		return handler.Error(handler.NewValidationError(map[string]string{
			string(users.FieldType): users.MsgInvalidType,
		}))
	}
	if err := c.Screen().GoToCreation(c, t); err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) updateSelected(c *Context, _ noRequest) handler.Response {
	if err := c.Screen().UpdateSelected(c); err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) deleteSelected(c *Context, _ noRequest) handler.Response {
	if err := c.Screen().DeleteSelected(c); err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) setEditingUser(c *Context, req formSignals) handler.Response {
	err := c.Screen().SetEditingUser(c, userform.Patch{Name: req.Name, Email: req.Email, Lanr: req.Lanr})
	if err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) submitForm(c *Context, req asyncRequest) handler.Response {
	fut, err := c.Screen().SubmitForm(c)
	return settle(c, req, fut, err)
}

func (rt *router) retryEditing(c *Context, req asyncRequest) handler.Response {
	fut, err := c.Screen().RetryEditing(c)
	return settle(c, req, fut, err)
}

func (rt *router) cancelEditing(c *Context, _ noRequest) handler.Response {
	if err := c.Screen().CancelEditing(c); err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) submitDeletion(c *Context, req asyncRequest) handler.Response {
	fut, err := c.Screen().SubmitDeletion(c)
	return settle(c, req, fut, err)
}

func (rt *router) retryDeletion(c *Context, req asyncRequest) handler.Response {
	fut, err := c.Screen().RetryDeletion(c)
	return settle(c, req, fut, err)
}

func (rt *router) cancelDeletion(c *Context, _ noRequest) handler.Response {
	if err := c.Screen().CancelDeletion(c); err != nil {
		return handler.Error(err)
	}
	return done(c)
}

func (rt *router) dismissToast(c *Context, req idRequest) handler.Response {
	if !c.Screen().DismissToast(req.ID) {
		return handler.Error(errNotFound)
	}
	return done(c)
}

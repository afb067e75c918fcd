// Package handler turns typed handler functions into http.HandlerFunc values.
//
// A HandlerFunc receives a Context and a request struct filled by binders, and
// returns a Response that renders itself:
//
//	type selectUserRequest struct {
//		UserID string `path:"id"`
//	}
//
//	func selectUser(ctx handler.Context, req selectUserRequest) handler.Response {
//		if err := screen.SelectUser(ctx, req.UserID); err != nil {
//			return handler.Error(err)
//		}
//		return handler.Empty()
//	}
//
//	r.Post("/users/{id}/select", handler.Wrap(selectUser,
//		handler.WithBinders[handler.Context, selectUserRequest](binder.Path(chi.URLParam)),
//	))
//
// Responses adapt to DataStar requests: Templ sends an element patch over
// server-sent events when the request comes from DataStar and plain HTML
// otherwise, and SSE keeps a stream open for pushing patches.
//
// Errors from binders, handlers and rendering go to the ErrorHandler. The one
// built by NewErrorHandler maps them to a status code, logs them with the
// request id and answers with a toast patch, a JSON body or plain text
// depending on what the client asked for.
package handler

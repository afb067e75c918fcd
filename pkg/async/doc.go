// Package async runs computations in their own goroutine and exposes the
// outcome as a generic Future.
//
// Async starts fn with a child context that Future.Cancel cancels, so the
// owner of a long-running request can abandon it explicitly. Await blocks for
// the result, AwaitContext and AwaitWithTimeout bound the wait, and IsComplete
// and Done allow polling or selecting. Resolved builds an already completed
// future and Then chains a transformation.
//
//	fut := async.Async(ctx, id, func(ctx context.Context, id string) (users.User, error) {
//	    return svc.Get(ctx, id)
//	})
//	defer fut.Cancel()
//
//	user, err := fut.Await()
//
// A context that is already canceled when Async is called completes the future
// with the context error without running fn.
package async

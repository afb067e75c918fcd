// Package store holds a single immutable snapshot and publishes every accepted
// transition to its observers.
//
// A Store is the state owner of one workflow instance. Actions compute the next
// snapshot inside Transition, which runs under the store lock so only one
// logical mutation is in flight at a time. Accepted snapshots are delivered to
// Subscribe listeners synchronously and in publication order, and to Watch
// channels without blocking.
//
// Each accepted transition advances a generation counter. Asynchronous work
// captures the generation when it publishes its loading snapshot and resolves
// through TransitionAt, which refuses to apply a result once the generation has
// moved on:
//
//	_, gen, err := s.Transition(func(cur State) (State, error) { return loading(cur), nil })
//	go func() {
//	    res, err := fetch(ctx)
//	    _, _ = s.TransitionAt(gen, func(cur State) (State, error) { return loaded(cur, res, err), nil })
//	}()
//
// Listeners may call back into the store. Snapshots committed from inside a
// listener are queued and delivered after the current delivery finishes.
package store

// Package flow holds the mechanics shared by the user-management workflows.
//
// A Machine pairs an immutable statemachine.Table with a store.Store of phase
// snapshots. Every action goes through Fire, which consults the table for the
// current phase inside the store transition, so the check and the publication
// are atomic and a rejected event never touches the state. Asynchronous
// resolutions use FireAt with the generation returned by the Fire that
// published the loading snapshot; a Reset or Dispose in between advances the
// generation and cancels the contexts handed out by Bind, so late results are
// dropped.
package flow

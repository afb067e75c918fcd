// Package usermanagement wires the user list, the user form and the user
// deletion workflows into one screen.
//
// The Coordinator decides which of the three is visible. Screen owns a
// coordinator, a list, and a form or deletion instance while one is open,
// and folds all of them together with the loading indicator and the toasts
// into a single View snapshot:
//
//	screen := usermanagement.NewScreen(users.NewMemoryService())
//	defer screen.Close()
//
//	if _, err := screen.Start(ctx); err != nil {
//		return err
//	}
//	for view := range screen.Watch(ctx) {
//		render(view)
//	}
//
// Every action method returns an *statemachine.ErrUnsupportedTransition when
// the current phases do not accept it. Asynchronous actions return a future
// that completes once the outcome has been published.
package usermanagement

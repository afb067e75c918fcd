// Package toast holds transient success and error messages for a screen.
//
// A Center keeps the visible toasts in an observable store and dismisses each
// one after its TTL (DefaultTTL unless configured).
//
//	center := toast.NewCenter(toast.WithTTL(2 * time.Second))
//	defer center.Close()
//	center.Success("User created")
package toast

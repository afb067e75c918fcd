package binder

import "net/http"

// Query binds `query` tagged fields from the URL query string.
// Repeated and comma-separated values fill slices.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindToStruct(v, "query", func(name string) []string { return q[name] }, ErrInvalidQuery)
	}
}

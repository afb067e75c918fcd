package binder

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

// Signals decodes the DataStar signals sent with the request into v.
// GET requests carry them in the datastar query parameter, other methods in
// a JSON body. Requests without signals are not applicable.
func Signals() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if r.Method == http.MethodGet {
			if !r.URL.Query().Has("datastar") {
				return ErrNotApplicable
			}
		} else if r.ContentLength == 0 || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			return ErrNotApplicable
		}

		if err := datastar.ReadSignals(r, v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignals, err)
		}
		return nil
	}
}

// Package validator provides small declarative validation rules.
//
// A Rule couples a Check function with the ValidationError reported when the
// check fails. Apply evaluates rules in order and aggregates failures into
// ValidationErrors, which implements error and converts to a field → message
// map with Map:
//
//	err := validator.Apply(
//	    validator.RequiredString("name", u.Name).Message("Invalid name"),
//	    validator.ContainsString("email", u.Email, "@").Message("Invalid email"),
//	    validator.When(u.Type == "doctor", validator.RequiredString("lanr", u.Lanr)),
//	)
//	fields := validator.ExtractValidationErrors(err).Map()
//
// Rules are plain values with no shared state, so the package is safe for
// concurrent use and evaluation is deterministic for a given input.
package validator

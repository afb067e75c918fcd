package validator

import (
	"strings"
)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "field is required",
			Key:     "validation.required",
		},
	}
}

// ContainsString validates that the trimmed value contains substr.
func ContainsString(field, value, substr string) Rule {
	return Rule{
		Check: func() bool {
			return strings.Contains(strings.TrimSpace(value), substr)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must contain " + substr,
			Key:     "validation.contains",
		},
	}
}

// EmptyString validates that value is empty.
func EmptyString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return value == ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be empty",
			Key:     "validation.empty",
		},
	}
}

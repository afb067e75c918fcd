package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/pkg/validator"
)

func TestRequiredString(t *testing.T) {
	t.Run("passes for non-empty string", func(t *testing.T) {
		rule := validator.RequiredString("name", "  John  ")
		assert.True(t, rule.Check())
		assert.Equal(t, "name", rule.Error.Field)
		assert.Equal(t, "field is required", rule.Error.Message)
		assert.Equal(t, "validation.required", rule.Error.Key)
	})

	t.Run("fails for whitespace-only string", func(t *testing.T) {
		assert.False(t, validator.RequiredString("name", "   ").Check())
		assert.False(t, validator.RequiredString("name", "").Check())
	})
}

func TestContainsString(t *testing.T) {
	assert.True(t, validator.ContainsString("email", " a@b ", "@").Check())
	assert.False(t, validator.ContainsString("email", "", "@").Check())
	assert.False(t, validator.ContainsString("email", "doctor01.email.com", "@").Check())
}

func TestEmptyString(t *testing.T) {
	assert.True(t, validator.EmptyString("lanr", "").Check())
	assert.False(t, validator.EmptyString("lanr", "LANR-01").Check())
}

func TestOneOf(t *testing.T) {
	rule := validator.OneOf("type", "mfa", []string{"doctor", "mfa"})
	assert.True(t, rule.Check())
	assert.False(t, validator.OneOf("type", "nurse", []string{"doctor", "mfa"}).Check())
	assert.Equal(t, "must be one of: [doctor mfa]", rule.Error.Message)
}

func TestRuleModifiers(t *testing.T) {
	rule := validator.RequiredString("name", "").Message("Invalid name")
	assert.Equal(t, "Invalid name", rule.Error.Message)

	assert.True(t, validator.When(false, rule).Check())
	assert.False(t, validator.When(true, rule).Check())
}

func TestApply(t *testing.T) {
	t.Run("nil when every rule passes", func(t *testing.T) {
		assert.NoError(t, validator.Apply(
			validator.RequiredString("name", "Doctor 01"),
			validator.ContainsString("email", "doctor01@email.com", "@"),
		))
	})

	t.Run("aggregates failures in order", func(t *testing.T) {
		err := validator.Apply(
			validator.RequiredString("name", "").Message("Invalid name"),
			validator.ContainsString("email", "x", "@").Message("Invalid email"),
			validator.RequiredString("name", "").Message("second message"),
		)
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))
		assert.Equal(t, "validation failed: name: Invalid name; email: Invalid email; name: second message", err.Error())

		verrs := validator.ExtractValidationErrors(fmt.Errorf("wrapped: %w", err))
		require.Len(t, verrs, 3)
		assert.True(t, verrs.Has("email"))
		assert.False(t, verrs.Has("lanr"))
		assert.Equal(t, map[string]string{"name": "Invalid name", "email": "Invalid email"}, verrs.Map())
	})

	t.Run("non-validation errors", func(t *testing.T) {
		assert.Nil(t, validator.ExtractValidationErrors(nil))
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))
		assert.False(t, validator.IsValidationError(errors.New("boom")))
		assert.Equal(t, map[string]string{}, validator.ValidationErrors(nil).Map())
		assert.Equal(t, "validation failed", validator.ValidationErrors(nil).Error())
	})
}

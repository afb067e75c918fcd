package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/useradmin/svc/users"
)

func TestDraftNormalize(t *testing.T) {
	t.Parallel()

	t.Run("trims and composes name", func(t *testing.T) {
		t.Parallel()
		d := users.Draft{Name: "  José ", Email: " j@x.io ", Type: users.TypeDoctor, Lanr: " L-1 "}.Normalize()
		assert.Equal(t, "José", d.Name)
		assert.Equal(t, "j@x.io", d.Email)
		assert.Equal(t, "L-1", d.Lanr)
	})

	t.Run("drops lanr for mfa", func(t *testing.T) {
		t.Parallel()
		d := users.Draft{Name: "a", Email: "a@b", Type: users.TypeMFA, Lanr: "L-1"}.Normalize()
		assert.Empty(t, d.Lanr)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft users.Draft
		want  map[users.Field]string
	}{
		{
			name:  "valid doctor",
			draft: users.Draft{Name: "Doctor", Email: "d@x.io", Type: users.TypeDoctor, Lanr: "L"},
			want:  map[users.Field]string{},
		},
		{
			name:  "valid mfa without lanr",
			draft: users.Draft{Name: "MFA", Email: "m@x.io", Type: users.TypeMFA},
			want:  map[users.Field]string{},
		},
		{
			name:  "blank doctor",
			draft: users.NewDraft(users.TypeDoctor),
			want: map[users.Field]string{
				users.FieldName:  users.MsgInvalidName,
				users.FieldEmail: users.MsgInvalidEmail,
				users.FieldLanr:  users.MsgInvalidLanr,
			},
		},
		{
			name:  "whitespace name",
			draft: users.Draft{Name: "   ", Email: "m@x.io", Type: users.TypeMFA},
			want:  map[users.Field]string{users.FieldName: users.MsgInvalidName},
		},
		{
			name:  "email without at",
			draft: users.Draft{Name: "MFA", Email: "mx.io", Type: users.TypeMFA},
			want:  map[users.Field]string{users.FieldEmail: users.MsgInvalidEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := users.Validate(tt.draft)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, users.Validate(tt.draft), "same input, same result")
		})
	}
}

func TestCheckVariant(t *testing.T) {
	t.Parallel()

	assert.NoError(t, users.CheckVariant(users.Draft{Type: users.TypeDoctor, Lanr: "L"}))
	assert.NoError(t, users.CheckVariant(users.Draft{Type: users.TypeMFA}))
	assert.ErrorIs(t, users.CheckVariant(users.Draft{Type: users.TypeDoctor}), users.ErrInvalidVariant)
	assert.ErrorIs(t, users.CheckVariant(users.Draft{Type: users.TypeMFA, Lanr: "L"}), users.ErrInvalidVariant)
	assert.ErrorIs(t, users.CheckVariant(users.Draft{Type: "nurse"}), users.ErrInvalidVariant)
}

func TestUserSummary(t *testing.T) {
	t.Parallel()

	u := users.Fixtures()[0]
	assert.Equal(t, users.Summary{ID: "doctor-01", Name: "Doctor 01", Type: users.TypeDoctor}, u.Summary())
}

package users

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/useradmin/pkg/validator"
)

// Type discriminates the user variants.
type Type string

const (
	TypeDoctor Type = "doctor"
	TypeMFA    Type = "mfa"
)

// Types lists the supported variants in display order.
var Types = []Type{TypeDoctor, TypeMFA}

func (t Type) Valid() bool {
	return t == TypeDoctor || t == TypeMFA
}

// Field names a user attribute that can fail validation.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldLanr  Field = "lanr"
	FieldType  Field = "type"
)

// Messages reported by Validate.
const (
	MsgInvalidName  = "Invalid name"
	MsgInvalidEmail = "Invalid email"
	MsgInvalidLanr  = "Invalid lanr"
	MsgInvalidType  = "Invalid type"
)

// Draft is a user without its identifier: the creation payload and the
// editable part of an existing user. Lanr is only meaningful for doctors.
type Draft struct {
	Name  string `json:"name" yaml:"name" bson:"name"`
	Email string `json:"email" yaml:"email" bson:"email"`
	Type  Type   `json:"type" yaml:"type" bson:"type"`
	Lanr  string `json:"lanr,omitempty" yaml:"lanr,omitempty" bson:"lanr,omitempty"`
}

// User is a stored user.
type User struct {
	ID    string `json:"id" yaml:"id" bson:"_id"`
	Draft `yaml:",inline" bson:",inline"`
}

// Summary is the list projection of a user. Email is not part of it.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// NewDraft returns a blank draft of the given type. A doctor draft
// carries an empty license number that still has to be filled in.
func NewDraft(t Type) Draft {
	return Draft{Type: t}
}

// Summary projects u to its list representation.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Type: u.Type}
}

// IsDoctor reports whether the draft is the doctor variant.
func (d Draft) IsDoctor() bool {
	return d.Type == TypeDoctor
}

// Normalize trims every field, puts the name in Unicode NFC and drops the
// license number from non-doctor drafts.
func (d Draft) Normalize() Draft {
	d.Name = norm.NFC.String(strings.TrimSpace(d.Name))
	d.Email = strings.TrimSpace(d.Email)
	d.Lanr = strings.TrimSpace(d.Lanr)
	if !d.IsDoctor() {
		d.Lanr = ""
	}
	return d
}

// Validate returns the field-level problems of d, keyed by field. The result is
// empty, never nil, for a valid draft and depends on d alone.
func Validate(d Draft) map[Field]string {
	err := validator.Apply(
		validator.RequiredString(string(FieldName), d.Name).Message(MsgInvalidName),
		validator.ContainsString(string(FieldEmail), d.Email, "@").Message(MsgInvalidEmail),
		validator.When(d.IsDoctor(), validator.RequiredString(string(FieldLanr), d.Lanr).Message(MsgInvalidLanr)),
	)

	fields := validator.ExtractValidationErrors(err).Map()
	out := make(map[Field]string, len(fields))
	for k, v := range fields {
		out[Field(k)] = v
	}
	return out
}

// CheckVariant reports ErrInvalidVariant for an unknown type or a doctor
// without a license number.
func CheckVariant(d Draft) error {
	err := validator.Apply(
		validator.OneOf(string(FieldType), d.Type, Types).Message(MsgInvalidType),
		validator.When(d.IsDoctor(), validator.RequiredString(string(FieldLanr), d.Lanr).Message(MsgInvalidLanr)),
		validator.When(!d.IsDoctor(), validator.EmptyString(string(FieldLanr), d.Lanr)),
	)
	if err != nil {
		return errors.Join(ErrInvalidVariant, err)
	}
	return nil
}

// prepare normalizes a payload and rejects it when it would not pass the form
// validation or the variant check. Shared by every backend.
func prepare(d Draft) (Draft, error) {
	d = d.Normalize()
	if err := CheckVariant(d); err != nil {
		return Draft{}, err
	}
	if fields := Validate(d); len(fields) > 0 {
		return Draft{}, fmt.Errorf("%w: %v", ErrInvalidDraft, fields)
	}
	return d, nil
}

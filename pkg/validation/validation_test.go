package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username string `json:"username" validate:"required,min=3,max=20,valid_username"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=40"`
	Phone    string `json:"phone" validate:"valid_phone"`
	Role     string `json:"role" validate:"omitempty,oneof=admin recruiter candidate"`
}

func TestFieldErrors(t *testing.T) {
	v := New()

	err := v.Struct(signupForm{Username: "a!", Email: "not-an-email", Phone: "12", Role: "boss"})
	fields, ok := FieldErrors(err)

	require.True(t, ok)
	assert.Equal(t, "size must be at least 3 characters", fields["username"])
	assert.Equal(t, "must be a well-formed email address", fields["email"])
	assert.Equal(t, "must not be blank", fields["password"])
	assert.Equal(t, "must be 7-15 digits with an optional leading +", fields["phone"])
	assert.Equal(t, "must be one of: admin, recruiter, candidate", fields["role"])
}

func TestFieldErrorsValid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(signupForm{Username: "alice_1", Email: "a@x.com", Password: "secret1", Phone: "+628123456789"}))
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	_, ok := FieldErrors(errors.New("EOF"))
	assert.False(t, ok)
}

func TestNoEmoji(t *testing.T) {
	type bio struct {
		Text string `json:"text" validate:"no_emoji"`
	}
	v := New()
	assert.NoError(t, v.Struct(bio{Text: "Go developer, 5 yrs"}))
	assert.Error(t, v.Struct(bio{Text: "Go developer 🚀"}))
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
)

type signupForm struct {
	Username string  `json:"username" validate:"required,min=3,max=30"`
	Email    string  `json:"email" validate:"required,email"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(signupForm{Username: "reader1", Email: "r@example.com", Rating: 4.5})
	assert.NoError(t, err)
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(signupForm{Username: "ab", Email: "not-an-email", Rating: 7})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "rating")
	assert.Equal(t, "must be a valid email address", details["email"])
}

func TestValidate_RequiredMessage(t *testing.T) {
	v := New()
	err := v.Validate(signupForm{Rating: 1})

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "is required", details["username"])
}

package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpForm struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=6"`
	DisplayName string `validate:"required"`
	Role        string `validate:"omitempty,oneof=student teacher"`
}

func TestFormatValidationError(t *testing.T) {
	err := validator.New().Struct(signUpForm{Email: "nope", Password: "123", Role: "admin"})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "Password must be at least 6 characters")
	assert.Contains(t, msg, "Display name is required")
	assert.Contains(t, msg, "Role must be one of: student teacher")
}

func TestFormatValidationErrorPassthrough(t *testing.T) {
	assert.Equal(t, "plain", FormatValidationError(errors.New("plain")))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("demo@campussync.edu"))
	assert.False(t, IsEmail("demo"))
	assert.False(t, IsEmail(""))
}

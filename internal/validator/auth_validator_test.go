package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterForm_Valid(t *testing.T) {
	form := RegisterForm{
		Email:                "vera@example.com",
		Password:             "plant-powered-9",
		PasswordConfirmation: "plant-powered-9",
		FullName:             "Vera",
	}

	assert.NoError(t, form.Validate())
}

func TestRegisterForm_MissingFields(t *testing.T) {
	assert.ErrorIs(t, RegisterForm{Password: "x"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, RegisterForm{Email: "vera@example.com"}.Validate(), ErrInvalidInput)
}

func TestRegisterForm_BadEmail(t *testing.T) {
	form := RegisterForm{
		Email:                "not-an-email",
		Password:             "plant-powered-9",
		PasswordConfirmation: "plant-powered-9",
	}

	assert.ErrorIs(t, form.Validate(), ErrInvalidInput)
}

func TestRegisterForm_PasswordMismatch(t *testing.T) {
	form := RegisterForm{
		Email:                "vera@example.com",
		Password:             "plant-powered-9",
		PasswordConfirmation: "plant-powered-8",
	}

	assert.ErrorIs(t, form.Validate(), ErrPasswordMismatch)
}

func TestLoginForm(t *testing.T) {
	assert.NoError(t, LoginForm{Email: "vera@example.com", Password: "x12345678"}.Validate())
	assert.ErrorIs(t, LoginForm{Email: "", Password: "x"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, LoginForm{Email: "bad", Password: "x"}.Validate(), ErrInvalidInput)
}

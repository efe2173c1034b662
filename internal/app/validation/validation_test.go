package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogin(t *testing.T) {
	assert.Empty(t, Login(LoginForm{Email: "demo@eventflow.dev", Password: "x"}))

	errs := Login(LoginForm{Email: "  ", Password: " "})
	assert.Equal(t, Errors{"email": "Email is required", "password": "Password is required"}, errs)

	errs = Login(LoginForm{Email: "not-an-email", Password: "secret"})
	assert.Equal(t, "Enter a valid email address", errs["email"])
}

func TestPasswordRules(t *testing.T) {
	cases := map[string]string{
		"Ab1":         "Password must be at least 8 characters",
		"abcdefg1":    "Password must contain at least one uppercase letter",
		"ABCDEFG1":    "Password must contain at least one lowercase letter",
		"Abcdefgh":    "Password must contain at least one number",
		"Abcdefg1":    "",
		"Sup3rSecret": "",
	}
	for pw, want := range cases {
		assert.Equal(t, want, Password(pw), pw)
	}
}

func TestSignup(t *testing.T) {
	ok := SignupForm{Name: "Ada", Email: "ada@example.com", Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"}
	assert.Empty(t, Signup(ok))

	mismatch := ok
	mismatch.ConfirmPassword = "Abcdefg2"
	assert.Equal(t, Errors{"confirmPassword": "Passwords do not match"}, Signup(mismatch))

	empty := Signup(SignupForm{})
	assert.Equal(t, "Full name is required", empty["name"])
	assert.Equal(t, "Email is required", empty["email"])
	assert.Equal(t, "Password is required", empty["password"])
	assert.Equal(t, "Please confirm your password", empty["confirmPassword"])
}

func TestCheckoutAddress(t *testing.T) {
	errs := CheckoutAddress(Address{Email: "bad"})
	assert.Len(t, errs, 7)
	assert.Equal(t, "Enter a valid email", errs["email"])
	assert.Equal(t, "ZIP code is required", errs["zip"])

	full := Address{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Address: "1 Main St", City: "Austin", State: "TX", Zip: "73301"}
	assert.NoError(t, CheckoutAddress(full).Err())
}

func TestErrorsAsError(t *testing.T) {
	err := CheckoutAddress(Address{}).Err()

	var fields Errors
	assert.True(t, errors.As(err, &fields))
	assert.Contains(t, err.Error(), "city: City is required")
}

package validation

import (
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a form field to its message. A nil or empty Errors means the
// form is valid.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there are no field errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Password returns the first rule the password breaks, or "".
func Password(pw string) string {
	if len(pw) < 8 {
		return "Password must be at least 8 characters"
	}
	if !strings.ContainsFunc(pw, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return "Password must contain at least one uppercase letter"
	}
	if !strings.ContainsFunc(pw, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return "Password must contain at least one lowercase letter"
	}
	if !strings.ContainsFunc(pw, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return "Password must contain at least one number"
	}
	return ""
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates a sign-in form.
func Login(f LoginForm) Errors {
	errs := Errors{}
	email(errs, "email", f.Email, "Enter a valid email address")
	if blank(f.Password) {
		errs["password"] = "Password is required"
	}
	return errs
}

// SignupForm is the registration form.
type SignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Signup validates a registration form.
func Signup(f SignupForm) Errors {
	errs := Errors{}
	if blank(f.Name) {
		errs["name"] = "Full name is required"
	}
	email(errs, "email", f.Email, "Enter a valid email address")

	if blank(f.Password) {
		errs["password"] = "Password is required"
	} else if msg := Password(f.Password); msg != "" {
		errs["password"] = msg
	}

	switch {
	case blank(f.ConfirmPassword):
		errs["confirmPassword"] = "Please confirm your password"
	case f.Password != f.ConfirmPassword:
		errs["confirmPassword"] = "Passwords do not match"
	}
	return errs
}

// Address is a billing address collected at checkout.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// CheckoutAddress validates a billing address.
func CheckoutAddress(a Address) Errors {
	errs := Errors{}
	required(errs, "firstName", a.FirstName, "First name is required")
	required(errs, "lastName", a.LastName, "Last name is required")
	email(errs, "email", a.Email, "Enter a valid email")
	required(errs, "address", a.Address, "Address is required")
	required(errs, "city", a.City, "City is required")
	required(errs, "state", a.State, "State is required")
	required(errs, "zip", a.Zip, "ZIP code is required")
	return errs
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func required(errs Errors, field, value, msg string) {
	if blank(value) {
		errs[field] = msg
	}
}

func email(errs Errors, field, value, invalidMsg string) {
	switch {
	case blank(value):
		errs[field] = "Email is required"
	case !ValidEmail(value):
		errs[field] = invalidMsg
	}
}

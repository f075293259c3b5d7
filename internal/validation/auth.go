package validation

import "strings"

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

// LoginForm is the posted login form.
type LoginForm struct {
	Username string `form:"username" validate:"required,max=150"`
	Password string `form:"password" validate:"required"`
}

// Validate checks required fields.
func (f *LoginForm) Validate() FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	return collect(f, map[string]string{
		"Username": "username",
		"Password": "password",
	}, nil)
}

// SignupForm is the posted registration form.
type SignupForm struct {
	Username  string `form:"username" validate:"required,min=3,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8,max=128"`
	Password2 string `form:"password2" validate:"required"`
}

var signupFields = map[string]string{
	"Username":  "username",
	"Email":     "email",
	"Password1": "password1",
	"Password2": "password2",
}

var signupMessages = map[string]messageFunc{
	"Password1.min": staticMessage("This password is too short. It must contain at least 8 characters."),
}

// Validate trims the identity fields and checks shape and password confirmation.
// Uniqueness is checked by the auth service against the store.
func (f *SignupForm) Validate() FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	errs := collect(f, signupFields, signupMessages)
	if f.Password1 != "" && f.Password2 != "" && f.Password1 != f.Password2 {
		errs.Add("password2", "The two password fields didn't match.")
	}
	return errs
}

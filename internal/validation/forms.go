// Package validation provides input validation for the HTML forms.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key for errors that belong to the form as a whole.
const NonFieldErrors = "__all__"

var (
	validate = newValidator()

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors maps form field names to their error messages.
type FieldErrors map[string][]string

// Add appends msg to field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Any reports whether at least one error was recorded.
func (fe FieldErrors) Any() bool {
	return len(fe) > 0
}

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Get returns the messages of field.
func (fe FieldErrors) Get(field string) []string {
	return fe[field]
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], " "))
	}
	return strings.Join(parts, "; ")
}

// AsFieldErrors extracts FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

type messageFunc func(fe validator.FieldError) string

// collect runs struct validation and translates failures through messages.
// Fields are keyed by their form tag.
func collect(form interface{}, formTags map[string]string, messages map[string]messageFunc) FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldErrors, err.Error())
		return errs
	}

	for _, fe := range verrs {
		field := formTags[fe.StructField()]
		if field == "" {
			field = strings.ToLower(fe.StructField())
		}
		if msgFn, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
			errs.Add(field, msgFn(fe))
			continue
		}
		errs.Add(field, defaultMessage(fe))
	}
	return errs
}

func defaultMessage(fe validator.FieldError) string {
	value, _ := fe.Value().(string)
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters (it has %d).", fe.Param(), utf8.RuneCountInString(value))
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), utf8.RuneCountInString(value))
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "oneof":
		return "Select a valid choice."
	default:
		return "Enter a valid value."
	}
}

func staticMessage(msg string) messageFunc {
	return func(validator.FieldError) string { return msg }
}

// Package validation wraps a shared go-playground validator for request DTOs.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate  = newValidator()
	sirenExpr = regexp.MustCompile(`^[0-9]{9}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("siren", func(fl validator.FieldLevel) bool {
		return sirenExpr.MatchString(fl.Field().String())
	})
	return v
}

// FieldError names one rejected field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Error is returned by Struct when one or more fields fail validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// Struct validates v using its `validate` tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: lowerFirst(fe.Field()), Rule: fe.Tag()})
	}
	return out
}

// IsValidEmail reports whether s is a syntactically valid email address.
func IsValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// IsValidSIREN reports whether s is a 9-digit French company identifier.
func IsValidSIREN(s string) bool {
	return sirenExpr.MatchString(s)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

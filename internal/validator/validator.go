// Package validator wraps go-playground/validator with the custom rules used
// by request payloads.
package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Tags produced by FieldError.
const (
	TagRequired    = "required"
	TagSimpleEmail = "simple_email"
)

var (
	global     *validator.Validate
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func init() {
	SetValidator(New())
}

// New builds a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation(TagSimpleEmail, validateSimpleEmail)
	return v
}

// SetValidator replaces the package-level validator.
func SetValidator(v *validator.Validate) {
	global = v
}

// Validator returns the package-level validator.
func Validator() *validator.Validate {
	return global
}

// IsEmail reports whether s looks like an address: something@something.tld
// with no whitespace.
func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

func validateSimpleEmail(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

// FieldError describes the first rule a payload failed.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s failed %s", e.Field, e.Tag)
}

// Validate checks structure against its `validate` tags and returns a
// *FieldError for the first failure, or nil.
func Validate(ctx context.Context, structure any) error {
	err := Validator().StructCtx(ctx, structure)
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return err
	}
	ve := vErrors[0]
	return &FieldError{Field: ve.Field(), Tag: ve.Tag()}
}

// Package validator wraps go-playground/validator for request DTOs.
package validator

import (
	"errors"

	playground "github.com/go-playground/validator/v10"

	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
)

type Validator struct {
	validate *playground.Validate
}

func New() *Validator {
	return &Validator{validate: playground.New(playground.WithRequiredStructEnabled())}
}

// Struct validates a DTO and converts field failures into a single
// apperr validation error carrying per-field details.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindValidation, "invalid request", err)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperr.Validation("one or more fields are invalid").WithDetails(details)
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(value any, tag string) error {
	return v.validate.Var(value, tag)
}

package validator

import (
	"errors"
	"fmt"
	"strings"

	"billboards/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CartValidator struct {
	validate *validator.Validate
}

func NewCartValidator() *CartValidator {
	return &CartValidator{
		validate: validator.New(),
	}
}

// Validate checks the shape of a request struct. Pricing rules are enforced
// by the engine, not here.
func (v *CartValidator) Validate(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CartValidator) ValidateLegacyLine(line *model.LegacyCartLine) error {
	if err := v.Validate(line); err != nil {
		return err
	}
	if line.StartDate != nil && line.EndDate != nil && line.StartDate.After(*line.EndDate) {
		return ValidationErrors{{Field: "end_date", Message: "end_date must not be before start_date"}}
	}
	return nil
}

func (v *CartValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

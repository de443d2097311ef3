package validator

import (
	"errors"
	"fmt"
	"strings"

	"billboards/pkg/logger"
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

type BillboardValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBillboardValidator(log *logger.Logger) *BillboardValidator {
	v := validator.New()

	if err := v.RegisterValidation("sale_unit", validateSaleUnit); err != nil {
		log.Fatal("Failed to register 'sale_unit' validator", "error", err)
	}

	return &BillboardValidator{
		validate: v,
		logger:   log,
	}
}

func validateSaleUnit(fl validator.FieldLevel) bool {
	return model.SaleUnit(fl.Field().String()).Valid()
}

func (v *BillboardValidator) Validate(b *model.Billboard) error {
	if err := v.validate.Struct(b); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := v.validateKindRules(b); len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BillboardValidator) ValidateClient(c *model.Client) error {
	if err := v.validate.Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BillboardValidator) ValidateReservation(r *model.SlotReservation) error {
	if err := v.validate.Struct(r); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return v.ValidateClient(&r.Client)
}

// validateKindRules enforces the fixed/digital tagged union.
func (v *BillboardValidator) validateKindRules(b *model.Billboard) ValidationErrors {
	var errs ValidationErrors

	switch b.Kind {
	case model.KindFixed:
		if b.Fixed == nil {
			errs = append(errs, ValidationError{Field: "fixed", Message: "fixed details are required for a fixed billboard"})
		}
		if b.Digital != nil {
			errs = append(errs, ValidationError{Field: "digital", Message: "a fixed billboard cannot carry digital details"})
		}
		if b.Size.Unit != "m" {
			errs = append(errs, ValidationError{Field: "size.unit", Message: "physical billboards are measured in m"})
		}
	case model.KindDigital:
		if b.Digital == nil {
			errs = append(errs, ValidationError{Field: "digital", Message: "digital details are required for a digital billboard"})
			break
		}
		if b.Fixed != nil {
			errs = append(errs, ValidationError{Field: "fixed", Message: "a digital billboard cannot carry fixed details"})
		}
		if b.Size.Unit != "px" {
			errs = append(errs, ValidationError{Field: "size.unit", Message: "screens are measured in px"})
		}
		if len(b.Digital.CurrentClients) > b.Digital.MaxClients {
			errs = append(errs, ValidationError{
				Field:   "digital.current_clients",
				Message: fmt.Sprintf("at most %d clients can share this screen", b.Digital.MaxClients),
			})
		}
		if !hasAnyPrice(b.Digital.Prices) {
			errs = append(errs, ValidationError{Field: "digital.prices", Message: "at least one sale unit price must be published"})
		}
	}

	return errs
}

func hasAnyPrice(p model.DigitalPrices) bool {
	return p.Spot != nil || p.Hour != nil || p.Day != nil || p.Week != nil || p.Month != nil || p.Impression != nil
}

func (v *BillboardValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not be before %s", err.Field(), err.Param())
		case "sale_unit":
			message = "sale_unit must be one of: spot hour day week month"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

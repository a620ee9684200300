package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/edureach360/leads-api/internal/entity"
)

const defaultPhoneRegion = "IN"

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	return v
}

// validateStruct runs the tag rules and flattens the result into the
// field/message pairs the API reports.
func validateStruct(s any) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{"request", err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{fe.Field(), describeTag(fe)})
	}
	return out
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	case "emailshape":
		return "must be a valid email address"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

func ValidateUpsertLeadInput(input UpsertLeadInput) []ValidationError {
	errs := validateStruct(input)

	if pc := input.PreferredContact; pc.Set && !pc.Null && pc.Value != "" {
		switch strings.ToLower(strings.TrimSpace(pc.Value)) {
		case entity.ContactEmail, entity.ContactPhone, entity.ContactWhatsApp:
		default:
			errs = append(errs, ValidationError{"preferred_contact", "must be email, phone or whatsapp"})
		}
	}

	if input.Amount.Set && !input.Amount.Null && input.Amount.Value < 0 {
		errs = append(errs, ValidationError{"amount", "must not be negative"})
	}

	if c := input.Currency; c.Set && !c.Null && c.Value != "" && len(strings.TrimSpace(c.Value)) != 3 {
		errs = append(errs, ValidationError{"currency", "must be a 3 letter ISO code"})
	}

	return errs
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}

// NormalizePhone formats a phone number to E.164. Unparsable input is returned trimmed.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultPhoneRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

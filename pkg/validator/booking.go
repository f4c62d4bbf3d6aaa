package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// StopSet reports whether a stop name is offered
type StopSet interface {
	HasStop(name string) bool
}

// ValidationError describes the first field that broke the booking contract
type ValidationError struct {
	Field   string
	Reason  string
	Missing bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// IsMissingField reports whether err is a ValidationError for an absent field
func IsMissingField(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr) && vErr.Missing
}

// BookingValidator enforces the booking contract shared by interactive saves and bulk imports
type BookingValidator struct {
	validate *playground.Validate
}

// NewBookingValidator creates a validator that accepts only the given stops
func NewBookingValidator(stops StopSet) *BookingValidator {
	v := playground.New(playground.WithRequiredStructEnabled())

	// Report fields by their wire names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("stop", func(fl playground.FieldLevel) bool {
		return stops.HasStop(fl.Field().String())
	})

	return &BookingValidator{validate: v}
}

// Validate checks s against its validate tags and returns a *ValidationError on failure
func (v *BookingValidator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate booking: %w", err)
	}

	// Missing fields take priority so callers see the same message whatever the field order
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return &ValidationError{Field: fe.Field(), Reason: "is required", Missing: true}
		}
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe playground.FieldError) string {
	switch fe.Tag() {
	case "stop":
		return fmt.Sprintf("%q is not a served stop", fe.Value())
	case "nefield":
		return "must differ from departure"
	case "numeric":
		return "must contain only digits"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

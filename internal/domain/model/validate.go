package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("job_status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	return v
}

// ValidationError describes a rejected input. Message is safe to show to
// API clients.
type ValidationError struct {
	Message string
	Fields  []string
	err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.err }

// Validate checks a create request.
func (in JobInput) Validate() error {
	return check(in)
}

// Validate checks a partial update.
func (p JobPatch) Validate() error {
	return check(p)
}

// Validate checks admin preferences.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return &ValidationError{
			Message: "analyticsRetentionDays must be between 1 and 3650",
			Fields:  []string{"analyticsRetentionDays"},
			err:     fmt.Errorf("%w: %v", ErrInvalidSettings, err),
		}
	}
	return nil
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing, empty []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "job_status":
			return &ValidationError{
				Message: InvalidStatusMessage(),
				Fields:  []string{fe.Field()},
				err:     ErrInvalidStatus,
			}
		case "required":
			missing = append(missing, fe.Field())
		default:
			empty = append(empty, fe.Field())
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Fields:  missing,
			err:     ErrMissingFields,
		}
	}
	return &ValidationError{
		Message: "Fields cannot be empty: " + strings.Join(empty, ", "),
		Fields:  empty,
		err:     ErrEmptyField,
	}
}

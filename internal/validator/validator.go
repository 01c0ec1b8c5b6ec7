package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "http_url":
		return "must be a well-formed absolute URL with an http or https scheme"
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	default:
		return "is invalid"
	}
}

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors converts validator.ValidationErrors into a field -> message map.
// ok is false when err is not a validation error.
func FieldErrors(err error) (map[string]string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		name := e.Field()
		if _, seen := fields[name]; !seen {
			fields[name] = formatSingleError(e)
		}
	}
	return fields, true
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	param := e.Param()

	switch e.Tag() {
	case "required":
		return "must not be blank"

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("size must be at least %s characters", param)
		}
		return fmt.Sprintf("must be at least %s", param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("size must be at most %s characters", param)
		}
		return fmt.Sprintf("must be at most %s", param)

	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)

	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", param)

	case "len":
		return fmt.Sprintf("must be exactly %s characters", param)

	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(param), ", "))

	case "email":
		return "must be a well-formed email address"

	case "url":
		return "must be a valid URL"

	case "valid_name":
		return "may only contain letters, spaces and common punctuation (. ' - /)"

	case "valid_phone":
		return "must be 7-15 digits with an optional leading +"

	case "valid_username":
		return "may only contain letters, digits, '.', '_' and '-'"

	case "no_emoji":
		return "must not contain emoji or special symbols"

	case "gtefield", "gtfield":
		return fmt.Sprintf("must be greater than %s", param)

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}

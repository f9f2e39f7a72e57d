package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abac-gate/engine/internal/domain/attribute"
)

// RegisterCustomValidators registers engine-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("abac_identifier", validateIdentifier); err != nil {
		return fmt.Errorf("failed to register abac_identifier validator: %w", err)
	}
	return nil
}

// validateIdentifier validates that a field is a well-formed 20-byte hex
// identifier, 0x-prefixed or bare.
func validateIdentifier(fl validator.FieldLevel) bool {
	_, err := attribute.IdentifierFromHex(fl.Field().String())
	return err == nil
}

// Validate validates Config using struct tags and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// formatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a
// single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s items", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "abac_identifier":
		return fmt.Sprintf("%s must be a 20-byte hex identifier", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}

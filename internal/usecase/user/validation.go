package user

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "user-directory-service/internal/domain/user"
	pkgerrors "user-directory-service/pkg/errors"
)

// newValidator builds a validator that reports JSON field names and knows the
// role and status enumerations.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return domain.Status(fl.Field().String()).Valid()
	})

	return v
}

func joinRoles() string {
	parts := make([]string, len(domain.Roles))
	for i, r := range domain.Roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

func joinStatuses() string {
	parts := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// formatValidationError converts validator.ValidationErrors into a ValidationError
// with one violation per failed rule.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	violations := make([]pkgerrors.FieldViolation, 0, len(validationErrors))
	for _, e := range validationErrors {
		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", e.Field())
		case "email":
			msg = fmt.Sprintf("%s must be a valid email", e.Field())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		case "user_role":
			msg = fmt.Sprintf("%s must be one of: %s", e.Field(), joinRoles())
		case "user_status":
			msg = fmt.Sprintf("%s must be one of: %s", e.Field(), joinStatuses())
		default:
			msg = fmt.Sprintf("%s is invalid", e.Field())
		}
		violations = append(violations, pkgerrors.FieldViolation{
			Field:   e.Field(),
			Message: msg,
			Value:   e.Value(),
		})
	}

	return pkgerrors.NewValidationError("Validation errors", violations...)
}

// normalizeEmail trims and lower-cases an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

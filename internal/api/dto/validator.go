package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

var validate = validator.New()

// Validate checks a request struct against its validate tags and converts
// failures into a VALIDATION_ERROR with per-field detail.
func Validate(i any) error {
	if err := validate.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			details := make(map[string]any, len(ve))
			for _, fe := range ve {
				details[strings.ToLower(fe.Field())] = fieldError(fe)
			}
			return apperrors.NewValidationError("invalid request", details)
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

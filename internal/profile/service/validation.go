package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type profileFields struct {
	Name *string `validate:"omitnil,max=100"`
	Bio  *string `validate:"omitnil,max=500"`
}

// validateUpdate expects trimmed values. A supplied name must be non-empty;
// a supplied bio may be empty.
func validateUpdate(name, bio *string) error {
	if name != nil && *name == "" {
		return validationError("name cannot be empty")
	}

	err := validate.Struct(profileFields{Name: name, Bio: bio})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrValidation.WithCause(err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "max":
		return validationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return validationError(fmt.Sprintf("%s is invalid", field))
	}
}

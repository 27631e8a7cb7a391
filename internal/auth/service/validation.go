package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	return v
}

type signupFields struct {
	Email    string `validate:"required,max=255,email"`
	Username string `validate:"required,max=50,username"`
	Password string `validate:"required,max=72"`
	Name     string `validate:"required,max=100"`
}

// normalizeSignup trims every field except the password, which is used
// verbatim.
func normalizeSignup(in SignupInput) SignupInput {
	return SignupInput{
		Email:    strings.TrimSpace(in.Email),
		Username: strings.TrimSpace(in.Username),
		Password: in.Password,
		Name:     strings.TrimSpace(in.Name),
	}
}

func validateSignup(in SignupInput) error {
	fields := signupFields{
		Email:    in.Email,
		Username: in.Username,
		Password: in.Password,
		Name:     in.Name,
	}
	if strings.TrimSpace(in.Password) == "" {
		fields.Password = ""
	}
	if err := translate(validate.Struct(fields)); err != nil {
		return err
	}
	return validatePasswordBytes(in.Password)
}

func translate(err error) error {
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
	case "required":
		return validationError(fmt.Sprintf("%s is required", field))
	case "max":
		return validationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "email":
		return validationError("email must be a valid email address")
	case "username":
		return validationError("username may only contain letters, digits, '.', '_' and '-'")
	default:
		return validationError(fmt.Sprintf("%s is invalid", field))
	}
}

func validatePasswordBytes(password string) error {
	if len(password) > 72 {
		return validationError("password must be at most 72 bytes")
	}
	return nil
}

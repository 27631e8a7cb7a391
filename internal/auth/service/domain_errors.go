package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/snapfeed/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid email or password",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"an account with this email already exists",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"this username is already taken",
	)

	ErrValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrFederatedEmailMissing = commonerrors.NewDomainError(
		"FEDERATED_EMAIL_MISSING",
		commonerrors.CategoryAuth,
		http.StatusBadRequest,
		"identity provider did not return an email address",
	)

	ErrUsernameUnavailable = commonerrors.NewDomainError(
		"USERNAME_UNAVAILABLE",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"could not derive a free username",
	)
)

func validationError(message string) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		ErrValidation.Code(),
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		message,
	)
}

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}

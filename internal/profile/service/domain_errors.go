package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/snapfeed/internal/common/errors"
)

var (
	ErrProfileNotFound = commonerrors.NewDomainError(
		"PROFILE_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrEmptyUpdate = commonerrors.NewDomainError(
		"EMPTY_UPDATE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"no fields to update",
	)

	ErrValidation = commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrUpdateFailed = commonerrors.NewDomainError(
		"PROFILE_UPDATE_FAILED",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"failed to update profile",
	)

	ErrLoadFailed = commonerrors.NewDomainError(
		"PROFILE_LOAD_FAILED",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"failed to load profile",
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

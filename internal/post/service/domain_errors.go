package service

import (
	"fmt"
	"net/http"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commonerrors "github.com/AlibekovAA/snapfeed/internal/common/errors"
)

var (
	ErrContentRequired = commonerrors.NewDomainError(
		"CONTENT_REQUIRED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"content is required",
	)

	ErrTooManyImages = commonerrors.NewDomainError(
		"TOO_MANY_IMAGES",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		fmt.Sprintf("a post may have at most %d images", constants.MaxImagesPerPost),
	)

	ErrCreatePostFailed = commonerrors.NewDomainError(
		"CREATE_POST_FAILED",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"failed to create post",
	)

	ErrListFeedFailed = commonerrors.NewDomainError(
		"LIST_FEED_FAILED",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"failed to load posts",
	)
)

package media

import (
	"fmt"
	"net/http"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commonerrors "github.com/AlibekovAA/snapfeed/internal/common/errors"
)

var (
	ErrFileTooLarge = commonerrors.NewDomainError(
		"FILE_TOO_LARGE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		fmt.Sprintf("image exceeds the %dMB size limit", constants.MaxImageSizeBytes>>20),
	)

	ErrUnsupportedType = commonerrors.NewDomainError(
		"UNSUPPORTED_MEDIA_TYPE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"only image files are allowed",
	)

	ErrEmptyFile = commonerrors.NewDomainError(
		"EMPTY_FILE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"image file is empty",
	)

	ErrUploadFailed = commonerrors.NewDomainError(
		"UPLOAD_FAILED",
		commonerrors.CategoryExternal,
		http.StatusInternalServerError,
		"failed to upload image",
	)
)

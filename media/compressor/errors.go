package compressor

import (
	apperrors "github.com/leeforge/squash/errors"
)

// Sentinels for errors.Is. Errors returned by this package are *AppError
// values and match a sentinel by type.
var (
	ErrEmptyInput      = apperrors.New(apperrors.ErrorTypeEmptyInput, "empty input")
	ErrInvalidOptions  = apperrors.New(apperrors.ErrorTypeInvalid, "invalid options")
	ErrDecode          = apperrors.New(apperrors.ErrorTypeDecode, "decode failed")
	ErrSurfaceCreation = apperrors.New(apperrors.ErrorTypeSurfaceCreation, "surface creation failed")
	ErrEncode          = apperrors.New(apperrors.ErrorTypeEncode, "encode failed")
)

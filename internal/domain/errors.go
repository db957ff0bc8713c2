package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code, so copies made
// by WithError still match their sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pipeline errors
var (
	ErrInvalidRegion = &AppError{
		Code:       "INVALID_REGION",
		Message:    "Face region is empty after clipping to image bounds",
		StatusCode: 422,
	}

	ErrModelInvocation = &AppError{
		Code:       "MODEL_INVOCATION_ERROR",
		Message:    "Embedding model failed to execute",
		StatusCode: 502,
	}

	ErrInvalidIdentity = &AppError{
		Code:       "INVALID_IDENTITY",
		Message:    "Identity must be a non-empty string",
		StatusCode: 422,
	}

	ErrTemplateNotFound = &AppError{
		Code:       "TEMPLATE_NOT_FOUND",
		Message:    "No enrollment found for identity",
		StatusCode: 404,
	}

	ErrDimensionMismatch = &AppError{
		Code:       "DIMENSION_MISMATCH",
		Message:    "Embedding dimensions do not match",
		StatusCode: 422,
	}

	ErrEncoding = &AppError{
		Code:       "ENCODING_ERROR",
		Message:    "Credential could not be encoded",
		StatusCode: 500,
	}
)

var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Template store could not be reached",
		StatusCode: 503,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}
)

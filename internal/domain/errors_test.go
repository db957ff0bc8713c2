package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrTemplateNotFound,
			expected: "No enrollment found for identity",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	assert.Equal(t, underlying, appErr.Unwrap())
	assert.Nil(t, ErrTemplateNotFound.Unwrap())
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("model crashed")
	newErr := ErrModelInvocation.WithError(underlying)

	assert.Equal(t, ErrModelInvocation.Code, newErr.Code)
	assert.Equal(t, ErrModelInvocation.StatusCode, newErr.StatusCode)
	assert.Equal(t, underlying, newErr.Err)
	assert.Nil(t, ErrModelInvocation.Err, "sentinel must not be mutated")

	assert.ErrorIs(t, newErr, underlying)
	assert.ErrorIs(t, newErr, ErrModelInvocation)
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("lookup alice: %w", ErrStoreUnavailable.WithError(errors.New("dial tcp: refused")))

	assert.ErrorIs(t, wrapped, ErrStoreUnavailable)
	assert.NotErrorIs(t, wrapped, ErrTemplateNotFound)
	assert.NotErrorIs(t, ErrTemplateNotFound, ErrStoreUnavailable)
	assert.NotErrorIs(t, errors.New("plain"), ErrInternal)
}

func TestPipelineErrors_StatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{ErrInvalidRegion, 422},
		{ErrModelInvocation, 502},
		{ErrInvalidIdentity, 422},
		{ErrTemplateNotFound, 404},
		{ErrDimensionMismatch, 422},
		{ErrEncoding, 500},
		{ErrStoreUnavailable, 503},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
		})
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailDoesNotMutateOriginal(t *testing.T) {
	err := ErrInvalidRequest.WithDetail("prompt is empty")

	assert.Equal(t, "prompt is empty", err.Detail)
	assert.Empty(t, ErrInvalidRequest.Detail)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestWithErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrProviderUnavailable.WithError(cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.Nil(t, ErrProviderUnavailable.Err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrJobNotFound.WithDetail("job-42"))

	assert.True(t, errors.Is(wrapped, ErrJobNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidRequest))
	assert.True(t, IsCode(wrapped, CodeJobNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeJobNotFound))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeJobNotFound, http.StatusNotFound},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeCancelled, http.StatusRequestTimeout},
		{CodeProviderUnavailable, http.StatusServiceUnavailable},
		{CodeGenerationFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatus, tt.code)
	}
}

func TestAsAppErrorNeverNil(t *testing.T) {
	appErr := AsAppError(errors.New("plain failure"))
	require.NotNil(t, appErr)
	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.EqualError(t, appErr.Err, "plain failure")

	original := ErrCancelled.WithDetail("client went away")
	assert.Same(t, original, AsAppError(fmt.Errorf("wrap: %w", original)))
}

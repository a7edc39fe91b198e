package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingTimeoutErrorMessage(t *testing.T) {
	err := NewProcessingTimeoutError("job-1")

	// The stored errorMessage is the bare Message, not Error(): callers must
	// be able to surface exactly this string.
	assert.Equal(t, "Processing timeout exceeded", err.Message)
	assert.Equal(t, ErrorProcessingTimeout, err.Code)
	assert.Nil(t, err.Cause)
}

func TestOCRFailedErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("tesseract exploded")
	err := NewOCRFailedError("job-1", cause)

	assert.Equal(t, ErrorOCRFailed, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "tesseract exploded")
}

func TestStorageFailedErrorUnwrapsThroughAs(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	wrapped := fmt.Errorf("finalize: %w", NewStorageFailedError("job-1", cause))

	var perr *ProcessingError
	require.True(t, errors.As(wrapped, &perr))
	assert.Equal(t, ErrorStorageFailed, perr.Code)
	assert.Equal(t, "job-1", perr.JobID)
}

func TestValidationErrorFormatting(t *testing.T) {
	err := NewValidationError(ErrorFileTooLarge, "File too large: %d bytes", 123)
	assert.Equal(t, "FILE_TOO_LARGE: File too large: 123 bytes", err.Error())
}

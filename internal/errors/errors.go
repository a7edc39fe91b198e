package errors

import (
	"fmt"
	"time"
)

/**
 * Custom error types for the OCR service.
 *
 * Two families:
 * - ValidationError: file/webhook validation failures, surfaced as 400 at
 *   ingress and as FAILED terminal states when the worker re-validates.
 * - ProcessingError: worker pipeline failures with structured codes.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Validation errors
	ErrorFileTooLarge    ErrorCode = "FILE_TOO_LARGE"
	ErrorUnknownType     ErrorCode = "UNKNOWN_TYPE"
	ErrorUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
	ErrorTypeMismatch    ErrorCode = "TYPE_MISMATCH"
	ErrorImageTooLarge   ErrorCode = "IMAGE_TOO_LARGE"
	ErrorMalformedImage  ErrorCode = "MALFORMED_IMAGE"
	ErrorEncryptedPDF    ErrorCode = "ENCRYPTED_PDF"
	ErrorMalformedPDF    ErrorCode = "MALFORMED_PDF"
	ErrorPDFTooLong      ErrorCode = "PDF_TOO_LONG"

	// Processing errors
	ErrorProcessingTimeout ErrorCode = "PROCESSING_TIMEOUT"
	ErrorOCRFailed         ErrorCode = "OCR_FAILED"

	// Storage errors
	ErrorStorageFailed ErrorCode = "STORAGE_FAILED"
)

// ValidationError reports why a file or URL was rejected.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(code ErrorCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ProcessingError represents a structured processing error
type ProcessingError struct {
	Code      ErrorCode
	Message   string
	JobID     string
	Timestamp time.Time
	Cause     error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Factory functions for common errors

func NewProcessingTimeoutError(jobID string) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorProcessingTimeout,
		Message:   "Processing timeout exceeded",
		JobID:     jobID,
		Timestamp: time.Now(),
	}
}

func NewOCRFailedError(jobID string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorOCRFailed,
		Message:   "OCR engine failed",
		JobID:     jobID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewStorageFailedError(jobID string, cause error) *ProcessingError {
	return &ProcessingError{
		Code:      ErrorStorageFailed,
		Message:   "Failed to store processing results",
		JobID:     jobID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

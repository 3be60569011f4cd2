package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline and storage failure taxonomy. Each stage maps its own faults onto
// one of these so callers can branch with errors.Is without knowing internals.
var (
	// ErrNoExtractableText means neither direct extraction nor OCR produced text.
	ErrNoExtractableText = errors.New("no extractable text")
	// ErrExtractionUnavailable means the completion service is not configured
	// or did not answer; every completion fault surfaces as this.
	ErrExtractionUnavailable = errors.New("extraction unavailable")
	// ErrMalformedModelOutput means the completion response failed schema validation.
	ErrMalformedModelOutput = errors.New("malformed model output")
	// ErrStorageUnavailable means the database could not be reached or re-established.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidFolderNumber rejects a save before any database call.
	ErrInvalidFolderNumber = errors.New("invalid folder number")
	// ErrNotFound is returned by lookups for folder numbers never saved.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers malformed caller input outside the folder-number case.
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

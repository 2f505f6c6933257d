package errors

import (
	"fmt"
)

// LoomError is the structured error type for VisuaLoom.
// It provides context for error handling, logging, and job error capture.
type LoomError struct {
	// Code is the unique error code (e.g., "ERR_402_IMAGE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Filesystem, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *LoomError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LoomError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with LoomError.
func (e *LoomError) Is(target error) bool {
	if t, ok := target.(*LoomError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *LoomError) WithDetail(key, value string) *LoomError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new LoomError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *LoomError {
	return &LoomError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a LoomError from an existing error.
// The error's message becomes the LoomError message.
func Wrap(code string, err error) *LoomError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates a lookup-miss error for the given kind of entity.
// Callers get an explicit miss they can test with errors.Is, never a panic
// from deep inside a component.
func NotFound(code, kind, key string) *LoomError {
	return New(code, fmt.Sprintf("%s not found: %s", kind, key), nil).WithDetail(kind, key)
}

// JobNotFound reports an unknown job id.
func JobNotFound(jobID string) *LoomError {
	return NotFound(ErrCodeJobNotFound, "job", jobID)
}

// ImageNotFound reports an unknown image id.
func ImageNotFound(imageID string) *LoomError {
	return NotFound(ErrCodeImageNotFound, "image", imageID)
}

// TagNotFound reports an unknown tag name or id.
func TagNotFound(name string) *LoomError {
	return NotFound(ErrCodeTagNotFound, "tag", name)
}

// UnreadableImage reports a file that could not be decoded as an image.
// Sweeps log and skip these without aborting.
func UnreadableImage(path string, cause error) *LoomError {
	return New(ErrCodeUnreadableImage, fmt.Sprintf("unreadable image: %s", path), cause).
		WithDetail("path", path)
}

// EmbeddingFailure reports an embedding collaborator error.
// The image record is still cataloged without a vector.
func EmbeddingFailure(cause error) *LoomError {
	return Wrap(ErrCodeEmbeddingFailure, cause)
}

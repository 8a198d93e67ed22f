// Package errors defines the application error taxonomy. Syntax errors are
// deliberately absent: malformed documents are returned as data inside a
// ParseResult, never raised across the worker boundary.
package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrCancelled     = errors.New("job cancelled")
	ErrWorkerStopped = errors.New("worker is not running")
	ErrEmptyInput    = errors.New("input is empty")
	ErrFileNotFound  = errors.New("file not found")
	ErrUnknownJob    = errors.New("unknown job id")
)

// ErrorType categorizes errors
type ErrorType string

const (
	// ErrorTypeIO means reading the source failed. Fatal for that job,
	// never retried.
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeTransport means the worker is unavailable or the channel
	// failed, as opposed to a structured parse failure.
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeCancelled means the orchestrator retired the job locally
	// before a terminal worker response arrived.
	ErrorTypeCancelled ErrorType = "cancelled"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewIOError creates a new error for a failed source read
func NewIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Err:     err,
	}
}

// NewTransportError creates a new error for a worker or channel failure
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewCancelledError creates a new error for a locally retired job
func NewCancelledError(message string, err error) *AppError {
	if err == nil {
		err = ErrCancelled
	}
	return &AppError{
		Type:    ErrorTypeCancelled,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to report output
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// IsCancelled reports whether err represents a cancelled job.
func IsCancelled(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type == ErrorTypeCancelled {
		return true
	}
	return errors.Is(err, ErrCancelled)
}

// IsTransport reports whether err represents a worker/channel failure.
func IsTransport(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrorTypeTransport
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeIO:
			return fmt.Sprintf("Read error: %s", appErr.Message)
		case ErrorTypeTransport:
			return fmt.Sprintf("Worker error: %s", appErr.Message)
		case ErrorTypeCancelled:
			return fmt.Sprintf("Cancelled: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a JSON document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrCancelled) {
		return "Error: The operation was cancelled before it completed."
	}
	if errors.Is(err, ErrWorkerStopped) {
		return "Error: The background worker is not running."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}

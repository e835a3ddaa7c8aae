package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the base error type for all tripagent errors
type AppError struct {
	Message  string        // Human-readable error message
	Context  *ErrorContext // Rich error context
	Cause    error         // Underlying error (for wrapping)
	ExitCode ExitCode      // Exit code for CLI
}

// Error returns the error message with cause if present
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetUserMessage returns a user-friendly error message with context
func (e *AppError) GetUserMessage() string {
	msg := fmt.Sprintf("ERROR: %s", e.Message)

	if e.Cause != nil {
		msg += fmt.Sprintf("\nCause: %v", e.Cause)
	}

	if e.Context != nil {
		msg += e.Context.Format()
	}

	return msg
}

// NewError creates a new AppError with the given message and exit code
func NewError(message string, exitCode ExitCode) *AppError {
	return &AppError{
		Message:  message,
		ExitCode: exitCode,
	}
}

// WrapError wraps an existing error with additional context
func WrapError(cause error, message string, exitCode ExitCode) *AppError {
	return &AppError{
		Message:  message,
		Cause:    cause,
		ExitCode: exitCode,
	}
}

// AsAppError finds the first *AppError in err's chain. Typed errors embed
// *AppError, so they are matched through their embedded pointer.
func AsAppError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	type appErrorCarrier interface {
		appError() *AppError
	}
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		switch v := e.(type) {
		case *AppError:
			return v, true
		case appErrorCarrier:
			return v.appError(), true
		}
	}
	return nil, false
}

// ExitCodeOf returns the exit code carried by err, or ExitGeneralError.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.ExitCode
	}
	return ExitGeneralError
}

func (e *AppError) appError() *AppError {
	return e
}

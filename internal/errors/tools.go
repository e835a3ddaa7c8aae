package errors

import (
	stderrors "errors"
	"fmt"
)

// ArgumentValidationError is raised when resolved tool arguments fail their
// schema (missing field, wrong type, unparseable date, negative count).
type ArgumentValidationError struct {
	*AppError
	Tool   string
	Field  string
	Reason string
}

// NewArgumentValidationError creates a new argument validation error
func NewArgumentValidationError(tool, field, reason string) *ArgumentValidationError {
	return &ArgumentValidationError{
		Tool:   tool,
		Field:  field,
		Reason: reason,
		AppError: &AppError{
			Message: fmt.Sprintf("invalid argument '%s' for %s: %s", field, tool, reason),
			Context: &ErrorContext{
				Operation: "Argument validation",
				Component: tool,
				Details: map[string]interface{}{
					"field":  field,
					"reason": reason,
				},
			},
			ExitCode: ExitValidationError,
		},
	}
}

// AdapterError is raised when a lookup provider fails or returns an unusable
// response. It is distinguishable from a successful but empty result.
type AdapterError struct {
	*AppError
	Tool       string
	StatusCode int
}

// NewAdapterError creates a new adapter error
func NewAdapterError(tool, reason string, cause error) *AdapterError {
	return &AdapterError{
		Tool: tool,
		AppError: &AppError{
			Message: fmt.Sprintf("%s lookup failed: %s", tool, reason),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Lookup",
				Component: tool,
				Details: map[string]interface{}{
					"reason": reason,
				},
				Recoverable: true,
			},
			ExitCode: ExitAgentError,
		},
	}
}

// NewAdapterStatusError creates an adapter error for a non-2xx provider response
func NewAdapterStatusError(tool string, statusCode int, body string) *AdapterError {
	err := NewAdapterError(tool, fmt.Sprintf("provider returned status %d", statusCode), nil)
	err.StatusCode = statusCode
	err.Context.Details["status_code"] = statusCode
	if body != "" {
		err.Context.Details["body"] = body
	}
	return err
}

// IsArgumentValidation reports whether err is an ArgumentValidationError
func IsArgumentValidation(err error) bool {
	var target *ArgumentValidationError
	return stderrors.As(err, &target)
}

// IsAdapterError reports whether err is an AdapterError
func IsAdapterError(err error) bool {
	var target *AdapterError
	return stderrors.As(err, &target)
}

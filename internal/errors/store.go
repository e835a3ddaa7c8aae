package errors

import (
	stderrors "errors"
	"fmt"
)

// StoreError is raised when a session cannot be loaded or saved
type StoreError struct {
	*AppError
}

// NewStoreError creates a new session store error
func NewStoreError(operation, sessionKey string, cause error) *StoreError {
	return &StoreError{
		AppError: &AppError{
			Message: fmt.Sprintf("Session store %s failed for '%s'", operation, sessionKey),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Session " + operation,
				Component: "Session store",
				Details: map[string]interface{}{
					"session": sessionKey,
				},
				Suggestions: []string{
					"Check that store.path is writable",
					"Run 'tripagent sessions list' to inspect stored sessions",
				},
			},
			ExitCode: ExitStoreError,
		},
	}
}

// SessionNotFoundError is raised when a follow-up names an unknown session
type SessionNotFoundError struct {
	*AppError
	SessionKey string
}

// NewSessionNotFoundError creates a new unknown-session error
func NewSessionNotFoundError(sessionKey string) *SessionNotFoundError {
	return &SessionNotFoundError{
		SessionKey: sessionKey,
		AppError: &AppError{
			Message: fmt.Sprintf("Session '%s' not found", sessionKey),
			Context: &ErrorContext{
				Operation: "Session load",
				Component: "Session store",
				Details: map[string]interface{}{
					"session": sessionKey,
				},
				Suggestions: []string{
					"Run 'tripagent sessions list' to see stored sessions",
					"Start a new session with 'tripagent plan'",
				},
			},
			ExitCode: ExitValidationError,
		},
	}
}

// NewSessionExistsError is raised when a new session would overwrite an old one
func NewSessionExistsError(sessionKey string) *AppError {
	return &AppError{
		Message: fmt.Sprintf("Session '%s' already exists", sessionKey),
		Context: &ErrorContext{
			Operation: "Session start",
			Component: "Loop orchestrator",
			Suggestions: []string{
				"Continue it with 'tripagent chat " + sessionKey + "'",
				"Delete it with 'tripagent sessions delete " + sessionKey + "'",
			},
		},
		ExitCode: ExitValidationError,
	}
}

// IsSessionNotFound reports whether err is a SessionNotFoundError
func IsSessionNotFound(err error) bool {
	var target *SessionNotFoundError
	return stderrors.As(err, &target)
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// ReasoningUnavailableError is raised when the decision step cannot reach the
// language model (network failure, timeout, quota). The round is left
// retryable: no partial assistant message is recorded.
type ReasoningUnavailableError struct {
	*AppError
	Provider string
}

// NewReasoningUnavailableError creates a new reasoning-unavailable error
func NewReasoningUnavailableError(provider string, cause error) *ReasoningUnavailableError {
	return &ReasoningUnavailableError{
		Provider: provider,
		AppError: &AppError{
			Message: fmt.Sprintf("Language model unavailable: %s", provider),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Planning round",
				Component: "Decision node",
				Details: map[string]interface{}{
					"provider": provider,
				},
				Suggestions: []string{
					"Try again in a moment",
					"Check your internet connection",
					"Verify the API key and quota for the provider",
				},
				Recoverable: true,
			},
			ExitCode: ExitLLMError,
		},
	}
}

// UnboundedLoopError is raised when the model keeps requesting tools past the
// configured round cap.
type UnboundedLoopError struct {
	*AppError
	MaxRounds int
}

// NewUnboundedLoopError creates a new loop-limit error
func NewUnboundedLoopError(maxRounds int) *UnboundedLoopError {
	return &UnboundedLoopError{
		MaxRounds: maxRounds,
		AppError: &AppError{
			Message: fmt.Sprintf("Planner stopped after %d tool rounds without a final answer", maxRounds),
			Context: &ErrorContext{
				Operation: "Planning round",
				Component: "Loop orchestrator",
				Details: map[string]interface{}{
					"max_rounds": maxRounds,
				},
				Suggestions: []string{
					"Ask a more specific follow-up question",
					"Increase agent.max_rounds in the configuration",
				},
				Recoverable: true,
			},
			ExitCode: ExitPartialSuccess,
		},
	}
}

// InvalidToolRequestError is raised when the model asks for a tool that is not
// registered. It never leaves the invocation node.
type InvalidToolRequestError struct {
	*AppError
	ToolName string
}

// NewInvalidToolRequestError creates a new invalid tool error
func NewInvalidToolRequestError(toolName string) *InvalidToolRequestError {
	return &InvalidToolRequestError{
		ToolName: toolName,
		AppError: &AppError{
			Message:  fmt.Sprintf("Tool '%s' is not registered", toolName),
			ExitCode: ExitAgentError,
		},
	}
}

// IsReasoningUnavailable reports whether err is a ReasoningUnavailableError
func IsReasoningUnavailable(err error) bool {
	var target *ReasoningUnavailableError
	return stderrors.As(err, &target)
}

// IsUnboundedLoop reports whether err is an UnboundedLoopError
func IsUnboundedLoop(err error) bool {
	var target *UnboundedLoopError
	return stderrors.As(err, &target)
}

package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/tripagent/internal/llm"
	"github.com/user/tripagent/internal/llmtypes"
)

// MockLLMClient implements llm.LLMClient for testing. Responses are served in
// order; an entry in Errors at the same index is returned instead.
type MockLLMClient struct {
	mu             sync.Mutex
	Responses      []llm.CompletionResponse
	Errors         map[int]error
	CallCount      int
	LastRequest    llm.CompletionRequest
	ShouldError    bool
	ErrorToReturn  error
	RequestHistory []llm.CompletionRequest
}

// NewMockLLMClient creates a new mock LLM client with predefined responses
func NewMockLLMClient(responses ...llm.CompletionResponse) *MockLLMClient {
	return &MockLLMClient{
		Responses:      responses,
		Errors:         make(map[int]error),
		RequestHistory: make([]llm.CompletionRequest, 0),
	}
}

// GenerateCompletion implements llm.LLMClient
func (m *MockLLMClient) GenerateCompletion(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRequest = req
	m.RequestHistory = append(m.RequestHistory, req)
	call := m.CallCount
	m.CallCount++

	if err := ctx.Err(); err != nil {
		return llm.CompletionResponse{}, err
	}
	if m.ShouldError {
		return llm.CompletionResponse{}, m.ErrorToReturn
	}
	if err, ok := m.Errors[call]; ok {
		return llm.CompletionResponse{}, err
	}

	if call >= len(m.Responses) {
		// Return last response if we've exhausted the list
		if len(m.Responses) > 0 {
			return m.Responses[len(m.Responses)-1], nil
		}
		return llm.CompletionResponse{}, fmt.Errorf("no responses configured")
	}
	return m.Responses[call], nil
}

// SupportsTools implements llm.LLMClient
func (m *MockLLMClient) SupportsTools() bool {
	return true
}

// GetProvider implements llm.LLMClient
func (m *MockLLMClient) GetProvider() string {
	return "mock"
}

// Calls returns how many completions were requested
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// History returns a copy of every request received
func (m *MockLLMClient) History() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.CompletionRequest, len(m.RequestHistory))
	copy(out, m.RequestHistory)
	return out
}

// Reset resets the mock state
func (m *MockLLMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = llm.CompletionRequest{}
	m.RequestHistory = make([]llm.CompletionRequest, 0)
	m.Errors = make(map[int]error)
	m.ShouldError = false
	m.ErrorToReturn = nil
}

// SetError configures the mock to return an error on every call
func (m *MockLLMClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShouldError = true
	m.ErrorToReturn = err
}

// FailCall makes the call at index (0-based) return err
func (m *MockLLMClient) FailCall(index int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[index] = err
}

// TextResponse is a final assistant answer
func TextResponse(content string) llm.CompletionResponse {
	return llm.CompletionResponse{Content: content}
}

// ToolCallResponse is an assistant turn requesting calls
func ToolCallResponse(calls ...llmtypes.ToolCall) llm.CompletionResponse {
	return llm.CompletionResponse{ToolCalls: calls}
}

// Call builds a tool call request
func Call(id, name string, args map[string]interface{}) llmtypes.ToolCall {
	if args == nil {
		args = map[string]interface{}{}
	}
	return llmtypes.ToolCall{ID: id, Name: name, Arguments: args}
}

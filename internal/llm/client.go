package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/user/tripagent/internal/llmtypes"
)

// Short names for the shared message model
type (
	Message            = llmtypes.Message
	ToolCall           = llmtypes.ToolCall
	CompletionRequest  = llmtypes.CompletionRequest
	CompletionResponse = llmtypes.CompletionResponse
	TokenUsage         = llmtypes.TokenUsage
	ToolDefinition     = llmtypes.ToolDefinition
)

// LLMClient is one reasoning provider. A response carries either answer text
// or the tool calls the model wants made next.
type LLMClient interface {
	GenerateCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	SupportsTools() bool
	GetProvider() string
}

// maxErrorBody caps how much of a failed response ends up in an error
const maxErrorBody = 512

// jsonTransport posts JSON to providers that have no Go SDK wired in
type jsonTransport struct {
	client *RetryClient
}

func newJSONTransport(client *RetryClient) jsonTransport {
	if client == nil {
		client = NewRetryClient(nil)
	}
	return jsonTransport{client: client}
}

// post sends payload to endpoint with the given headers and returns the
// status and full body. Credentials belong in headers: transport errors
// quote the URL.
func (t jsonTransport) post(ctx context.Context, endpoint string, headers map[string]string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func clipBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "..."
}

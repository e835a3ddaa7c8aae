package llmtypes

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message
type Message struct {
	Role      string     `json:"role"` // "user", "assistant", "tool"
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`   // Tool calls made by assistant (for role="assistant")
	ToolID    string     `json:"tool_call_id,omitempty"` // ID of the originating tool call (for role="tool")
	Name      string     `json:"name,omitempty"`         // Tool name (for role="tool")
}

// HasToolCalls reports whether the message is an assistant turn requesting lookups
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// ToolCall represents a tool/function call from the LLM
type ToolCall struct {
	ID               string                 `json:"id"`                          // Unique within the emitting message
	Name             string                 `json:"name"`                        // Name of the tool to call
	Arguments        map[string]interface{} `json:"args,omitempty"`              // Arguments for the tool, possibly incomplete
	RawFunctionCall  map[string]interface{} `json:"raw_function_call,omitempty"` // Preserves complete function call data
	ThoughtSignature string                 `json:"thought_signature,omitempty"` // Required for Gemini function calling
}

// CompletionRequest is a request for LLM completion
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse is the response from LLM
type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

// TokenUsage tracks token usage
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ToolDefinition defines a tool for the LLM
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/user/tripagent/internal/config"
)

// GeminiClient implements LLMClient for Google Gemini
type GeminiClient struct {
	transport jsonTransport
	apiKey    string
	model     string
	baseURL   string
}

// geminiRequest represents the request body for Gemini API
type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	Tools             []geminiTool           `json:"tools,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
}

// geminiContent represents content in Gemini format
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a part of content
type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     map[string]interface{}  `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
	ThoughtSignature string                  `json:"thoughtSignature,omitempty"`
}

// geminiFunctionResponse carries a tool result back to the model
type geminiFunctionResponse struct {
	ID       string                 `json:"id,omitempty"`
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response,omitempty"`
}

// geminiTool represents a tool declaration
type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// geminiFunctionDeclaration represents a function declaration
type geminiFunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// geminiGenerationConfig represents generation configuration
type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse represents the response from Gemini API
type geminiResponse struct {
	Candidates    []geminiCandidate   `json:"candidates"`
	UsageMetadata geminiUsageMetadata `json:"usageMetadata,omitempty"`
	Error         *geminiError        `json:"error,omitempty"`
}

// geminiCandidate represents a candidate response
type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// geminiUsageMetadata represents token usage
type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// geminiError represents an error
type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg config.LLMConfig, retryClient *RetryClient) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &GeminiClient{
		transport: newJSONTransport(retryClient),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// GenerateCompletion generates a completion from Gemini
func (c *GeminiClient) GenerateCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	gemReq := c.convertRequest(req)

	// Model format: models/gemini-1.5-flash
	modelName := c.model
	if !strings.HasPrefix(modelName, "models/") {
		modelName = "models/" + modelName
	}
	endpoint := fmt.Sprintf("%s/v1beta/%s:generateContent", c.baseURL, modelName)

	status, body, err := c.transport.post(ctx, endpoint, map[string]string{"x-goog-api-key": c.apiKey}, gemReq)
	if err != nil {
		return CompletionResponse{}, err
	}

	var gemResp geminiResponse
	if status != http.StatusOK {
		if err := json.Unmarshal(body, &gemResp); err == nil && gemResp.Error != nil {
			return CompletionResponse{}, fmt.Errorf("gemini %s: %s", gemResp.Error.Status, gemResp.Error.Message)
		}
		return CompletionResponse{}, fmt.Errorf("gemini returned status %d: %s", status, clipBody(body))
	}

	if err := json.Unmarshal(body, &gemResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if gemResp.Error != nil {
		return CompletionResponse{}, fmt.Errorf("API error: %s", gemResp.Error.Message)
	}
	if len(gemResp.Candidates) > 0 && gemResp.Candidates[0].FinishReason == "SAFETY" {
		return CompletionResponse{}, fmt.Errorf("response blocked for safety reasons")
	}

	return c.convertResponse(gemResp), nil
}

// SupportsTools returns true
func (c *GeminiClient) SupportsTools() bool {
	return true
}

// GetProvider returns the provider name
func (c *GeminiClient) GetProvider() string {
	return "gemini"
}

// convertRequest converts internal request to Gemini format
func (c *GeminiClient) convertRequest(req CompletionRequest) geminiRequest {
	contents := []geminiContent{}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "tool":
			// Gemini pairs results to calls by function name
			funcName := msg.Name
			if funcName == "" {
				funcName = msg.ToolID
			}
			if funcName == "" {
				funcName = "unknown_function"
			}

			contents = append(contents, geminiContent{
				Role: "user",
				Parts: []geminiPart{
					{
						FunctionResponse: &geminiFunctionResponse{
							Name: funcName,
							Response: map[string]interface{}{
								"result": msg.Content,
							},
						},
					},
				},
			})
		case "assistant":
			var parts []geminiPart

			if msg.Content != "" {
				parts = append(parts, geminiPart{Text: msg.Content})
			}

			for _, tc := range msg.ToolCalls {
				part := geminiPart{
					ThoughtSignature: tc.ThoughtSignature,
				}
				if tc.RawFunctionCall != nil {
					part.FunctionCall = tc.RawFunctionCall
				} else {
					part.FunctionCall = map[string]interface{}{
						"name": tc.Name,
						"args": tc.Arguments,
					}
				}
				parts = append(parts, part)
			}

			if len(parts) > 0 {
				contents = append(contents, geminiContent{
					Role:  "model",
					Parts: parts,
				})
			}
		case "user":
			if strings.TrimSpace(msg.Content) == "" {
				continue
			}
			contents = append(contents, geminiContent{
				Role: "user",
				Parts: []geminiPart{
					{Text: msg.Content},
				},
			})
		}
	}

	var tools []geminiTool
	if len(req.Tools) > 0 {
		functions := make([]geminiFunctionDeclaration, len(req.Tools))
		for i, tool := range req.Tools {
			functions[i] = geminiFunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			}
		}
		tools = []geminiTool{{FunctionDeclarations: functions}}
	}

	gemReq := geminiRequest{
		Contents: contents,
		Tools:    tools,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.SystemPrompt != "" {
		gemReq.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}
	return gemReq
}

// convertResponse converts Gemini response to internal format
func (c *GeminiClient) convertResponse(resp geminiResponse) CompletionResponse {
	result := CompletionResponse{
		Usage: TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		},
	}

	if len(resp.Candidates) == 0 {
		return result
	}

	var text strings.Builder
	var toolCalls []ToolCall

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			name, _ := part.FunctionCall["name"].(string)
			args, _ := part.FunctionCall["args"].(map[string]interface{})
			id, _ := part.FunctionCall["id"].(string)
			toolCalls = append(toolCalls, ToolCall{
				ID:               id,
				Name:             name,
				Arguments:        args,
				RawFunctionCall:  part.FunctionCall,
				ThoughtSignature: part.ThoughtSignature,
			})
		}
	}

	result.Content = text.String()
	result.ToolCalls = toolCalls

	return result
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/tripagent/internal/config"
)

func TestOpenAIClient_GenerateCompletion_Text(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer token, got %q", got)
		}

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		msgs, _ := body["messages"].([]interface{})
		if len(msgs) != 2 {
			t.Errorf("Expected system + user messages, got %d", len(msgs))
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Here is your plan"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.LLMConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini"}, NewRetryClient(fastRetryConfig(1)))

	resp, err := client.GenerateCompletion(context.Background(), CompletionRequest{
		SystemPrompt: "You are a travel agent",
		Messages:     []Message{{Role: "user", Content: "plan Rome"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Content != "Here is your plan" {
		t.Errorf("Expected content, got %q", resp.Content)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 4 {
		t.Errorf("Unexpected usage %+v", resp.Usage)
	}
}

func TestOpenAIClient_GenerateCompletion_ToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"hotels_finder","arguments":"{\"q\":\"Rome\",\"adults\":2}"}},
			{"id":"call_2","type":"function","function":{"name":"flights_finder","arguments":"not json"}}
		]},"finish_reason":"tool_calls"}]}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.LLMConfig{APIKey: "k", BaseURL: server.URL, Model: "gpt-4o-mini"}, NewRetryClient(fastRetryConfig(1)))

	resp, err := client.GenerateCompletion(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "plan"}},
		Tools:    []ToolDefinition{{Name: "hotels_finder", Parameters: map[string]interface{}{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("Expected 2 tool calls, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].ID != "call_1" || resp.ToolCalls[0].Arguments["q"] != "Rome" {
		t.Errorf("Unexpected first call %+v", resp.ToolCalls[0])
	}
	if _, ok := resp.ToolCalls[1].Arguments["_unparsed"]; !ok {
		t.Errorf("Expected unparsable arguments to be preserved, got %+v", resp.ToolCalls[1].Arguments)
	}
}

func TestOpenAIClient_GenerateCompletion_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewOpenAIClient(config.LLMConfig{APIKey: "bad", BaseURL: server.URL, Model: "gpt-4o-mini"}, NewRetryClient(fastRetryConfig(1)))

	_, err := client.GenerateCompletion(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("Expected API error, got %v", err)
	}
}

func TestOpenAIClient_ConvertRequest(t *testing.T) {
	client := NewOpenAIClient(config.LLMConfig{Model: "gpt-4o-mini"}, nil)

	req, err := client.convertRequest(CompletionRequest{
		Messages: []Message{
			{Role: "user", Content: ""},
			{Role: "user", Content: "plan"},
			{Role: "assistant", ToolCalls: []ToolCall{{ID: "c1", Name: "hotels_finder", Arguments: map[string]interface{}{"q": "Paris"}}}},
			{Role: "tool", ToolID: "c1", Name: "hotels_finder", Content: "{}"},
		},
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("convertRequest failed: %v", err)
	}

	if len(req.Messages) != 3 {
		t.Fatalf("Expected 3 messages after dropping blank user turn, got %d", len(req.Messages))
	}
	if req.Messages[1].ToolCalls[0].Function.Arguments != `{"q":"Paris"}` {
		t.Errorf("Unexpected serialized arguments %q", req.Messages[1].ToolCalls[0].Function.Arguments)
	}
	if req.Messages[2].ToolCallID != "c1" {
		t.Errorf("Expected tool message to reference c1, got %q", req.Messages[2].ToolCallID)
	}
	if req.ToolChoice != nil {
		t.Errorf("Expected no tool choice without tools, got %v", req.ToolChoice)
	}
}

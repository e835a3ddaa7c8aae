package llm

import (
	"testing"

	"github.com/user/tripagent/internal/config"
)

func TestFactory_CreateClient(t *testing.T) {
	factory := NewFactory(NewRetryClient(nil))

	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"gemini", "gemini", false},
		{"GEMINI", "gemini", false},
		{"", "gemini", false},
		{"openai", "openai", false},
		{"anthropic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := factory.CreateClient(config.LLMConfig{Provider: tt.provider, APIKey: "k"})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error for unsupported provider")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client.GetProvider() != tt.want {
				t.Errorf("Expected provider %s, got %s", tt.want, client.GetProvider())
			}
		})
	}
}

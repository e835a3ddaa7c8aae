package llm

import (
	"fmt"
	"strings"

	"github.com/user/tripagent/internal/config"
)

// Factory creates LLM clients
type Factory struct {
	retryClient *RetryClient
}

// NewFactory creates a new LLM factory sharing one retry client
func NewFactory(retryClient *RetryClient) *Factory {
	return &Factory{retryClient: retryClient}
}

// CreateClient creates an LLM client based on the provider configuration
func (f *Factory) CreateClient(cfg config.LLMConfig) (LLMClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClient(cfg, f.retryClient), nil
	case "gemini", "":
		return NewGeminiClient(cfg, f.retryClient), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: gemini, openai)", cfg.Provider)
	}
}

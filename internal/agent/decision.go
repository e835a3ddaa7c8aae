package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/conversation"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llm"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/prompts"
	"github.com/user/tripagent/internal/tools"
)

// Decider produces the next assistant message for a conversation
type Decider interface {
	Decide(ctx context.Context, state *conversation.State) (llmtypes.Message, error)
}

// DecisionNode asks the language model for the next step. It never retries:
// any failure to get an answer is a ReasoningUnavailableError.
type DecisionNode struct {
	client      llm.LLMClient
	prompts     *prompts.Manager
	logger      *logging.Logger
	timeout     time.Duration
	maxTokens   int
	temperature float64
	now         func() time.Time
	newID       func() string
}

// NewDecisionNode creates a decision node for client
func NewDecisionNode(client llm.LLMClient, pm *prompts.Manager, logger *logging.Logger, cfg config.LLMConfig) *DecisionNode {
	return &DecisionNode{
		client:      client,
		prompts:     pm,
		logger:      logger.Named("decision"),
		timeout:     cfg.GetTimeout(),
		maxTokens:   cfg.GetMaxTokens(),
		temperature: cfg.Temperature,
		now:         time.Now,
		newID:       func() string { return "call_" + uuid.NewString() },
	}
}

// Decide sends the preamble, the history and the tool declarations and
// returns the model's reply as an assistant message. state is not modified.
func (d *DecisionNode) Decide(ctx context.Context, state *conversation.State) (llmtypes.Message, error) {
	preamble, err := d.prompts.SystemPreamble(d.now())
	if err != nil {
		return llmtypes.Message{}, fmt.Errorf("failed to render system preamble: %w", err)
	}

	history := state.Outgoing()
	req := llm.CompletionRequest{
		SystemPrompt: preamble,
		Messages:     history,
		Tools:        tools.Declarations(),
		MaxTokens:    d.maxTokens,
		Temperature:  d.temperature,
	}

	d.logger.Info("Calling LLM",
		logging.String("provider", d.client.GetProvider()),
		logging.Int("history_messages", len(history)),
		logging.Int("tool_count", len(req.Tools)),
	)

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	resp, err := d.client.GenerateCompletion(callCtx, req)
	if err != nil {
		d.logger.Error("LLM call failed",
			logging.String("provider", d.client.GetProvider()),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return llmtypes.Message{}, errors.NewReasoningUnavailableError(d.client.GetProvider(), err)
	}

	msg := llmtypes.Message{
		Role:      llmtypes.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: d.assignIDs(resp.ToolCalls),
	}

	d.logger.Info("LLM response received",
		logging.Int("input_tokens", resp.Usage.InputTokens),
		logging.Int("output_tokens", resp.Usage.OutputTokens),
		logging.Int("tool_calls", len(msg.ToolCalls)),
		logging.Duration("elapsed", time.Since(start)),
	)

	return msg, nil
}

// assignIDs gives every call a unique id; providers that omit ids (Gemini)
// or repeat them would otherwise break result pairing.
func (d *DecisionNode) assignIDs(calls []llmtypes.ToolCall) []llmtypes.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]llmtypes.ToolCall, len(calls))
	seen := make(map[string]struct{}, len(calls))
	for i, call := range calls {
		if _, dup := seen[call.ID]; call.ID == "" || dup {
			call.ID = d.newID()
		}
		seen[call.ID] = struct{}{}
		out[i] = call
	}
	return out
}

package conversation

import (
	"fmt"

	"github.com/user/tripagent/internal/llmtypes"
)

// State is the ordered message history of one planning session. It only
// grows: every node contributes new messages through Append.
type State struct {
	messages []llmtypes.Message
}

// New creates a state seeded with msgs
func New(msgs ...llmtypes.Message) *State {
	s := &State{}
	s.Append(msgs...)
	return s
}

// Append concatenates msgs to the end of the history
func (s *State) Append(msgs ...llmtypes.Message) {
	for _, m := range msgs {
		s.messages = append(s.messages, cloneMessage(m))
	}
}

// Messages returns a copy of the history
func (s *State) Messages() []llmtypes.Message {
	out := make([]llmtypes.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = cloneMessage(m)
	}
	return out
}

// Len returns the number of messages
func (s *State) Len() int {
	return len(s.messages)
}

// Last returns the newest message, or false when the history is empty
func (s *State) Last() (llmtypes.Message, bool) {
	if len(s.messages) == 0 {
		return llmtypes.Message{}, false
	}
	return cloneMessage(s.messages[len(s.messages)-1]), true
}

// Snapshot marks the current length so a failed round can be undone
func (s *State) Snapshot() int {
	return len(s.messages)
}

// Restore drops everything appended after mark
func (s *State) Restore(mark int) {
	if mark < 0 || mark > len(s.messages) {
		return
	}
	s.messages = s.messages[:mark]
}

// Outgoing returns the history as sent to the model: user turns whose
// content is blank are skipped.
func (s *State) Outgoing() []llmtypes.Message {
	out := make([]llmtypes.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Role == llmtypes.RoleUser && isBlank(m.Content) {
			continue
		}
		out = append(out, cloneMessage(m))
	}
	return out
}

// LastAnswer returns the newest assistant message carrying text
func (s *State) LastAnswer() (llmtypes.Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Role == llmtypes.RoleAssistant && !isBlank(m.Content) {
			return cloneMessage(m), true
		}
	}
	return llmtypes.Message{}, false
}

// ValidateRound checks that results answer every call of assistant exactly
// once and in the same order.
func ValidateRound(assistant llmtypes.Message, results []llmtypes.Message) error {
	if len(results) != len(assistant.ToolCalls) {
		return fmt.Errorf("expected %d tool results, got %d", len(assistant.ToolCalls), len(results))
	}
	seen := make(map[string]struct{}, len(results))
	for i, call := range assistant.ToolCalls {
		res := results[i]
		if res.Role != llmtypes.RoleTool {
			return fmt.Errorf("result %d has role %q, want %q", i, res.Role, llmtypes.RoleTool)
		}
		if res.ToolID != call.ID {
			return fmt.Errorf("result %d answers %q, want %q", i, res.ToolID, call.ID)
		}
		if _, dup := seen[res.ToolID]; dup {
			return fmt.Errorf("duplicate result for call %q", res.ToolID)
		}
		seen[res.ToolID] = struct{}{}
	}
	return nil
}

func cloneMessage(m llmtypes.Message) llmtypes.Message {
	if m.ToolCalls != nil {
		calls := make([]llmtypes.ToolCall, len(m.ToolCalls))
		for i, c := range m.ToolCalls {
			calls[i] = c
			calls[i].Arguments = cloneArgs(c.Arguments)
		}
		m.ToolCalls = calls
	}
	return m
}

func cloneArgs(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		return nil
	}
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

package conversation

import (
	"reflect"
	"strings"
	"testing"

	"github.com/user/tripagent/internal/llmtypes"
)

func user(content string) llmtypes.Message {
	return llmtypes.Message{Role: llmtypes.RoleUser, Content: content}
}

func assistantWithCalls(ids ...string) llmtypes.Message {
	msg := llmtypes.Message{Role: llmtypes.RoleAssistant}
	for _, id := range ids {
		msg.ToolCalls = append(msg.ToolCalls, llmtypes.ToolCall{
			ID:        id,
			Name:      "hotels_finder",
			Arguments: map[string]interface{}{"q": "Paris"},
		})
	}
	return msg
}

func toolResult(id string) llmtypes.Message {
	return llmtypes.Message{Role: llmtypes.RoleTool, ToolID: id, Name: "hotels_finder", Content: "{}"}
}

func TestState_AppendOnly(t *testing.T) {
	s := New(user("plan a trip"))
	s.Append(assistantWithCalls("c1"), toolResult("c1"))
	s.Append(llmtypes.Message{Role: llmtypes.RoleAssistant, Content: "done"})

	if s.Len() != 4 {
		t.Fatalf("Expected 4 messages, got %d", s.Len())
	}

	msgs := s.Messages()
	wantRoles := []string{llmtypes.RoleUser, llmtypes.RoleAssistant, llmtypes.RoleTool, llmtypes.RoleAssistant}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Errorf("Message %d: expected role %s, got %s", i, role, msgs[i].Role)
		}
	}

	last, ok := s.Last()
	if !ok || last.Content != "done" {
		t.Errorf("Expected last message 'done', got %+v", last)
	}
}

func TestState_MessagesIsACopy(t *testing.T) {
	s := New(assistantWithCalls("c1"))

	msgs := s.Messages()
	msgs[0].Content = "mutated"
	msgs[0].ToolCalls[0].Arguments["q"] = "Rome"

	again := s.Messages()
	if again[0].Content != "" {
		t.Error("Expected state content to be unaffected by caller mutation")
	}
	if again[0].ToolCalls[0].Arguments["q"] != "Paris" {
		t.Error("Expected state tool args to be unaffected by caller mutation")
	}
}

func TestState_SnapshotRestore(t *testing.T) {
	s := New(user("first"))
	mark := s.Snapshot()
	s.Append(user("second"), assistantWithCalls("c1"))

	s.Restore(mark)
	if s.Len() != 1 {
		t.Fatalf("Expected 1 message after restore, got %d", s.Len())
	}

	s.Restore(10)
	if s.Len() != 1 {
		t.Errorf("Expected out-of-range restore to be ignored, got %d messages", s.Len())
	}
}

func TestState_Empty(t *testing.T) {
	s := New()
	if _, ok := s.Last(); ok {
		t.Error("Expected Last on empty state to report false")
	}
	if _, ok := s.LastAnswer(); ok {
		t.Error("Expected LastAnswer on empty state to report false")
	}
}

func TestState_OutgoingSkipsBlankUserTurns(t *testing.T) {
	s := New(user("plan"), user("   \n"), llmtypes.Message{Role: llmtypes.RoleAssistant, Content: ""}, user("more"))

	out := s.Outgoing()
	if len(out) != 3 {
		t.Fatalf("Expected 3 outgoing messages, got %d", len(out))
	}
	if out[2].Content != "more" {
		t.Errorf("Expected last outgoing message 'more', got %q", out[2].Content)
	}
	if s.Len() != 4 {
		t.Error("Expected Outgoing to leave the history untouched")
	}
}

func TestState_LastAnswer(t *testing.T) {
	s := New(
		user("plan"),
		llmtypes.Message{Role: llmtypes.RoleAssistant, Content: "Looking up hotels"},
		assistantWithCalls("c1"),
		toolResult("c1"),
	)

	ans, ok := s.LastAnswer()
	if !ok || ans.Content != "Looking up hotels" {
		t.Errorf("Expected last non-empty assistant content, got %+v", ans)
	}
}

func TestState_ReplayIsDeterministic(t *testing.T) {
	build := func() []llmtypes.Message {
		s := New(user("plan"))
		s.Append(assistantWithCalls("a", "b"))
		s.Append(toolResult("a"), toolResult("b"))
		return s.Messages()
	}
	if !reflect.DeepEqual(build(), build()) {
		t.Error("Expected identical inputs to produce identical histories")
	}
}

func TestValidateRound(t *testing.T) {
	call := assistantWithCalls("c1", "c2")

	tests := []struct {
		name    string
		results []llmtypes.Message
		wantErr string
	}{
		{"paired", []llmtypes.Message{toolResult("c1"), toolResult("c2")}, ""},
		{"missing", []llmtypes.Message{toolResult("c1")}, "expected 2 tool results"},
		{"extra", []llmtypes.Message{toolResult("c1"), toolResult("c2"), toolResult("c3")}, "expected 2 tool results"},
		{"reordered", []llmtypes.Message{toolResult("c2"), toolResult("c1")}, "answers"},
		{"wrong role", []llmtypes.Message{user("x"), toolResult("c2")}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRound(call, tt.results)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected valid round, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateRound_DuplicateIDs(t *testing.T) {
	call := assistantWithCalls("same", "same")
	err := ValidateRound(call, []llmtypes.Message{toolResult("same"), toolResult("same")})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Expected duplicate error, got %v", err)
	}
}

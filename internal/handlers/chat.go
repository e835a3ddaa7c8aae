package handlers

import (
	"context"
	"strings"

	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/validation"
)

// ChatHandler continues an existing session with follow-up requests
type ChatHandler struct {
	rt        *Runtime
	validator *validation.ItineraryValidator
}

// NewChatHandler creates a chat handler
func NewChatHandler(rt *Runtime) *ChatHandler {
	return &ChatHandler{rt: rt, validator: validation.NewItineraryValidator()}
}

// Handle runs one round of key with message
func (h *ChatHandler) Handle(ctx context.Context, key, message string) (*Outcome, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errors.NewError("Message must not be empty", errors.ExitValidationError)
	}

	h.rt.Logger.Info("Continuing session", logging.String("session", key))
	result, err := h.rt.Planner.RunRound(ctx, key, message)
	return finish(h.rt, h.validator, key, result, err)
}

// History returns the answers given so far in key, oldest first
func (h *ChatHandler) History(ctx context.Context, key string) ([]string, error) {
	rec, err := h.rt.Planner.Session(ctx, key)
	if err != nil {
		return nil, err
	}

	var answers []string
	for _, m := range rec.Messages {
		if m.Role == llmtypes.RoleAssistant && strings.TrimSpace(m.Content) != "" {
			answers = append(answers, m.Content)
		}
	}
	return answers, nil
}

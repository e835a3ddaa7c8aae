package handlers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/user/tripagent/internal/agent"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/validation"
)

// Outcome is what a planning round hands back to the CLI
type Outcome struct {
	SessionKey string
	Answer     string
	Incomplete bool
	Rounds     int
	Lookups    int
	Warnings   []validation.ValidationError
}

// PlanHandler starts new planning sessions from a trip form
type PlanHandler struct {
	rt        *Runtime
	validator *validation.ItineraryValidator
}

// NewPlanHandler creates a plan handler
func NewPlanHandler(rt *Runtime) *PlanHandler {
	return &PlanHandler{rt: rt, validator: validation.NewItineraryValidator()}
}

// NewSessionKey returns a fresh random session key
func NewSessionKey() string {
	return uuid.NewString()
}

// Handle creates the session (under key, or a new one when blank) and runs
// the first round.
func (h *PlanHandler) Handle(ctx context.Context, key string, form session.Context) (*Outcome, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = NewSessionKey()
	}

	h.rt.Logger.Info("Starting plan handler",
		logging.String("session", key),
		logging.String("destination", form.Destination),
	)

	result, err := h.rt.Planner.Plan(ctx, key, form)
	return finish(h.rt, h.validator, key, result, err)
}

// finish turns a round result into an Outcome. A round that hit the cap or
// failed to save still yields its answer together with the error.
func finish(rt *Runtime, v *validation.ItineraryValidator, key string, result *agent.RoundResult, err error) (*Outcome, error) {
	if result == nil {
		return nil, err
	}

	out := &Outcome{
		SessionKey: key,
		Answer:     result.Final.Content,
		Incomplete: result.Incomplete,
		Rounds:     result.Rounds,
		Lookups:    result.ToolCalls,
	}

	// Clarifying questions carry no itinerary to check
	if !result.Incomplete && v.QuickCheck(out.Answer) {
		out.Warnings = v.Check(out.Answer).Errors
		for _, w := range out.Warnings {
			rt.Logger.Warn("Itinerary layout issue", logging.String("session", key), logging.String("issue", w.Error()))
		}
	}

	if err != nil {
		if errors.IsUnboundedLoop(err) {
			rt.Logger.Warn("Answer is incomplete", logging.String("session", key), logging.Error(err))
		}
		return out, err
	}
	return out, nil
}

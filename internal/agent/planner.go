package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/conversation"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/store"
)

// IncompleteMarker is returned as the answer when the round cap is hit
// before the model produced any text.
const IncompleteMarker = "Planning stopped before a final answer was ready. Ask me to continue or narrow the request."

// Phase is a loop state
type Phase string

const (
	PhaseDeciding Phase = "deciding"
	PhaseInvoking Phase = "invoking"
	PhaseDone     Phase = "done"
)

// RoundResult describes one completed RunRound call
type RoundResult struct {
	Final      llmtypes.Message // answer shown to the user
	Incomplete bool             // round cap hit; Final is a partial answer
	Rounds     int              // decision steps taken
	ToolCalls  int              // lookups requested across the round
	Appended   int              // messages added to the conversation
}

// Planner drives the decide/invoke loop for persisted sessions
type Planner struct {
	decider   Decider
	invoker   Invoker
	store     store.Store
	logger    *logging.Logger
	maxRounds int

	mu    sync.Mutex
	locks map[string]*keyLock
}

// keyLock is a session mutex shared by the callers currently holding or
// waiting for it
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewPlanner creates a planner persisting sessions in st
func NewPlanner(decider Decider, invoker Invoker, st store.Store, logger *logging.Logger, cfg config.AgentConfig) *Planner {
	return &Planner{
		decider:   decider,
		invoker:   invoker,
		store:     st,
		logger:    logger.Named("planner"),
		maxRounds: cfg.GetMaxRounds(),
		locks:     make(map[string]*keyLock),
	}
}

// lock serializes work on one session key. The entry is dropped once no
// caller holds or waits for it.
func (p *Planner) lock(key string) func() {
	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &keyLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

// activeLocks reports how many session keys have a lock entry
func (p *Planner) activeLocks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}

// Begin registers a new session with its trip form
func (p *Planner) Begin(ctx context.Context, key string, sessCtx session.Context) error {
	if err := store.ValidateKey(key); err != nil {
		return errors.WrapError(err, "Invalid session key", errors.ExitValidationError)
	}
	if err := sessCtx.Validate(); err != nil {
		return errors.WrapError(err, "Invalid trip form", errors.ExitValidationError)
	}

	unlock := p.lock(key)
	defer unlock()

	_, exists, err := p.store.Load(ctx, key)
	if err != nil {
		return errors.NewStoreError("load", key, err)
	}
	if exists {
		return errors.NewSessionExistsError(key)
	}

	if err := p.store.Save(ctx, key, &store.Record{Session: sessCtx.Clone()}); err != nil {
		return errors.NewStoreError("save", key, err)
	}
	p.logger.Info("Session started",
		logging.String("session", key),
		logging.String("destination", sessCtx.Destination),
		logging.String("budget", string(sessCtx.Budget)),
	)
	return nil
}

// Plan starts a session and runs its first round with the form's request
func (p *Planner) Plan(ctx context.Context, key string, sessCtx session.Context) (*RoundResult, error) {
	if err := p.Begin(ctx, key, sessCtx); err != nil {
		return nil, err
	}
	return p.RunRound(ctx, key, sessCtx.Prompt())
}

// RunRound appends userMsg to the session and loops until the model answers
// without requesting tools. The conversation is saved once the round ends.
//
// On ReasoningUnavailable nothing from this round is kept. When the round
// cap is hit the partial conversation is saved and the result carries the
// best answer so far along with an UnboundedLoopError.
func (p *Planner) RunRound(ctx context.Context, key, userMsg string) (*RoundResult, error) {
	unlock := p.lock(key)
	defer unlock()

	rec, ok, err := p.store.Load(ctx, key)
	if err != nil {
		return nil, errors.NewStoreError("load", key, err)
	}
	if !ok {
		return nil, errors.NewSessionNotFoundError(key)
	}

	log := p.logger.With(logging.String("session", key))
	state := conversation.New(rec.Messages...)
	mark := state.Snapshot()
	state.Append(llmtypes.Message{Role: llmtypes.RoleUser, Content: userMsg})

	result := &RoundResult{}
	phase := PhaseDeciding
	var loopErr error

	for phase != PhaseDone {
		switch phase {
		case PhaseDeciding:
			if err := ctx.Err(); err != nil {
				state.Restore(mark)
				return nil, err
			}
			result.Rounds++
			log.Debug("Deciding", logging.Int("round", result.Rounds))

			msg, err := p.decider.Decide(ctx, state)
			if err != nil {
				state.Restore(mark)
				log.Warn("Round abandoned", logging.Int("round", result.Rounds), logging.Error(err))
				return nil, err
			}
			state.Append(msg)

			if Route(state) == Continue {
				phase = PhaseInvoking
			} else {
				result.Final = msg
				phase = PhaseDone
			}

		case PhaseInvoking:
			assistant, _ := state.Last()
			log.Info("Invoking tools",
				logging.Int("round", result.Rounds),
				logging.Int("tool_calls", len(assistant.ToolCalls)),
			)

			result.ToolCalls += len(assistant.ToolCalls)
			results := p.invoker.Invoke(ctx, assistant, rec.Session)
			if err := conversation.ValidateRound(assistant, results); err != nil {
				state.Restore(mark)
				return nil, fmt.Errorf("tool results out of order: %w", err)
			}
			state.Append(results...)

			if result.Rounds >= p.maxRounds {
				result.Incomplete = true
				result.Final = p.partialAnswer(state, mark)
				loopErr = errors.NewUnboundedLoopError(p.maxRounds)
				log.Warn("Round cap reached", logging.Int("max_rounds", p.maxRounds))
				phase = PhaseDone
			} else {
				phase = PhaseDeciding
			}
		}
	}

	result.Appended = state.Len() - mark

	rec.Messages = state.Messages()
	if err := p.store.Save(ctx, key, rec); err != nil {
		log.Error("Failed to save session", logging.Error(err))
		return result, errors.NewStoreError("save", key, err)
	}

	log.Info("Round finished",
		logging.Int("rounds", result.Rounds),
		logging.Int("appended", result.Appended),
		logging.Bool("incomplete", result.Incomplete),
	)
	return result, loopErr
}

// partialAnswer returns the newest text the model wrote during this round
func (p *Planner) partialAnswer(state *conversation.State, mark int) llmtypes.Message {
	msgs := state.Messages()
	for i := len(msgs) - 1; i >= mark; i-- {
		m := msgs[i]
		if m.Role == llmtypes.RoleAssistant && len(m.Content) > 0 {
			return llmtypes.Message{Role: llmtypes.RoleAssistant, Content: m.Content}
		}
	}
	return llmtypes.Message{Role: llmtypes.RoleAssistant, Content: IncompleteMarker}
}

// Session returns the stored record for key
func (p *Planner) Session(ctx context.Context, key string) (*store.Record, error) {
	rec, ok, err := p.store.Load(ctx, key)
	if err != nil {
		return nil, errors.NewStoreError("load", key, err)
	}
	if !ok {
		return nil, errors.NewSessionNotFoundError(key)
	}
	return rec, nil
}

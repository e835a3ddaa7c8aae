package agent

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llmtypes"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/resolver"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/tools"
	"github.com/user/tripagent/internal/worker_pool"
)

const (
	// InvalidToolMarker answers a call naming an unregistered tool
	InvalidToolMarker = "Invalid tool"

	// FailurePrefix starts every failed tool result
	FailurePrefix = "Tool call failed: "

	truncationNotice = "\n\n[TRUNCATED - tool result exceeded %d characters]"
)

// Invoker answers every tool call of an assistant message
type Invoker interface {
	Invoke(ctx context.Context, assistant llmtypes.Message, sessCtx session.Context) []llmtypes.Message
}

// ProgressReporter follows lookups as they run
type ProgressReporter interface {
	AddTask(id, name, description string)
	StartTask(id string)
	CompleteTask(id string)
	FailTask(id string, err error)
	SkipTask(id string)
}

type nopProgress struct{}

func (nopProgress) AddTask(id, name, description string) {}
func (nopProgress) StartTask(id string)                  {}
func (nopProgress) CompleteTask(id string)               {}
func (nopProgress) FailTask(id string, err error)        {}
func (nopProgress) SkipTask(id string)                   {}

// InvokeNode resolves, validates and runs tool calls. Calls of one message
// run concurrently; results come back in call order, one per call, and
// failures become result text instead of errors.
type InvokeNode struct {
	resolver       *resolver.Resolver
	registry       *tools.Registry
	pool           *worker_pool.WorkerPool
	maxResultChars int
	toolTimeout    time.Duration
	logger         *logging.Logger
	progress       ProgressReporter
	rounds         atomic.Uint64
}

// NewInvokeNode creates an invocation node
func NewInvokeNode(res *resolver.Resolver, registry *tools.Registry, logger *logging.Logger, cfg config.AgentConfig) *InvokeNode {
	return &InvokeNode{
		resolver:       res,
		registry:       registry,
		pool:           worker_pool.NewWorkerPool(cfg.GetMaxParallelTools()).WithTaskTimeout(cfg.GetToolTimeout()),
		maxResultChars: cfg.GetMaxToolResultChars(),
		toolTimeout:    cfg.GetToolTimeout(),
		logger:         logger.Named("invoke"),
		progress:       nopProgress{},
	}
}

// SetProgressReporter sets the progress reporter for lookups
func (n *InvokeNode) SetProgressReporter(p ProgressReporter) {
	if p == nil {
		p = nopProgress{}
	}
	n.progress = p
}

// Invoke returns one tool message per call in assistant.ToolCalls
func (n *InvokeNode) Invoke(ctx context.Context, assistant llmtypes.Message, sessCtx session.Context) []llmtypes.Message {
	calls := assistant.ToolCalls
	round := n.rounds.Add(1)
	taskIDs := make([]string, len(calls))
	gates := make([]*taskGate, len(calls))
	tasks := make([]worker_pool.Task, len(calls))
	for i, call := range calls {
		call := call
		taskID := fmt.Sprintf("%d/%d", round, i)
		taskIDs[i] = taskID
		gate := &taskGate{}
		gates[i] = gate
		n.progress.AddTask(taskID, call.Name, describeCall(call))
		tasks[i] = func(taskCtx context.Context) (interface{}, error) {
			gate.start(func() { n.progress.StartTask(taskID) })
			return n.runCall(taskCtx, call, sessCtx), nil
		}
	}

	results := n.pool.Run(ctx, tasks)

	out := make([]llmtypes.Message, len(calls))
	for i, call := range calls {
		content, ok := results[i].Value.(string)
		if results[i].Error != nil || !ok {
			content = n.synthesizeFailure(results[i].Error)
			n.logger.Warn("Tool call abandoned",
				logging.String("tool", call.Name),
				logging.String("call_id", call.ID),
				logging.Error(results[i].Error),
			)
		}
		gates[i].settle(func() { n.reportOutcome(taskIDs[i], content) })
		out[i] = llmtypes.Message{
			Role:    llmtypes.RoleTool,
			Content: content,
			ToolID:  call.ID,
			Name:    call.Name,
		}
	}
	return out
}

// runCall produces the result text for one call; it never fails
func (n *InvokeNode) runCall(ctx context.Context, call llmtypes.ToolCall, sessCtx session.Context) string {
	req, err := n.resolver.Resolve(call, sessCtx)
	if err != nil {
		var invalid *errors.InvalidToolRequestError
		if stderrors.As(err, &invalid) {
			n.logger.Warn("Tool not found", logging.String("tool", call.Name))
			return InvalidToolMarker
		}
		n.logger.Warn("Tool arguments rejected",
			logging.String("tool", call.Name),
			logging.String("call_id", call.ID),
			logging.Error(err),
		)
		return FailurePrefix + err.Error()
	}

	n.logger.Info("Executing tool",
		logging.String("tool", call.Name),
		logging.String("call_id", call.ID),
	)

	start := time.Now()
	result, err := n.registry.Execute(ctx, req)
	if err != nil {
		n.logger.Error("Tool execution failed",
			logging.String("tool", call.Name),
			logging.String("call_id", call.ID),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return FailurePrefix + err.Error()
	}

	n.logger.Info("Tool execution finished",
		logging.String("tool", call.Name),
		logging.String("call_id", call.ID),
		logging.Duration("elapsed", time.Since(start)),
	)
	return truncateToolResult(formatToolResult(result), n.maxResultChars)
}

func (n *InvokeNode) reportOutcome(taskID, content string) {
	switch {
	case content == InvalidToolMarker:
		n.progress.SkipTask(taskID)
	case strings.HasPrefix(content, FailurePrefix):
		n.progress.FailTask(taskID, stderrors.New(strings.TrimPrefix(content, FailurePrefix)))
	default:
		n.progress.CompleteTask(taskID)
	}
}

// taskGate orders a task's progress events. A task the pool abandoned may
// still start after its outcome was reported; that late start is dropped.
type taskGate struct {
	mu      sync.Mutex
	settled bool
}

func (g *taskGate) start(report func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.settled {
		report()
	}
}

func (g *taskGate) settle(report func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.settled = true
	report()
}

// describeCall summarizes the arguments a progress line shows
func describeCall(call llmtypes.ToolCall) string {
	for _, key := range []string{"q", "arrival_id", "departure_id"} {
		if v, ok := call.Arguments[key]; ok {
			return fmt.Sprintf("%s=%v", key, v)
		}
	}
	return ""
}

func (n *InvokeNode) synthesizeFailure(err error) string {
	switch {
	case err == nil:
		return FailurePrefix + "no result produced"
	case stderrors.Is(err, context.DeadlineExceeded):
		return FailurePrefix + fmt.Sprintf("lookup timed out after %s", n.toolTimeout)
	case stderrors.Is(err, context.Canceled):
		return FailurePrefix + "lookup cancelled"
	default:
		return FailurePrefix + err.Error()
	}
}

// formatToolResult renders a normalized result as JSON
func formatToolResult(result interface{}) string {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(jsonBytes)
}

// truncateToolResult caps result at maxChars runes
func truncateToolResult(result string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(result) <= maxChars {
		return result
	}
	runes := []rune(result)
	return string(runes[:maxChars]) + fmt.Sprintf(truncationNotice, maxChars)
}

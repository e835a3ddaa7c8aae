package agent

import (
	"github.com/user/tripagent/internal/conversation"
)

// Decision is the outcome of routing
type Decision int

const (
	// Terminate ends the round
	Terminate Decision = iota
	// Continue runs the requested tools, then decides again
	Continue
)

func (d Decision) String() string {
	if d == Continue {
		return "continue"
	}
	return "terminate"
}

// Route continues iff the newest message is an assistant turn requesting tools
func Route(state *conversation.State) Decision {
	last, ok := state.Last()
	if ok && last.HasToolCalls() {
		return Continue
	}
	return Terminate
}

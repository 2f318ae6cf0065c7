package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kubescout/kubescout/pkg/models"
)

// Handoff is one parsed handoff_to_agent call.
type Handoff struct {
	CallID      string
	AgentName   string
	Instruction string
}

// parseHandoff decodes a handoff_to_agent tool input.
func parseHandoff(call models.ToolCall) (*Handoff, error) {
	var in struct {
		AgentName   string `json:"agent_name"`
		Instruction string `json:"instruction"`
	}
	if err := json.Unmarshal(call.Input, &in); err != nil {
		return nil, fmt.Errorf("parse handoff: %w", err)
	}
	if in.AgentName == "" {
		return nil, fmt.Errorf("handoff missing agent_name")
	}
	if in.Instruction == "" {
		return nil, fmt.Errorf("handoff missing instruction")
	}
	return &Handoff{CallID: call.ID, AgentName: in.AgentName, Instruction: in.Instruction}, nil
}

// branchOutcome is one fan-out branch's result, indexed back to its call.
type branchOutcome struct {
	callID     string
	agentName  string
	summary    string
	transcript []models.Turn
	err        error
}

// fanOut runs all handoffs from one supervisor turn concurrently, each
// worker on its own goroutine with its own private transcript, and joins
// before returning. Outcomes come back in call order regardless of which
// branch finished first, so the supervisor sees a deterministic result
// turn.
func (d *Dispatcher) fanOut(ctx context.Context, handoffs []*Handoff) []branchOutcome {
	outcomes := make([]branchOutcome, len(handoffs))

	var wg sync.WaitGroup
	for i, h := range handoffs {
		wg.Add(1)
		go func(i int, h *Handoff) {
			defer wg.Done()
			outcomes[i] = d.runBranch(ctx, h)
		}(i, h)
	}
	wg.Wait()

	return outcomes
}

// runBranch executes a single handoff. An unknown agent or a failed worker
// run becomes an error outcome, not a dispatch failure.
func (d *Dispatcher) runBranch(ctx context.Context, h *Handoff) branchOutcome {
	out := branchOutcome{callID: h.CallID, agentName: h.AgentName}

	w := d.registry.Get(h.AgentName)
	if w == nil {
		out.err = fmt.Errorf("no agent registered under %q", h.AgentName)
		return out
	}

	res, err := w.Run(ctx, h.Instruction)
	if res != nil {
		out.transcript = res.Transcript
	}
	if err != nil {
		out.err = err
		return out
	}
	out.summary = res.Summary
	return out
}

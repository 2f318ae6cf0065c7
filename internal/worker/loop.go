package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
	"github.com/kubescout/kubescout/internal/toolconn"
	"github.com/kubescout/kubescout/pkg/models"
)

// ErrTurnsExhausted is returned when a worker hits its turn limit before
// the model ends its turn.
var ErrTurnsExhausted = errors.New("worker turn limit reached")

// Worker is one registered research agent bound to its tool source.
type Worker struct {
	Agent      config.AgentConfig
	Source     toolconn.Source
	Caller     api.Caller
	Aggregator *Aggregator
	MaxTurns   int
	MaxTokens  int
}

// Result is the outcome of one worker run.
type Result struct {
	// Summary is the worker's final text, returned to the supervisor.
	Summary string
	// Transcript is the worker's private conversation for this run.
	Transcript []models.Turn
	// Findings is how many new findings this run recorded.
	Findings int
}

const workerSystemPrompt = `You are %s, a specialized Kubernetes observability research agent.
%s

Objective: %s

Investigate using your tools. Every noteworthy fact, metric reading, or
incident you detect MUST be recorded with the register_finding tool before
you finish. When your investigation is complete, reply with a concise
summary of what you found and recorded.`

// Run executes the worker's research loop for one handoff instruction.
// The instruction arrives as the opening user turn; the worker's transcript
// is private to this run and returned for checkpointing.
func (w *Worker) Run(ctx context.Context, instruction string) (*Result, error) {
	tools, err := w.Source.Tools(ctx)
	if err != nil {
		return nil, fmt.Errorf("worker %s: list tools: %w", w.Agent.Name, err)
	}
	tools = append(tools, api.RegisterFindingTool())

	system := fmt.Sprintf(workerSystemPrompt, w.Agent.Name, w.Agent.Description, w.Agent.Objective)
	transcript := []models.Turn{models.UserTurn(instruction)}

	maxTurns := w.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 15
	}

	recorded := 0
	for turn := 0; turn < maxTurns; turn++ {
		reply, err := w.Caller.Complete(ctx, api.Request{
			System:     system,
			Transcript: transcript,
			Tools:      tools,
			MaxTokens:  int64(w.MaxTokens),
		})
		if err != nil {
			return nil, fmt.Errorf("worker %s: %w", w.Agent.Name, err)
		}
		transcript = append(transcript, reply.AssistantTurn())

		if reply.EndTurn || len(reply.ToolCalls) == 0 {
			return &Result{Summary: reply.Text, Transcript: transcript, Findings: recorded}, nil
		}

		results := make([]models.ToolResult, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			content, isErr, added := w.execute(ctx, call)
			if added {
				recorded++
			}
			results = append(results, models.ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: content,
				IsError: isErr,
			})
		}
		transcript = append(transcript, models.ResultTurn(results...))
	}

	return &Result{Transcript: transcript, Findings: recorded},
		fmt.Errorf("worker %s: %w after %d turns", w.Agent.Name, ErrTurnsExhausted, maxTurns)
}

// execute runs one tool call. Tool failures become error tool results fed
// back to the model rather than aborting the run.
func (w *Worker) execute(ctx context.Context, call models.ToolCall) (content string, isErr, findingAdded bool) {
	if call.Name == api.ToolRegisterFinding {
		note, err := ParseFinding(w.Agent.Name, call.Input, time.Now())
		if err != nil {
			return fmt.Sprintf("rejected: %v", err), true, false
		}
		if w.Aggregator.Add(*note) {
			log.Printf("[worker:%s] recorded %s finding: %s", w.Agent.Name, note.Severity, note.Description)
			return "finding recorded", false, true
		}
		return "finding already recorded", false, false
	}

	out, err := w.Source.Invoke(ctx, call.Name, call.Input)
	if err != nil {
		return err.Error(), true, false
	}
	return out, false, false
}

package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
	"github.com/kubescout/kubescout/internal/worker"
	"github.com/kubescout/kubescout/pkg/models"
)

// ErrStopped is returned when a stop signal interrupts dispatch.
var ErrStopped = errors.New("dispatch stopped by signal")

// ErrSupervisorStalled is returned when the supervisor exhausts its turn
// limit without closing the current task.
var ErrSupervisorStalled = errors.New("supervisor turn limit reached")

// CheckpointFunc persists dispatch progress after each retired task.
type CheckpointFunc func(queues *models.TaskQueues, workerTranscripts map[string][]models.Turn) error

// Dispatcher works the pending task queue one task at a time, strictly in
// queue order. Within a task it fans handoffs out to workers in parallel;
// across tasks it never reorders or look-aheads.
type Dispatcher struct {
	caller   api.Caller
	registry *Registry
	agg      *worker.Aggregator
	signals  *api.SignalWatcher
	cfg      config.ResearchConfig

	// Checkpoint, when set, is called after every task retirement.
	Checkpoint CheckpointFunc

	mu                sync.Mutex
	workerTranscripts map[string][]models.Turn
}

// NewDispatcher builds a dispatcher over a worker registry. The signal
// watcher may be nil when cooperative stop is not wanted.
func NewDispatcher(caller api.Caller, registry *Registry, agg *worker.Aggregator, signals *api.SignalWatcher, cfg config.ResearchConfig) *Dispatcher {
	return &Dispatcher{
		caller:            caller,
		registry:          registry,
		agg:               agg,
		signals:           signals,
		cfg:               cfg,
		workerTranscripts: make(map[string][]models.Turn),
	}
}

const supervisorSystemPrompt = `You are a research supervisor coordinating specialized Kubernetes
observability agents. You do not investigate anything yourself; you
delegate with handoff_to_agent and synthesize what comes back.

Available agents:
%s
Work the task below by handing focused sub-tasks to the agents best
suited for them. Hand off to several agents in one turn when their
sub-tasks are independent. When the task objective is covered by the
recorded findings, close it with complete_task. If no agent can make
progress, abandon it with skip_task.`

// RunQueue dispatches every pending task in order. Progress survives in
// the queues themselves: retired tasks carry their terminal status and
// collected notes, so a resumed session continues from the next pending
// task.
func (d *Dispatcher) RunQueue(ctx context.Context, queues *models.TaskQueues) error {
	for !queues.Empty() {
		if d.shouldStop() {
			return ErrStopped
		}

		task := queues.NextPending()
		task.Status = models.TaskInProgress
		log.Printf("[supervisor] dispatching %s: %s", task.ID, task.Section.Title)

		noteStart := d.agg.Count()
		if err := d.runTask(ctx, task); err != nil {
			return fmt.Errorf("task %s: %w", task.ID, err)
		}
		task.Notes = d.agg.Notes()[noteStart:]

		if err := queues.Retire(task); err != nil {
			return err
		}
		log.Printf("[supervisor] %s retired as %s with %d findings", task.ID, task.Status, len(task.Notes))

		if d.Checkpoint != nil {
			if err := d.Checkpoint(queues, d.WorkerTranscripts()); err != nil {
				return fmt.Errorf("checkpoint after %s: %w", task.ID, err)
			}
		}
	}
	return nil
}

// runTask drives the supervisor conversation for a single task until the
// supervisor closes it or the turn limit is hit.
func (d *Dispatcher) runTask(ctx context.Context, task *models.ResearchTask) error {
	system := fmt.Sprintf(supervisorSystemPrompt, d.rosterBlock())
	tools := []api.ToolDef{
		api.HandoffTool(d.registry.Names()),
		api.CompleteTaskTool(),
		api.SkipTaskTool(),
	}

	transcript := []models.Turn{models.UserTurn(fmt.Sprintf(
		"Research task %s, section %d: %s\n\nObjective: %s\n\n%s",
		task.ID, task.Section.Number, task.Section.Title, task.Section.Objective, task.Section.Description,
	))}

	maxTurns := d.cfg.MaxSupervisorTurns
	if maxTurns <= 0 {
		maxTurns = 30
	}

	for turn := 0; turn < maxTurns; turn++ {
		if d.shouldStop() {
			return ErrStopped
		}

		reply, err := d.caller.Complete(ctx, api.Request{
			System:     system,
			Transcript: transcript,
			Tools:      tools,
			MaxTokens:  int64(d.cfg.MaxTokens),
		})
		if err != nil {
			return err
		}
		transcript = append(transcript, reply.AssistantTurn())

		if len(reply.ToolCalls) == 0 {
			// Text without a closing call leaves the task open. Nudge once
			// per occurrence; the turn limit bounds how long this can last.
			transcript = append(transcript, models.UserTurn(
				"Close the task with complete_task, or abandon it with skip_task."))
			continue
		}

		results, terminal := d.executeTurn(ctx, task, reply.ToolCalls)
		transcript = append(transcript, models.ResultTurn(results...))
		if terminal {
			return nil
		}
	}

	return ErrSupervisorStalled
}

// executeTurn runs all tool calls from one supervisor turn. Handoffs run
// concurrently; results come back in call order. Returns terminal=true
// once a complete_task or skip_task call has closed the task.
func (d *Dispatcher) executeTurn(ctx context.Context, task *models.ResearchTask, calls []models.ToolCall) (results []models.ToolResult, terminal bool) {
	var handoffs []*Handoff
	parseErrs := make(map[string]error)
	for _, call := range calls {
		if call.Name != api.ToolHandoff {
			continue
		}
		h, err := parseHandoff(call)
		if err != nil {
			parseErrs[call.ID] = err
			continue
		}
		handoffs = append(handoffs, h)
	}

	outcomes := d.fanOut(ctx, handoffs)
	byCall := make(map[string]branchOutcome, len(outcomes))
	for _, o := range outcomes {
		byCall[o.callID] = o
		d.recordTranscript(o.agentName, o.transcript)
	}

	for _, call := range calls {
		r := models.ToolResult{CallID: call.ID, Name: call.Name}
		switch call.Name {
		case api.ToolHandoff:
			if err, ok := parseErrs[call.ID]; ok {
				r.Content = err.Error()
				r.IsError = true
				break
			}
			o := byCall[call.ID]
			if o.err != nil {
				r.Content = o.err.Error()
				r.IsError = true
			} else {
				r.Content = o.summary
			}
		case api.ToolCompleteTask:
			if terminal {
				r.Content = "task already closed"
				r.IsError = true
				break
			}
			task.Status = models.TaskDone
			terminal = true
			r.Content = fmt.Sprintf("task %s marked done", task.ID)
		case api.ToolSkipTask:
			if terminal {
				r.Content = "task already closed"
				r.IsError = true
				break
			}
			task.Status = models.TaskSkipped
			terminal = true
			r.Content = fmt.Sprintf("task %s skipped: %s", task.ID, skipReason(call.Input))
		default:
			r.Content = fmt.Sprintf("unknown tool %q", call.Name)
			r.IsError = true
		}
		results = append(results, r)
	}

	return results, terminal
}

// rosterBlock renders the registered agents for the system prompt.
func (d *Dispatcher) rosterBlock() string {
	var b strings.Builder
	for _, a := range d.registry.Agents() {
		fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Description)
	}
	return b.String()
}

func (d *Dispatcher) recordTranscript(agentName string, transcript []models.Turn) {
	if len(transcript) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.workerTranscripts[agentName] = transcript
}

// WorkerTranscripts returns a copy of each agent's most recent run
// transcript, for checkpointing.
func (d *Dispatcher) WorkerTranscripts() map[string][]models.Turn {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string][]models.Turn, len(d.workerTranscripts))
	for name, tr := range d.workerTranscripts {
		out[name] = models.CloneTranscript(tr)
	}
	return out
}

func (d *Dispatcher) shouldStop() bool {
	return d.signals != nil && d.signals.ShouldStop()
}

func skipReason(input json.RawMessage) string {
	var in struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(input, &in); err != nil || in.Reason == "" {
		return "no reason given"
	}
	return in.Reason
}

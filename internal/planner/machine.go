// Package planner runs the resumable plan-design state machine: the model
// drafts a sectioned research plan, presents it through its single
// executable tool, and the session suspends durably until a human answers
// with approval, cancellation, or revision feedback.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
	"github.com/kubescout/kubescout/internal/state"
	"github.com/kubescout/kubescout/pkg/models"
)

// Phase names recorded in checkpoints.
const (
	PhaseCollecting    = "collecting"
	PhaseAwaitingHuman = "awaiting_human"
	PhaseApproved      = "approved"
	PhaseCancelled     = "cancelled"
)

var (
	// ErrPlannerStalled is returned when the model exhausts its turn budget
	// without presenting a usable plan.
	ErrPlannerStalled = errors.New("planner failed to present a plan")
	// ErrNotSuspended is returned when resuming a session that is not
	// awaiting a human reply.
	ErrNotSuspended = errors.New("session is not awaiting a reply")
	// ErrNoCheckpoint is returned when resuming a session with no saved state.
	ErrNoCheckpoint = errors.New("no checkpoint for session")
	// ErrFeedbackRequired is returned for a revise reply with no feedback.
	ErrFeedbackRequired = errors.New("revision requires feedback")
	// ErrTooManyRevisions is returned when the revision budget is spent.
	ErrTooManyRevisions = errors.New("revision limit reached")
)

// Suspension is the visible half of a suspended planning session: the
// model's message and the candidate plan, awaiting the human's reply.
type Suspension struct {
	SessionID string
	Message   string
	Plan      models.Plan
}

// Outcome is the terminal result of a planning cycle.
type Outcome struct {
	Decision models.ApprovalDecision
	// Plan is the approved plan; nil when cancelled.
	Plan *models.Plan
}

// planStore is the slice of persistence the planner needs.
type planStore interface {
	state.SessionStore
	state.CheckpointStore
}

// Machine drives one session's planning conversation.
type Machine struct {
	caller api.Caller
	store  planStore
	cfg    config.PlannerConfig
	// Catalog describes the research agents and tools available, grounding
	// the plan in capabilities that actually exist.
	Catalog string
}

// NewMachine builds a planning machine.
func NewMachine(caller api.Caller, store planStore, cfg config.PlannerConfig) *Machine {
	return &Machine{caller: caller, store: store, cfg: cfg}
}

const plannerSystemPrompt = `You are a Kubernetes observability research planner. Design a sectioned
research plan for the user's request, grounded strictly in the agents and
tools listed below. Never plan work no listed tool can perform.

%s
Number sections sequentially from 1. Each section needs a title, an
objective naming the capabilities it uses, and a description detailing the
tool, parameters, metrics, and analysis.

You have exactly one executable tool: present_plan_for_feedback. As soon
as you have any version of the plan, call it and stop. Never describe the
plan in plain text instead of calling the tool, and never assume the
user's answer.`

// Start opens a new planning session and runs it to its first suspension.
func (m *Machine) Start(ctx context.Context, sessionID, request string) (*Suspension, error) {
	snap := &state.Snapshot{
		SessionID:  sessionID,
		Phase:      PhaseCollecting,
		Request:    request,
		Transcript: []models.Turn{models.UserTurn(request)},
	}
	return m.collect(ctx, snap, nil)
}

// Resume continues a suspended session with the human's reply. Exactly one
// of the returns is non-nil on success: a new Suspension after a revision
// cycle, or a terminal Outcome.
func (m *Machine) Resume(ctx context.Context, sessionID, answer, feedback string) (*Suspension, *Outcome, error) {
	snap, err := m.store.LoadCheckpoint(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if snap == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoCheckpoint, sessionID)
	}
	if snap.Phase != PhaseAwaitingHuman {
		return nil, nil, fmt.Errorf("%w: session %s is in phase %s", ErrNotSuspended, sessionID, snap.Phase)
	}

	kind, err := ClassifyReply(answer)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case ReplyStart:
		outcome, err := m.finish(snap, models.PlanApproved, feedback)
		return nil, outcome, err
	case ReplyCancel:
		outcome, err := m.finish(snap, models.PlanCancelled, feedback)
		return nil, outcome, err
	default: // ReplyRevise
		if strings.TrimSpace(feedback) == "" {
			return nil, nil, ErrFeedbackRequired
		}
		if m.cfg.MaxRevisions > 0 && snap.Revisions >= m.cfg.MaxRevisions {
			return nil, nil, fmt.Errorf("%w: %d revisions", ErrTooManyRevisions, snap.Revisions)
		}
		snap.Revisions++
		rejected := snap.Plan
		snap.Transcript = append(snap.Transcript, models.ResultTurn(models.ToolResult{
			CallID:  snap.PendingCallID,
			Name:    api.ToolPresentPlan,
			Content: "HUMAN FEEDBACK: " + feedback,
		}))
		snap.Phase = PhaseCollecting
		snap.PendingCallID = ""
		sus, err := m.collect(ctx, snap, rejected)
		return sus, nil, err
	}
}

// collect runs model turns until a valid plan is presented, then suspends.
// rejected, when set, is the plan the human just sent back; presenting it
// again unchanged is refused.
func (m *Machine) collect(ctx context.Context, snap *state.Snapshot, rejected *models.Plan) (*Suspension, error) {
	system := fmt.Sprintf(plannerSystemPrompt, m.Catalog)
	tools := []api.ToolDef{api.PresentPlanTool()}

	maxTurns := m.cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 20
	}

	var lastText string
	for turn := 0; turn < maxTurns; turn++ {
		reply, err := m.caller.Complete(ctx, api.Request{
			System:     system,
			Transcript: snap.Transcript,
			Tools:      tools,
			MaxTokens:  int64(m.cfg.MaxTokens),
		})
		if err != nil {
			return nil, err
		}
		snap.Transcript = append(snap.Transcript, reply.AssistantTurn())
		lastText = reply.Text

		call := findPlanCall(reply.ToolCalls)
		if call == nil {
			snap.Transcript = append(snap.Transcript, models.UserTurn(
				"Present the plan by calling present_plan_for_feedback. Do not describe it in text."))
			continue
		}

		message, plan, err := parsePlanCall(call.Input)
		if err != nil {
			log.Printf("[planner] rejected plan presentation: %v", err)
			snap.Transcript = append(snap.Transcript, models.ResultTurn(models.ToolResult{
				CallID:  call.ID,
				Name:    api.ToolPresentPlan,
				Content: fmt.Sprintf("invalid plan: %v", err),
				IsError: true,
			}))
			continue
		}
		if rejected != nil && plan.Equal(rejected) {
			snap.Transcript = append(snap.Transcript, models.ResultTurn(models.ToolResult{
				CallID:  call.ID,
				Name:    api.ToolPresentPlan,
				Content: "this plan is identical to the one the user sent back; apply the feedback before presenting again",
				IsError: true,
			}))
			continue
		}

		snap.Phase = PhaseAwaitingHuman
		snap.Plan = &plan
		snap.PendingCallID = call.ID
		if err := m.store.SaveCheckpoint(snap); err != nil {
			return nil, err
		}
		if err := m.store.UpdateSessionStatus(snap.SessionID, state.SessionAwaitingApproval); err != nil {
			return nil, err
		}
		return &Suspension{SessionID: snap.SessionID, Message: message, Plan: plan}, nil
	}

	return nil, fmt.Errorf("%w after %d turns; last output: %s", ErrPlannerStalled, maxTurns, lastText)
}

// finish closes the planning cycle with the human's terminal decision. The
// decision and any feedback are folded into the transcript as the pending
// tool call's result so the conversation stays well-formed.
func (m *Machine) finish(snap *state.Snapshot, status models.ApprovalStatus, feedback string) (*Outcome, error) {
	content := strings.ToUpper(string(status))
	if strings.TrimSpace(feedback) != "" {
		content += ": " + feedback
	}
	snap.Transcript = append(snap.Transcript, models.ResultTurn(models.ToolResult{
		CallID:  snap.PendingCallID,
		Name:    api.ToolPresentPlan,
		Content: content,
	}))
	snap.PendingCallID = ""

	outcome := &Outcome{Decision: models.ApprovalDecision{Status: status, Message: feedback}}

	if status == models.PlanApproved {
		snap.Phase = PhaseApproved
		outcome.Plan = snap.Plan
		if err := m.store.SaveCheckpoint(snap); err != nil {
			return nil, err
		}
		if err := m.store.UpdateSessionStatus(snap.SessionID, state.SessionResearching); err != nil {
			return nil, err
		}
		return outcome, nil
	}

	snap.Phase = PhaseCancelled
	if err := m.store.UpdateSessionStatus(snap.SessionID, state.SessionCancelled); err != nil {
		return nil, err
	}
	// A cancelled session has nothing left to resume.
	if err := m.store.DeleteCheckpoint(snap.SessionID); err != nil {
		return nil, err
	}
	return outcome, nil
}

// findPlanCall returns the first present_plan_for_feedback call, if any.
func findPlanCall(calls []models.ToolCall) *models.ToolCall {
	for i := range calls {
		if calls[i].Name == api.ToolPresentPlan {
			return &calls[i]
		}
	}
	return nil
}

// parsePlanCall decodes and validates a present_plan_for_feedback input.
func parsePlanCall(input json.RawMessage) (string, models.Plan, error) {
	var in struct {
		Message string      `json:"message"`
		Plan    models.Plan `json:"plan"`
	}
	if err := json.Unmarshal(input, &in); err != nil {
		return "", models.Plan{}, fmt.Errorf("parse presentation: %w", err)
	}
	if err := in.Plan.Validate(); err != nil {
		return "", models.Plan{}, err
	}
	return in.Message, in.Plan, nil
}

package api

import (
	"context"

	"github.com/kubescout/kubescout/pkg/models"
)

// ToolDef describes a tool offered to the model on a single call.
type ToolDef struct {
	// Name is the tool name the model invokes.
	Name string
	// Description tells the model what the tool does.
	Description string
	// Properties is the JSON schema properties map for the tool input.
	Properties map[string]interface{}
	// Required lists the mandatory input fields.
	Required []string
}

// Request is one model invocation: a system prompt, the conversation so
// far, and the tools available for this turn.
type Request struct {
	System     string
	Transcript []models.Turn
	Tools      []ToolDef
	MaxTokens  int64
}

// Reply is the model's response to a Request.
type Reply struct {
	// Text is the concatenated text output of the turn.
	Text string
	// ToolCalls holds the tool invocations the model requested, in order.
	ToolCalls []models.ToolCall
	// EndTurn is true when the model finished without requesting tools.
	EndTurn bool
}

// Caller is the model invocation service boundary. The orchestration core
// treats it as a potentially retried, potentially slow remote call; the
// production implementation is Client, tests substitute fakes.
type Caller interface {
	Complete(ctx context.Context, req Request) (*Reply, error)
}

// AssistantTurn converts a reply into a transcript turn.
func (r *Reply) AssistantTurn() models.Turn {
	return models.Turn{
		Role:      models.RoleAssistant,
		Text:      r.Text,
		ToolCalls: r.ToolCalls,
	}
}

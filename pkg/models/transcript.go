package models

import "encoding/json"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall is a tool invocation requested by the model in an assistant turn.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult is the outcome of a tool invocation, fed back to the model in
// a user turn. Errors become normal tool results with IsError set so the
// model sees them in its transcript rather than the session crashing.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Turn is one message in a conversation transcript. Transcripts are plain
// data so the entire conversation state can be checkpointed and restored
// across processes.
type Turn struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// UserTurn builds a plain text user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// ResultTurn builds a user turn carrying tool results.
func ResultTurn(results ...ToolResult) Turn {
	return Turn{Role: RoleUser, ToolResults: results}
}

// CloneTranscript returns an independent copy of a transcript. Branches
// spawned from a fork point must not share mutable transcript state, so
// every handoff copies the transcript it inherits.
func CloneTranscript(transcript []Turn) []Turn {
	if transcript == nil {
		return nil
	}
	out := make([]Turn, len(transcript))
	copy(out, transcript)
	return out
}

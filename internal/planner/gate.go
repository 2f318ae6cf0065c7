package planner

import (
	"errors"
	"strings"
)

// ReplyKind is the human's classified answer to a presented plan.
type ReplyKind string

const (
	// ReplyStart approves the plan and starts research.
	ReplyStart ReplyKind = "start"
	// ReplyCancel abandons the session.
	ReplyCancel ReplyKind = "cancel"
	// ReplyRevise sends the plan back with feedback.
	ReplyRevise ReplyKind = "revise"
)

// ErrAmbiguousReply is returned when the human's answer matches none of
// the recognized forms. The gate never guesses: an unclear reply is
// surfaced, not coerced into approval or cancellation.
var ErrAmbiguousReply = errors.New("ambiguous reply: answer with start, cancel, or revise")

var startWords = map[string]bool{
	"start": true, "yes": true, "y": true, "approve": true, "approved": true,
	"go": true, "proceed": true, "ok": true, "lgtm": true,
}

var cancelWords = map[string]bool{
	"cancel": true, "cancelled": true, "no": true, "n": true, "abort": true,
	"stop": true, "reject": true, "rejected": true, "quit": true,
}

var reviseWords = map[string]bool{
	"revise": true, "revision": true, "change": true, "edit": true, "feedback": true,
}

// ClassifyReply deterministically maps the human's answer to a reply kind.
// Matching is case-insensitive on the whole trimmed answer; free-form text
// that is not an exact keyword is ambiguous by definition.
func ClassifyReply(answer string) (ReplyKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	switch {
	case startWords[normalized]:
		return ReplyStart, nil
	case cancelWords[normalized]:
		return ReplyCancel, nil
	case reviseWords[normalized]:
		return ReplyRevise, nil
	default:
		return "", ErrAmbiguousReply
	}
}

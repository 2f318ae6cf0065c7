package planner

import (
	"errors"
	"testing"
)

func TestClassifyReply(t *testing.T) {
	tests := []struct {
		answer string
		want   ReplyKind
	}{
		{"start", ReplyStart},
		{"  Start ", ReplyStart},
		{"YES", ReplyStart},
		{"approve", ReplyStart},
		{"lgtm", ReplyStart},
		{"cancel", ReplyCancel},
		{"no", ReplyCancel},
		{"ABORT", ReplyCancel},
		{"revise", ReplyRevise},
		{"change", ReplyRevise},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, err := ClassifyReply(tt.answer)
			if err != nil {
				t.Fatalf("classify %q: %v", tt.answer, err)
			}
			if got != tt.want {
				t.Errorf("classify %q = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestClassifyReplyAmbiguous(t *testing.T) {
	// Unclear replies are surfaced, never coerced into a decision.
	for _, answer := range []string{
		"",
		"maybe",
		"sounds good but drop section 2",
		"yes please also add node metrics",
	} {
		if _, err := ClassifyReply(answer); !errors.Is(err, ErrAmbiguousReply) {
			t.Errorf("classify %q: expected ErrAmbiguousReply, got %v", answer, err)
		}
	}
}

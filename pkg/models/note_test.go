package models

import (
	"testing"
	"time"
)

func validNote() ObservabilityNote {
	return ObservabilityNote{
		ReportingAgent: "kubernetes-agent",
		Severity:       SeverityWarning,
		Description:    "pod restart loop in namespace monitoring",
		Status:         NoteNew,
		Timestamp:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestNoteValidate(t *testing.T) {
	note := validNote()
	if err := note.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := validNote()
	missing.ReportingAgent = ""
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing reporting agent")
	}

	badSeverity := validNote()
	badSeverity.Severity = "catastrophic"
	if err := badSeverity.Validate(); err == nil {
		t.Error("expected error for unknown severity")
	}

	noDesc := validNote()
	noDesc.Description = ""
	if err := noDesc.Validate(); err == nil {
		t.Error("expected error for empty description")
	}
}

func TestNoteValidateConfidenceRange(t *testing.T) {
	for _, tt := range []struct {
		confidence float64
		wantErr    bool
	}{
		{0, false},
		{0.5, false},
		{1, false},
		{-0.01, true},
		{1.01, true},
	} {
		note := validNote()
		c := tt.confidence
		note.Confidence = &c
		err := note.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("confidence %v: expected error", tt.confidence)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("confidence %v: unexpected error: %v", tt.confidence, err)
		}
	}
}

func TestNoteFingerprint(t *testing.T) {
	a := validNote()
	b := validNote()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical notes must share a fingerprint")
	}

	c := validNote()
	c.Description = "different finding"
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("differing descriptions must produce differing fingerprints")
	}

	d := validNote()
	d.ReportingAgent = "prometheus-agent"
	if a.Fingerprint() == d.Fingerprint() {
		t.Error("differing agents must produce differing fingerprints")
	}
}

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Severity is the severity level of an observability finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	default:
		return false
	}
}

// NoteStatus tracks the handling state of a finding.
type NoteStatus string

const (
	NoteNew          NoteStatus = "new"
	NoteAcknowledged NoteStatus = "acknowledged"
	NoteInProgress   NoteStatus = "in_progress"
	NoteResolved     NoteStatus = "resolved"
)

// Valid returns true if the status is a known value.
func (s NoteStatus) Valid() bool {
	switch s {
	case NoteNew, NoteAcknowledged, NoteInProgress, NoteResolved:
		return true
	default:
		return false
	}
}

// ResourceContext locates a finding within the cluster.
type ResourceContext struct {
	Namespace    string `json:"namespace,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	ResourceName string `json:"resource_name,omitempty"`
}

// MetricContext captures the metric reading behind a finding.
type MetricContext struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Unit      string  `json:"unit,omitempty"`
}

// Classification categorizes a finding for triage.
type Classification struct {
	Category    string `json:"category,omitempty"`
	ImpactLevel string `json:"impact_level,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
}

// ObservabilityNote is a structured finding recorded by a worker agent
// against a research task. The reporting agent name is injected by the
// framework, never supplied by the model, so a worker cannot misattribute
// a finding to another agent. The timestamp is assigned at creation and
// never altered.
type ObservabilityNote struct {
	ReportingAgent  string           `json:"reporting_agent"`
	Severity        Severity         `json:"severity"`
	Description     string           `json:"description"`
	Resource        *ResourceContext `json:"resource,omitempty"`
	Metric          *MetricContext   `json:"metric,omitempty"`
	Classification  *Classification  `json:"classification,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	RootCause       string           `json:"root_cause,omitempty"`
	Status          NoteStatus       `json:"status"`
	Tags            []string         `json:"tags,omitempty"`
	Confidence      *float64         `json:"confidence,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Validate checks the note's invariants: a known severity, a description,
// a reporting agent, and confidence (if present) within [0,1].
func (n *ObservabilityNote) Validate() error {
	if n.ReportingAgent == "" {
		return fmt.Errorf("note has no reporting agent")
	}
	if !n.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", n.Severity)
	}
	if n.Description == "" {
		return fmt.Errorf("note has no description")
	}
	if n.Confidence != nil && (*n.Confidence < 0 || *n.Confidence > 1) {
		return fmt.Errorf("confidence %v outside [0,1]", *n.Confidence)
	}
	if n.Status != "" && !n.Status.Valid() {
		return fmt.Errorf("unknown note status %q", n.Status)
	}
	return nil
}

// Fingerprint returns a stable identity for the note, used to detect
// replayed deliveries of the same finding. Two notes from the same agent
// with the same timestamp and description are the same finding.
func (n *ObservabilityNote) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", n.ReportingAgent, n.Timestamp.UTC().Format(time.RFC3339Nano), n.Description)
	return hex.EncodeToString(h.Sum(nil))
}

// Package worker runs specialized research agents: each worker executes a
// bounded tool-use loop against its connection's tools and records
// structured findings through the aggregator.
package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kubescout/kubescout/pkg/models"
)

// findingInput is the register_finding tool payload. The reporting agent
// is deliberately not part of the schema; it is injected from the worker's
// own registration.
type findingInput struct {
	Severity        string   `json:"severity"`
	Description     string   `json:"description"`
	Namespace       string   `json:"namespace"`
	ResourceType    string   `json:"resource_type"`
	ResourceName    string   `json:"resource_name"`
	Metric          string   `json:"metric"`
	MetricValue     float64  `json:"metric_value"`
	MetricThreshold float64  `json:"metric_threshold"`
	MetricUnit      string   `json:"metric_unit"`
	Category        string   `json:"category"`
	ImpactLevel     string   `json:"impact_level"`
	Urgency         string   `json:"urgency"`
	Recommendations []string `json:"recommendations"`
	RootCause       string   `json:"root_cause"`
	Status          string   `json:"status"`
	Tags            []string `json:"tags"`
	Confidence      *float64 `json:"confidence"`
}

// ParseFinding converts a register_finding tool input into a validated
// ObservabilityNote attributed to agentName. The timestamp is assigned
// here, at acceptance time, and the status defaults to new.
func ParseFinding(agentName string, input json.RawMessage, now time.Time) (*models.ObservabilityNote, error) {
	var in findingInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("parse finding: %w", err)
	}

	note := &models.ObservabilityNote{
		ReportingAgent:  agentName,
		Severity:        models.Severity(in.Severity),
		Description:     in.Description,
		Recommendations: in.Recommendations,
		RootCause:       in.RootCause,
		Status:          models.NoteStatus(in.Status),
		Tags:            in.Tags,
		Confidence:      in.Confidence,
		Timestamp:       now.UTC(),
	}
	if note.Status == "" {
		note.Status = models.NoteNew
	}

	if in.Namespace != "" || in.ResourceType != "" || in.ResourceName != "" {
		note.Resource = &models.ResourceContext{
			Namespace:    in.Namespace,
			ResourceType: in.ResourceType,
			ResourceName: in.ResourceName,
		}
	}
	if in.Metric != "" {
		note.Metric = &models.MetricContext{
			Name:      in.Metric,
			Value:     in.MetricValue,
			Threshold: in.MetricThreshold,
			Unit:      in.MetricUnit,
		}
	}
	if in.Category != "" || in.ImpactLevel != "" || in.Urgency != "" {
		note.Classification = &models.Classification{
			Category:    in.Category,
			ImpactLevel: in.ImpactLevel,
			Urgency:     in.Urgency,
		}
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}
	return note, nil
}

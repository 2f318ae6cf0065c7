// Package models contains the shared data model for kubescout:
// research plans, research tasks, and observability notes.
package models

import (
	"fmt"
	"sort"
)

// PlanSection is one numbered unit of a research plan.
type PlanSection struct {
	// Number orders the section within the plan (1, 2, 3, ...).
	Number int `json:"number"`
	// Title is the section heading.
	Title string `json:"title"`
	// Objective states what the section is meant to establish.
	Objective string `json:"objective"`
	// Description details the tools, metrics, and analysis for the section.
	Description string `json:"description"`
}

// Plan is an ordered sequence of plan sections. A plan is immutable once
// approved; a revision produces a new Plan rather than mutating this one.
type Plan struct {
	Sections []PlanSection `json:"sections"`
}

// Validate checks the structural invariants of the plan: at least one
// section, positive section numbers, and no duplicate numbers.
func (p *Plan) Validate() error {
	if len(p.Sections) == 0 {
		return fmt.Errorf("plan has no sections")
	}

	seen := make(map[int]bool, len(p.Sections))
	for _, s := range p.Sections {
		if s.Number <= 0 {
			return fmt.Errorf("section %q: number must be positive, got %d", s.Title, s.Number)
		}
		if seen[s.Number] {
			return fmt.Errorf("duplicate section number %d", s.Number)
		}
		seen[s.Number] = true
	}

	return nil
}

// Sorted returns the sections in ascending number order without mutating
// the plan.
func (p *Plan) Sorted() []PlanSection {
	sections := make([]PlanSection, len(p.Sections))
	copy(sections, p.Sections)
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Number < sections[j].Number
	})
	return sections
}

// Equal reports whether two plans have identical sections in identical order.
func (p *Plan) Equal(other *Plan) bool {
	if other == nil || len(p.Sections) != len(other.Sections) {
		return false
	}
	for i, s := range p.Sections {
		if s != other.Sections[i] {
			return false
		}
	}
	return true
}

// ApprovalStatus is the terminal outcome of a planning cycle.
type ApprovalStatus string

const (
	// PlanApproved indicates the human accepted the plan.
	PlanApproved ApprovalStatus = "approved"
	// PlanCancelled indicates the human cancelled the research.
	PlanCancelled ApprovalStatus = "cancelled"
)

// ApprovalDecision is the classified outcome of the human's reply to a
// proposed plan. Produced once per planning cycle; terminal for that cycle.
type ApprovalDecision struct {
	Status  ApprovalStatus `json:"status"`
	Message string         `json:"message"`
}

// Approved reports whether the decision accepts the plan.
func (d ApprovalDecision) Approved() bool {
	return d.Status == PlanApproved
}

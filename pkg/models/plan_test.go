package models

import "testing"

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr bool
	}{
		{
			name: "valid ascending sections",
			plan: Plan{Sections: []PlanSection{
				{Number: 1, Title: "Nodes"},
				{Number: 2, Title: "Pods"},
				{Number: 3, Title: "Network"},
			}},
		},
		{
			name: "valid non-contiguous numbering",
			plan: Plan{Sections: []PlanSection{
				{Number: 1, Title: "Nodes"},
				{Number: 5, Title: "Pods"},
			}},
		},
		{
			name: "duplicate section number",
			plan: Plan{Sections: []PlanSection{
				{Number: 1, Title: "Nodes"},
				{Number: 1, Title: "Pods"},
			}},
			wantErr: true,
		},
		{
			name:    "zero section number",
			plan:    Plan{Sections: []PlanSection{{Number: 0, Title: "Nodes"}}},
			wantErr: true,
		},
		{
			name:    "empty plan",
			plan:    Plan{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPlanSorted(t *testing.T) {
	plan := Plan{Sections: []PlanSection{
		{Number: 3, Title: "Network"},
		{Number: 1, Title: "Nodes"},
		{Number: 2, Title: "Pods"},
	}}

	sorted := plan.Sorted()
	for i, want := range []int{1, 2, 3} {
		if sorted[i].Number != want {
			t.Errorf("sorted[%d].Number = %d, want %d", i, sorted[i].Number, want)
		}
	}

	// Original order must not change.
	if plan.Sections[0].Number != 3 {
		t.Error("Sorted mutated the plan")
	}
}

func TestPlanEqual(t *testing.T) {
	a := &Plan{Sections: []PlanSection{{Number: 1, Title: "Nodes", Objective: "o", Description: "d"}}}
	b := &Plan{Sections: []PlanSection{{Number: 1, Title: "Nodes", Objective: "o", Description: "d"}}}
	c := &Plan{Sections: []PlanSection{{Number: 1, Title: "Pods", Objective: "o", Description: "d"}}}

	if !a.Equal(b) {
		t.Error("expected identical plans to be equal")
	}
	if a.Equal(c) {
		t.Error("expected differing plans to be unequal")
	}
	if a.Equal(nil) {
		t.Error("expected plan not to equal nil")
	}
}

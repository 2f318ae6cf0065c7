package api

import "testing"

func TestRegisterFindingToolOmitsAgentName(t *testing.T) {
	def := RegisterFindingTool()

	if _, ok := def.Properties["agent_name"]; ok {
		t.Error("register_finding schema must not expose agent_name; the framework injects it")
	}
	if _, ok := def.Properties["severity"]; !ok {
		t.Error("expected severity property")
	}
	if _, ok := def.Properties["description"]; !ok {
		t.Error("expected description property")
	}
}

func TestHandoffToolRestrictsAgents(t *testing.T) {
	def := HandoffTool([]string{"kubernetes-agent", "prometheus-agent"})

	prop, ok := def.Properties["agent_name"].(map[string]interface{})
	if !ok {
		t.Fatal("expected agent_name property")
	}
	enum, ok := prop["enum"].([]string)
	if !ok || len(enum) != 2 {
		t.Fatalf("expected enum of 2 agent names, got %v", prop["enum"])
	}
}

func TestPresentPlanToolShape(t *testing.T) {
	def := PresentPlanTool()

	if def.Name != ToolPresentPlan {
		t.Errorf("unexpected tool name %q", def.Name)
	}
	for _, field := range []string{"message", "plan"} {
		if _, ok := def.Properties[field]; !ok {
			t.Errorf("expected %s property", field)
		}
	}
	if len(def.Required) != 2 {
		t.Errorf("expected message and plan to be required, got %v", def.Required)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAgentsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write agents file: %v", err)
	}
	return path
}

func TestLoadAgents(t *testing.T) {
	path := writeAgentsFile(t, `
agents:
  - id: k8s
    name: kubernetes_researcher
    description: Inspects workloads
    objective: Investigate cluster state
    connection:
      id: k8s-conn
      kind: static
  - id: prom
    name: prometheus_researcher
    description: Queries metrics
    objective: Investigate metrics
    connection:
      id: prom-conn
      kind: http
      url: http://prometheus.example:9090/mcp
      headers:
        Authorization: Bearer abc
`)

	agents, err := LoadAgents(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	if agents[0].Name != "kubernetes_researcher" {
		t.Errorf("unexpected first agent %q", agents[0].Name)
	}
	if agents[1].Connection.URL != "http://prometheus.example:9090/mcp" {
		t.Errorf("unexpected connection url %q", agents[1].Connection.URL)
	}
	if agents[1].Connection.Headers["Authorization"] != "Bearer abc" {
		t.Error("headers not preserved")
	}
}

func TestLoadAgentsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			"empty roster",
			"agents: []",
			"no agents",
		},
		{
			"missing objective",
			`
agents:
  - id: a
    name: agent_a
    description: d
    connection:
      kind: static
`,
			"missing objective",
		},
		{
			"http without url",
			`
agents:
  - id: a
    name: agent_a
    description: d
    objective: o
    connection:
      kind: http
`,
			"requires url",
		},
		{
			"unknown kind",
			`
agents:
  - id: a
    name: agent_a
    description: d
    objective: o
    connection:
      kind: carrier_pigeon
`,
			"unknown connection kind",
		},
		{
			"duplicate names",
			`
agents:
  - id: a
    name: agent_a
    description: d
    objective: o
    connection:
      kind: static
  - id: b
    name: agent_a
    description: d
    objective: o
    connection:
      kind: static
`,
			"duplicate agent name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeAgentsFile(t, tt.content)
			_, err := LoadAgents(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestDefaultAgentsValid(t *testing.T) {
	agents := DefaultAgents()
	if len(agents) == 0 {
		t.Fatal("expected built-in roster")
	}
	for _, a := range agents {
		if err := a.Validate(); err != nil {
			t.Errorf("built-in agent %s invalid: %v", a.ID, err)
		}
	}
}

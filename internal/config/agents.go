package config

import (
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// ConnectionConfig describes the tool backend an agent researches through.
type ConnectionConfig struct {
	// ID identifies the connection within the roster.
	ID string `yaml:"id"`
	// Kind selects the tool source implementation ("static" or "http").
	Kind string `yaml:"kind"`
	// URL is the backend endpoint for http connections.
	URL string `yaml:"url,omitempty"`
	// Headers are extra request headers for http connections.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// AgentConfig describes one worker agent in the research roster.
type AgentConfig struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Objective   string           `yaml:"objective"`
	Connection  ConnectionConfig `yaml:"connection"`
}

// Validate checks that the agent definition is usable.
func (a *AgentConfig) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("agent missing id")
	}
	if a.Name == "" {
		return fmt.Errorf("agent %s: missing name", a.ID)
	}
	if a.Objective == "" {
		return fmt.Errorf("agent %s: missing objective", a.ID)
	}
	switch a.Connection.Kind {
	case "static":
	case "http":
		if a.Connection.URL == "" {
			return fmt.Errorf("agent %s: http connection requires url", a.ID)
		}
	case "":
		return fmt.Errorf("agent %s: missing connection kind", a.ID)
	default:
		return fmt.Errorf("agent %s: unknown connection kind %q", a.ID, a.Connection.Kind)
	}
	return nil
}

// agentsFile is the on-disk roster layout.
type agentsFile struct {
	Agents []AgentConfig `yaml:"agents"`
}

// LoadAgents reads a worker agent roster from a YAML file. Every entry
// must validate; a single bad entry fails the whole load so a typo never
// silently shrinks the roster.
func LoadAgents(path string) ([]AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}

	var f agentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agents file %s: %w", path, err)
	}
	if len(f.Agents) == 0 {
		return nil, fmt.Errorf("agents file %s: no agents defined", path)
	}

	seen := make(map[string]bool)
	for i := range f.Agents {
		a := &f.Agents[i]
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate agent name %q", a.Name)
		}
		seen[a.Name] = true
	}

	return f.Agents, nil
}

// DefaultAgents returns the built-in roster used when no agents file is
// configured. Both agents run against the in-process static tool source.
func DefaultAgents() []AgentConfig {
	return []AgentConfig{
		{
			ID:          "k8s-researcher",
			Name:        "kubernetes_researcher",
			Description: "Inspects Kubernetes workloads, nodes, and events",
			Objective:   "Investigate Kubernetes cluster state relevant to the assigned task and record every noteworthy finding.",
			Connection:  ConnectionConfig{ID: "k8s-static", Kind: "static"},
		},
		{
			ID:          "prom-researcher",
			Name:        "prometheus_researcher",
			Description: "Queries Prometheus metrics and alerting state",
			Objective:   "Investigate metrics and alerts relevant to the assigned task and record every noteworthy finding.",
			Connection:  ConnectionConfig{ID: "prom-static", Kind: "static"},
		},
	}
}

// Package supervisor dispatches research tasks: for each pending task it
// runs a supervisor model loop that delegates sub-tasks to registered
// worker agents, fans parallel handoffs out across goroutines, and retires
// the task when the supervisor calls complete or skip.
package supervisor

import (
	"fmt"
	"log"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
	"github.com/kubescout/kubescout/internal/toolconn"
	"github.com/kubescout/kubescout/internal/worker"
)

// Registry holds the worker agents available for handoff, in roster order.
type Registry struct {
	workers  map[string]*worker.Worker
	order    []string
	agents   []config.AgentConfig
	failures map[string]error
}

// BuildRegistry resolves every agent's connection and binds the usable ones
// to workers. Agents whose connections fail to resolve are recorded but
// excluded; the registry is still usable as long as one agent resolved.
func BuildRegistry(agents []config.AgentConfig, caller api.Caller, agg *worker.Aggregator, cfg config.ResearchConfig) (*Registry, error) {
	sources, failures := toolconn.ResolveAll(agents)
	for name, err := range failures {
		log.Printf("[supervisor] agent %s excluded: %v", name, err)
	}

	r := &Registry{
		workers:  make(map[string]*worker.Worker),
		failures: failures,
	}
	for _, a := range agents {
		src, ok := sources[a.Name]
		if !ok {
			continue
		}
		r.workers[a.Name] = &worker.Worker{
			Agent:      a,
			Source:     src,
			Caller:     caller,
			Aggregator: agg,
			MaxTurns:   cfg.MaxWorkerTurns,
			MaxTokens:  cfg.MaxTokens,
		}
		r.order = append(r.order, a.Name)
		r.agents = append(r.agents, a)
	}

	if len(r.workers) == 0 {
		return nil, fmt.Errorf("no worker agents available: all %d connections failed", len(agents))
	}
	return r, nil
}

// Get returns the worker registered under name, or nil.
func (r *Registry) Get(name string) *worker.Worker {
	return r.workers[name]
}

// Names returns the registered agent names in roster order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Agents returns the configs of the registered agents in roster order.
func (r *Registry) Agents() []config.AgentConfig {
	out := make([]config.AgentConfig, len(r.agents))
	copy(out, r.agents)
	return out
}

// Failures returns the agents excluded at registration, keyed by name.
func (r *Registry) Failures() map[string]error {
	return r.failures
}

// Package toolconn resolves worker agent connections into tool sources:
// the tool schemas an agent offers its model and the invoker that executes
// them. Connections are resolved up front so a broken backend surfaces at
// registration time, not mid-research.
package toolconn

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
)

// Source exposes the tools behind one agent connection.
type Source interface {
	// ID returns the connection identifier.
	ID() string
	// Tools lists the tool schemas the connection offers.
	Tools(ctx context.Context) ([]api.ToolDef, error)
	// Invoke executes a named tool and returns its textual output.
	Invoke(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// ErrUnknownTool is wrapped by sources when asked to invoke a tool they
// do not offer.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// Resolve builds a Source for a single connection descriptor.
func Resolve(conn config.ConnectionConfig) (Source, error) {
	switch conn.Kind {
	case "static":
		return NewStaticSource(conn.ID), nil
	case "http":
		return NewHTTPSource(conn)
	default:
		return nil, fmt.Errorf("connection %s: unsupported kind %q", conn.ID, conn.Kind)
	}
}

// ResolveAll resolves every agent's connection. Failures are collected per
// agent name rather than aborting the whole roster, so one unreachable
// backend still leaves the remaining agents usable.
func ResolveAll(agents []config.AgentConfig) (map[string]Source, map[string]error) {
	sources := make(map[string]Source)
	failures := make(map[string]error)
	for _, a := range agents {
		src, err := Resolve(a.Connection)
		if err != nil {
			failures[a.Name] = err
			continue
		}
		sources[a.Name] = src
	}
	return sources, failures
}

// Catalog renders a human-readable inventory of every agent and its tools,
// used to ground the planner in the capabilities actually available.
func Catalog(ctx context.Context, agents []config.AgentConfig, sources map[string]Source) string {
	var b strings.Builder
	for _, a := range agents {
		fmt.Fprintf(&b, "Agent: %s\n", a.Name)
		fmt.Fprintf(&b, "  Description: %s\n", a.Description)

		src, ok := sources[a.Name]
		if !ok {
			b.WriteString("  Tools: (connection unavailable)\n")
			continue
		}
		tools, err := src.Tools(ctx)
		if err != nil {
			b.WriteString("  Tools: (listing failed)\n")
			continue
		}
		for _, t := range tools {
			fmt.Fprintf(&b, "  - %s: %s\n", t.Name, t.Description)
		}
	}
	return b.String()
}

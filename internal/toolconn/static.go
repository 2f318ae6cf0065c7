package toolconn

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kubescout/kubescout/internal/api"
)

// staticTool pairs a tool schema with a canned handler. Static sources run
// fully in-process and exist for demos and offline runs where no live
// cluster or metrics backend is reachable.
type staticTool struct {
	def     api.ToolDef
	handler func(input json.RawMessage) (string, error)
}

// StaticSource serves a fixed in-process tool set.
type StaticSource struct {
	id    string
	tools []staticTool
}

// NewStaticSource returns the built-in tool set for a connection ID.
// IDs containing "k8s" get the Kubernetes set, IDs containing "prom" get
// the Prometheus set, anything else gets both.
func NewStaticSource(id string) *StaticSource {
	var tools []staticTool
	switch {
	case strings.Contains(id, "k8s"):
		tools = kubernetesTools()
	case strings.Contains(id, "prom"):
		tools = prometheusTools()
	default:
		tools = append(kubernetesTools(), prometheusTools()...)
	}
	return &StaticSource{id: id, tools: tools}
}

func (s *StaticSource) ID() string { return s.id }

func (s *StaticSource) Tools(ctx context.Context) ([]api.ToolDef, error) {
	defs := make([]api.ToolDef, len(s.tools))
	for i, t := range s.tools {
		defs[i] = t.def
	}
	return defs, nil
}

func (s *StaticSource) Invoke(ctx context.Context, name string, input json.RawMessage) (string, error) {
	for _, t := range s.tools {
		if t.def.Name == name {
			return t.handler(input)
		}
	}
	return "", fmt.Errorf("connection %s: %w: %s", s.id, ErrUnknownTool, name)
}

func kubernetesTools() []staticTool {
	return []staticTool{
		{
			def: api.ToolDef{
				Name:        "list_pods",
				Description: "List pods in a namespace with phase and restart counts",
				Properties: map[string]interface{}{
					"namespace": map[string]interface{}{"type": "string", "description": "Namespace to inspect, empty for all"},
				},
			},
			handler: func(input json.RawMessage) (string, error) {
				return `[{"name":"api-server-7d9f","namespace":"default","phase":"Running","restarts":0},` +
					`{"name":"worker-5c2a","namespace":"default","phase":"Running","restarts":3},` +
					`{"name":"cache-warmup-x8k1","namespace":"jobs","phase":"CrashLoopBackOff","restarts":17}]`, nil
			},
		},
		{
			def: api.ToolDef{
				Name:        "get_pod_logs",
				Description: "Fetch recent log lines for a pod",
				Properties: map[string]interface{}{
					"namespace": map[string]interface{}{"type": "string"},
					"pod":       map[string]interface{}{"type": "string"},
				},
				Required: []string{"pod"},
			},
			handler: func(input json.RawMessage) (string, error) {
				var args struct {
					Pod string `json:"pod"`
				}
				if err := json.Unmarshal(input, &args); err != nil || args.Pod == "" {
					return "", fmt.Errorf("get_pod_logs: pod is required")
				}
				return fmt.Sprintf("%s: OOMKilled previous container, exit code 137\n%s: readiness probe failed: connection refused", args.Pod, args.Pod), nil
			},
		},
		{
			def: api.ToolDef{
				Name:        "list_nodes",
				Description: "List cluster nodes with allocatable capacity and conditions",
				Properties:  map[string]interface{}{},
			},
			handler: func(input json.RawMessage) (string, error) {
				return `[{"name":"node-a","ready":true,"cpu_allocatable":"7500m","memory_pressure":false},` +
					`{"name":"node-b","ready":true,"cpu_allocatable":"7500m","memory_pressure":true}]`, nil
			},
		},
		{
			def: api.ToolDef{
				Name:        "get_events",
				Description: "List recent warning events in a namespace",
				Properties: map[string]interface{}{
					"namespace": map[string]interface{}{"type": "string"},
				},
			},
			handler: func(input json.RawMessage) (string, error) {
				return `[{"reason":"BackOff","object":"pod/cache-warmup-x8k1","count":42,"message":"restarting failed container"},` +
					`{"reason":"FailedScheduling","object":"pod/batch-9q","count":3,"message":"insufficient memory"}]`, nil
			},
		},
	}
}

func prometheusTools() []staticTool {
	return []staticTool{
		{
			def: api.ToolDef{
				Name:        "query_metric",
				Description: "Evaluate an instant PromQL query",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{"type": "string", "description": "PromQL expression"},
				},
				Required: []string{"query"},
			},
			handler: func(input json.RawMessage) (string, error) {
				var args struct {
					Query string `json:"query"`
				}
				if err := json.Unmarshal(input, &args); err != nil || args.Query == "" {
					return "", fmt.Errorf("query_metric: query is required")
				}
				return fmt.Sprintf(`{"query":%q,"result":[{"labels":{"pod":"worker-5c2a"},"value":87.4},{"labels":{"pod":"api-server-7d9f"},"value":42.1}]}`, args.Query), nil
			},
		},
		{
			def: api.ToolDef{
				Name:        "query_metric_range",
				Description: "Evaluate a ranged PromQL query over the last hour",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{"type": "string"},
					"step":  map[string]interface{}{"type": "string", "description": "Resolution step, e.g. 5m"},
				},
				Required: []string{"query"},
			},
			handler: func(input json.RawMessage) (string, error) {
				return `{"result":[{"labels":{"pod":"worker-5c2a"},"values":[[0,61.0],[300,74.2],[600,87.4]]}]}`, nil
			},
		},
		{
			def: api.ToolDef{
				Name:        "list_alerts",
				Description: "List currently firing Prometheus alerts",
				Properties:  map[string]interface{}{},
			},
			handler: func(input json.RawMessage) (string, error) {
				return `[{"name":"HighMemoryUsage","state":"firing","labels":{"pod":"worker-5c2a","severity":"warning"},"active_since":"2026-08-31T09:14:00Z"}]`, nil
			},
		},
	}
}

package toolconn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
)

// HTTPSource serves tools from a remote tool server speaking a small
// JSON-RPC dialect: "tools/list" returns the schemas, "tools/call"
// executes one.
type HTTPSource struct {
	id      string
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPSource builds a source for an http connection descriptor.
func NewHTTPSource(conn config.ConnectionConfig) (*HTTPSource, error) {
	if conn.URL == "" {
		return nil, fmt.Errorf("connection %s: url is required", conn.ID)
	}
	return &HTTPSource{
		id:      conn.ID,
		url:     conn.URL,
		headers: conn.Headers,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (h *HTTPSource) ID() string { return h.id }

type rpcRequest struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type rpcToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

func (h *HTTPSource) Tools(ctx context.Context) ([]api.ToolDef, error) {
	var result struct {
		Tools []rpcToolSchema `json:"tools"`
	}
	if err := h.call(ctx, rpcRequest{Method: "tools/list"}, &result); err != nil {
		return nil, fmt.Errorf("connection %s: list tools: %w", h.id, err)
	}

	defs := make([]api.ToolDef, 0, len(result.Tools))
	for _, t := range result.Tools {
		def := api.ToolDef{Name: t.Name, Description: t.Description}
		if len(t.InputSchema) > 0 {
			var schema struct {
				Properties map[string]interface{} `json:"properties"`
				Required   []string               `json:"required"`
			}
			if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
				return nil, fmt.Errorf("connection %s: tool %s schema: %w", h.id, t.Name, err)
			}
			def.Properties = schema.Properties
			def.Required = schema.Required
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (h *HTTPSource) Invoke(ctx context.Context, name string, input json.RawMessage) (string, error) {
	req := rpcRequest{
		Method: "tools/call",
		Params: map[string]interface{}{
			"name":      name,
			"arguments": input,
		},
	}
	var result struct {
		Content string `json:"content"`
		IsError bool   `json:"is_error"`
	}
	if err := h.call(ctx, req, &result); err != nil {
		return "", fmt.Errorf("connection %s: call %s: %w", h.id, name, err)
	}
	if result.IsError {
		return "", fmt.Errorf("connection %s: tool %s failed: %s", h.id, name, result.Content)
	}
	return result.Content, nil
}

func (h *HTTPSource) call(ctx context.Context, req rpcRequest, out interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Source = (*StaticSource)(nil)
var _ Source = (*HTTPSource)(nil)

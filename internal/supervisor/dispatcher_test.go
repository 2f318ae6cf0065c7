package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
	"github.com/kubescout/kubescout/internal/worker"
	"github.com/kubescout/kubescout/pkg/models"
)

// scriptedCaller returns canned replies in sequence, safely across goroutines.
type scriptedCaller struct {
	mu       sync.Mutex
	replies  []*api.Reply
	requests []api.Request
}

func (c *scriptedCaller) Complete(ctx context.Context, req api.Request) (*api.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

// echoWorkerCaller drives any worker run through one register_finding call
// and then a summary. Stateless per request, so concurrent branches are safe.
type echoWorkerCaller struct{}

func (echoWorkerCaller) Complete(ctx context.Context, req api.Request) (*api.Reply, error) {
	last := req.Transcript[len(req.Transcript)-1]
	if len(last.ToolResults) > 0 {
		return &api.Reply{Text: "investigation summary for: " + req.Transcript[0].Text, EndTurn: true}, nil
	}
	input := fmt.Sprintf(`{"severity":"info","description":"observed while handling: %s"}`, req.Transcript[0].Text)
	return &api.Reply{ToolCalls: []models.ToolCall{
		{ID: "wf-1", Name: api.ToolRegisterFinding, Input: json.RawMessage(input)},
	}}, nil
}

func testAgents() []config.AgentConfig {
	return []config.AgentConfig{
		{ID: "k8s", Name: "kubernetes_researcher", Description: "workloads", Objective: "o",
			Connection: config.ConnectionConfig{ID: "k8s-static", Kind: "static"}},
		{ID: "prom", Name: "prometheus_researcher", Description: "metrics", Objective: "o",
			Connection: config.ConnectionConfig{ID: "prom-static", Kind: "static"}},
	}
}

func testQueues(sections ...int) *models.TaskQueues {
	q := &models.TaskQueues{}
	for _, n := range sections {
		q.Pending = append(q.Pending, models.NewResearchTask(models.PlanSection{
			Number: n, Title: fmt.Sprintf("Section %d", n), Objective: "obj", Description: "desc",
		}))
	}
	return q
}

func buildTestDispatcher(t *testing.T, supervisorCaller api.Caller) (*Dispatcher, *worker.Aggregator) {
	t.Helper()
	agg := worker.NewAggregator()
	cfg := config.ResearchConfig{MaxSupervisorTurns: 10, MaxWorkerTurns: 5}
	reg, err := BuildRegistry(testAgents(), echoWorkerCaller{}, agg, cfg)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return NewDispatcher(supervisorCaller, reg, agg, nil, cfg), agg
}

func handoffCall(id, agent, instruction string) models.ToolCall {
	input, _ := json.Marshal(map[string]string{"agent_name": agent, "instruction": instruction})
	return models.ToolCall{ID: id, Name: api.ToolHandoff, Input: input}
}

func completeCall(id string) models.ToolCall {
	return models.ToolCall{ID: id, Name: api.ToolCompleteTask, Input: json.RawMessage(`{"summary":"covered"}`)}
}

func TestDispatcherParallelFanOut(t *testing.T) {
	sup := &scriptedCaller{replies: []*api.Reply{
		{ToolCalls: []models.ToolCall{
			handoffCall("h1", "kubernetes_researcher", "inspect pods"),
			handoffCall("h2", "prometheus_researcher", "check memory metrics"),
		}},
		{ToolCalls: []models.ToolCall{completeCall("c1")}},
	}}
	d, agg := buildTestDispatcher(t, sup)

	queues := testQueues(1)
	if err := d.RunQueue(context.Background(), queues); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !queues.Empty() || len(queues.Completed) != 1 {
		t.Fatal("task not retired")
	}
	task := queues.Completed[0]
	if task.Status != models.TaskDone {
		t.Errorf("expected done, got %q", task.Status)
	}
	// One finding per branch, attached to the task.
	if len(task.Notes) != 2 {
		t.Errorf("expected 2 notes on task, got %d", len(task.Notes))
	}
	if agg.Count() != 2 {
		t.Errorf("expected 2 aggregated notes, got %d", agg.Count())
	}

	// Branch results return in call order.
	resultTurn := sup.requests[1].Transcript[2]
	if len(resultTurn.ToolResults) != 2 {
		t.Fatalf("expected 2 tool results, got %d", len(resultTurn.ToolResults))
	}
	if resultTurn.ToolResults[0].CallID != "h1" || resultTurn.ToolResults[1].CallID != "h2" {
		t.Error("results not in call order")
	}
	for _, r := range resultTurn.ToolResults {
		if r.IsError {
			t.Errorf("unexpected error result: %s", r.Content)
		}
	}

	// Each branch transcript was captured for checkpointing.
	trs := d.WorkerTranscripts()
	if len(trs) != 2 {
		t.Errorf("expected 2 worker transcripts, got %d", len(trs))
	}
}

func TestDispatcherUnknownAgentHandoff(t *testing.T) {
	sup := &scriptedCaller{replies: []*api.Reply{
		{ToolCalls: []models.ToolCall{handoffCall("h1", "ghost_agent", "do something")}},
		{ToolCalls: []models.ToolCall{completeCall("c1")}},
	}}
	d, _ := buildTestDispatcher(t, sup)

	queues := testQueues(1)
	if err := d.RunQueue(context.Background(), queues); err != nil {
		t.Fatalf("run: %v", err)
	}

	resultTurn := sup.requests[1].Transcript[2]
	if !resultTurn.ToolResults[0].IsError {
		t.Error("handoff to unknown agent should be an error result")
	}
	if queues.Completed[0].Status != models.TaskDone {
		t.Error("dispatch should continue after a failed handoff")
	}
}

func TestDispatcherSkipTask(t *testing.T) {
	sup := &scriptedCaller{replies: []*api.Reply{
		{ToolCalls: []models.ToolCall{
			{ID: "s1", Name: api.ToolSkipTask, Input: json.RawMessage(`{"reason":"no agent covers networking"}`)},
		}},
	}}
	d, _ := buildTestDispatcher(t, sup)

	queues := testQueues(1)
	if err := d.RunQueue(context.Background(), queues); err != nil {
		t.Fatalf("run: %v", err)
	}
	if queues.Completed[0].Status != models.TaskSkipped {
		t.Errorf("expected skipped, got %q", queues.Completed[0].Status)
	}
}

func TestDispatcherStrictQueueOrder(t *testing.T) {
	sup := &scriptedCaller{replies: []*api.Reply{
		{ToolCalls: []models.ToolCall{completeCall("c1")}},
		{ToolCalls: []models.ToolCall{completeCall("c2")}},
		{ToolCalls: []models.ToolCall{completeCall("c3")}},
	}}
	d, _ := buildTestDispatcher(t, sup)

	queues := testQueues(1, 2, 3)
	if err := d.RunQueue(context.Background(), queues); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(queues.Completed) != 3 {
		t.Fatalf("expected 3 completed, got %d", len(queues.Completed))
	}
	for i, task := range queues.Completed {
		want := fmt.Sprintf("task_%d", i+1)
		if task.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, task.ID)
		}
	}
}

func TestDispatcherCheckpointAfterEachTask(t *testing.T) {
	sup := &scriptedCaller{replies: []*api.Reply{
		{ToolCalls: []models.ToolCall{completeCall("c1")}},
		{ToolCalls: []models.ToolCall{completeCall("c2")}},
	}}
	d, _ := buildTestDispatcher(t, sup)

	var checkpoints []int
	d.Checkpoint = func(q *models.TaskQueues, _ map[string][]models.Turn) error {
		checkpoints = append(checkpoints, len(q.Completed))
		return nil
	}

	if err := d.RunQueue(context.Background(), testQueues(1, 2)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(checkpoints) != 2 || checkpoints[0] != 1 || checkpoints[1] != 2 {
		t.Errorf("unexpected checkpoint sequence %v", checkpoints)
	}
}

func TestDispatcherSupervisorStalled(t *testing.T) {
	// The supervisor chatters without ever closing the task.
	replies := make([]*api.Reply, 20)
	for i := range replies {
		replies[i] = &api.Reply{Text: "still thinking", EndTurn: true}
	}
	sup := &scriptedCaller{replies: replies}
	d, _ := buildTestDispatcher(t, sup)

	err := d.RunQueue(context.Background(), testQueues(1))
	if !errors.Is(err, ErrSupervisorStalled) {
		t.Errorf("expected ErrSupervisorStalled, got %v", err)
	}
}

func TestDispatcherStopSignal(t *testing.T) {
	sup := &scriptedCaller{replies: []*api.Reply{
		{ToolCalls: []models.ToolCall{completeCall("c1")}},
	}}
	agg := worker.NewAggregator()
	cfg := config.ResearchConfig{MaxSupervisorTurns: 10, MaxWorkerTurns: 5}
	reg, err := BuildRegistry(testAgents(), echoWorkerCaller{}, agg, cfg)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	sw, err := api.NewSignalWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer sw.Close()
	d := NewDispatcher(sup, reg, agg, sw, cfg)

	// First task completes; the signal lands before the second is picked up.
	queues := testQueues(1, 2)
	d.Checkpoint = func(q *models.TaskQueues, _ map[string][]models.Turn) error {
		if err := sw.RequestStop(); err != nil {
			return err
		}
		// The fsnotify event is asynchronous; wait until it lands.
		deadline := time.Now().Add(2 * time.Second)
		for !sw.ShouldStop() {
			if time.Now().After(deadline) {
				return errors.New("stop signal never observed")
			}
			time.Sleep(10 * time.Millisecond)
		}
		return nil
	}

	runErr := d.RunQueue(context.Background(), queues)
	if !errors.Is(runErr, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", runErr)
	}
	if len(queues.Completed) != 1 {
		t.Errorf("expected 1 task completed before stop, got %d", len(queues.Completed))
	}
}

func TestBuildRegistryPartial(t *testing.T) {
	agents := append(testAgents(), config.AgentConfig{
		ID: "bad", Name: "broken_agent", Description: "d", Objective: "o",
		Connection: config.ConnectionConfig{ID: "x", Kind: "http"},
	})

	reg, err := BuildRegistry(agents, echoWorkerCaller{}, worker.NewAggregator(), config.ResearchConfig{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(reg.Names()) != 2 {
		t.Errorf("expected 2 usable agents, got %v", reg.Names())
	}
	if _, ok := reg.Failures()["broken_agent"]; !ok {
		t.Error("expected broken_agent in failures")
	}
	if reg.Get("broken_agent") != nil {
		t.Error("broken agent should not be registered")
	}
}

func TestBuildRegistryAllFailed(t *testing.T) {
	agents := []config.AgentConfig{{
		ID: "bad", Name: "broken_agent", Description: "d", Objective: "o",
		Connection: config.ConnectionConfig{ID: "x", Kind: "http"},
	}}
	if _, err := BuildRegistry(agents, echoWorkerCaller{}, worker.NewAggregator(), config.ResearchConfig{}); err == nil {
		t.Error("expected error when no agent resolves")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/planner"
	"github.com/kubescout/kubescout/internal/state"
	"github.com/kubescout/kubescout/internal/supervisor"
	"github.com/kubescout/kubescout/internal/tui"
	"github.com/kubescout/kubescout/internal/worker"
	"github.com/kubescout/kubescout/pkg/models"
)

var researchCmd = &cobra.Command{
	Use:   "research <request>",
	Short: "Plan and run a research session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResearch(cmd.Context(), strings.Join(args, " "))
	},
}

func runResearch(ctx context.Context, request string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	sessionID := "sess-" + uuid.New().String()[:8]
	now := time.Now()
	if err := rt.db.CreateSession(&state.Session{
		ID: sessionID, Request: request, Status: state.SessionPlanning,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		return err
	}
	fmt.Printf("session %s\n", sessionID)

	m := planner.NewMachine(rt.client, rt.db, rt.cfg.Planner)
	m.Catalog = rt.catalog(ctx)

	sus, err := m.Start(ctx, sessionID, request)
	if err != nil {
		rt.db.UpdateSessionStatus(sessionID, state.SessionFailed)
		return err
	}

	outcome, err := approvalLoop(ctx, m, sus)
	if err != nil {
		return err
	}
	if !outcome.Decision.Approved() {
		color.Yellow("Research cancelled.")
		return nil
	}

	queues, err := planner.BuildQueues(outcome.Plan)
	if err != nil {
		return err
	}
	if err := saveResearchSnapshot(rt.db, sessionID, queues, nil); err != nil {
		return err
	}

	return runDispatch(ctx, rt, sessionID, queues)
}

// approvalLoop shows the plan prompt and replays revisions until the human
// approves or cancels.
func approvalLoop(ctx context.Context, m *planner.Machine, sus *planner.Suspension) (*planner.Outcome, error) {
	for {
		res, err := tui.RunApproval(sus.Message, sus.Plan)
		if err != nil {
			return nil, err
		}

		next, outcome, err := m.Resume(ctx, sus.SessionID, res.Answer, res.Feedback)
		if err != nil {
			if errors.Is(err, planner.ErrTooManyRevisions) {
				color.Red("Revision limit reached; cancel or approve the current plan.")
				continue
			}
			return nil, err
		}
		if outcome != nil {
			return outcome, nil
		}
		sus = next
	}
}

// saveResearchSnapshot records the task queues and worker transcripts on
// the session checkpoint so dispatch progress survives restarts.
func saveResearchSnapshot(db *state.DB, sessionID string, queues *models.TaskQueues, workerTranscripts map[string][]models.Turn) error {
	snap, err := db.LoadCheckpoint(sessionID)
	if err != nil {
		return err
	}
	if snap == nil {
		snap = &state.Snapshot{SessionID: sessionID}
	}
	snap.Phase = phaseResearching
	snap.Queues = queues
	if workerTranscripts != nil {
		snap.WorkerTranscripts = workerTranscripts
	}
	return db.SaveCheckpoint(snap)
}

const phaseResearching = "researching"

// runDispatch works the task queue and prints the report.
func runDispatch(ctx context.Context, rt *runtime, sessionID string, queues *models.TaskQueues) error {
	agg := worker.NewAggregator()
	registry, err := supervisor.BuildRegistry(rt.agents, rt.client, agg, rt.cfg.Research)
	if err != nil {
		rt.db.UpdateSessionStatus(sessionID, state.SessionFailed)
		return err
	}

	signals, err := api.NewSignalWatcher(signalsDir)
	if err != nil {
		return err
	}
	defer signals.Close()
	signals.ClearSignals()

	d := supervisor.NewDispatcher(rt.client, registry, agg, signals, rt.cfg.Research)
	d.Checkpoint = func(q *models.TaskQueues, transcripts map[string][]models.Turn) error {
		return saveResearchSnapshot(rt.db, sessionID, q, transcripts)
	}

	runErr := d.RunQueue(ctx, queues)
	if runErr != nil {
		if errors.Is(runErr, supervisor.ErrStopped) {
			color.Yellow("Stopped. Resume with: kubescout resume %s", sessionID)
			return saveResearchSnapshot(rt.db, sessionID, queues, d.WorkerTranscripts())
		}
		rt.db.UpdateSessionStatus(sessionID, state.SessionFailed)
		return runErr
	}

	printReport(sessionID, queues, rt.client.Tracker())

	if err := rt.db.UpdateSessionStatus(sessionID, state.SessionCompleted); err != nil {
		return err
	}
	return rt.db.DeleteCheckpoint(sessionID)
}

// printReport renders the completed research report to the terminal.
func printReport(sessionID string, queues *models.TaskQueues, tracker *api.TokenTracker) {
	header := color.New(color.FgCyan, color.Bold)
	header.Printf("\nResearch Report (%s)\n\n", sessionID)

	severityColor := map[models.Severity]*color.Color{
		models.SeverityInfo:     color.New(color.FgBlue),
		models.SeverityWarning:  color.New(color.FgYellow),
		models.SeverityCritical: color.New(color.FgRed, color.Bold),
	}

	total := 0
	for _, task := range queues.Completed {
		title := color.New(color.Bold)
		switch task.Status {
		case models.TaskDone:
			title.Printf("Section %d: %s\n", task.Section.Number, task.Section.Title)
		case models.TaskSkipped:
			color.New(color.Faint).Printf("Section %d: %s (skipped)\n", task.Section.Number, task.Section.Title)
		}

		for _, note := range task.Notes {
			total++
			c := severityColor[note.Severity]
			c.Printf("  [%s] ", note.Severity)
			fmt.Printf("%s: %s\n", note.ReportingAgent, note.Description)
			if note.Metric != nil {
				fmt.Printf("      %s = %.2f%s\n", note.Metric.Name, note.Metric.Value, note.Metric.Unit)
			}
			for _, rec := range note.Recommendations {
				fmt.Printf("      -> %s\n", rec)
			}
		}
		fmt.Println()
	}

	input, output := tracker.Total()
	fmt.Printf("%d findings across %d sections; %d API calls, %d in / %d out tokens\n",
		total, len(queues.Completed), tracker.Calls(), input, output)
}

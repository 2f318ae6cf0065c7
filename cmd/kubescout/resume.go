package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubescout/kubescout/internal/planner"
	"github.com/kubescout/kubescout/internal/state"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume a suspended or interrupted session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResume(cmd.Context(), args[0])
	},
}

func runResume(ctx context.Context, sessionID string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	snap, err := rt.db.LoadCheckpoint(sessionID)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("session %s has nothing to resume", sessionID)
	}

	switch snap.Phase {
	case planner.PhaseAwaitingHuman:
		return resumeApproval(ctx, rt, snap)
	case planner.PhaseApproved, phaseResearching:
		queues := snap.Queues
		if queues == nil {
			queues, err = planner.BuildQueues(snap.Plan)
			if err != nil {
				return err
			}
		}
		if queues.Empty() {
			fmt.Println("all tasks already completed")
			return rt.db.UpdateSessionStatus(sessionID, state.SessionCompleted)
		}
		fmt.Printf("resuming %s with %d tasks pending\n", sessionID, len(queues.Pending))
		return runDispatch(ctx, rt, sessionID, queues)
	default:
		return fmt.Errorf("session %s is in phase %q and cannot be resumed", sessionID, snap.Phase)
	}
}

// resumeApproval re-opens the approval prompt for a session suspended on
// plan feedback, then continues into dispatch on approval.
func resumeApproval(ctx context.Context, rt *runtime, snap *state.Snapshot) error {
	if snap.Plan == nil {
		return fmt.Errorf("session %s is awaiting a reply but has no plan", snap.SessionID)
	}

	m := planner.NewMachine(rt.client, rt.db, rt.cfg.Planner)
	m.Catalog = rt.catalog(ctx)

	sus := &planner.Suspension{
		SessionID: snap.SessionID,
		Message:   "Resumed session. Review the plan below and decide.",
		Plan:      *snap.Plan,
	}
	outcome, err := approvalLoop(ctx, m, sus)
	if err != nil {
		return err
	}
	if !outcome.Decision.Approved() {
		fmt.Println("research cancelled")
		return nil
	}

	queues, err := planner.BuildQueues(outcome.Plan)
	if err != nil {
		return err
	}
	if err := saveResearchSnapshot(rt.db, snap.SessionID, queues, nil); err != nil {
		return err
	}
	return runDispatch(ctx, rt, snap.SessionID, queues)
}

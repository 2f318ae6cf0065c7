package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kubescout/kubescout/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSessionCRUD(t *testing.T) {
	db := openTestDB(t)

	now := time.Now()
	s := &Session{
		ID:        "sess-001",
		Request:   "analyze cluster health",
		Status:    SessionPlanning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetSession("sess-001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Request != "analyze cluster health" {
		t.Errorf("unexpected request %q", got.Request)
	}
	if got.Status != SessionPlanning {
		t.Errorf("unexpected status %q", got.Status)
	}

	if err := db.UpdateSessionStatus("sess-001", SessionResearching); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ = db.GetSession("sess-001")
	if got.Status != SessionResearching {
		t.Errorf("expected researching, got %q", got.Status)
	}

	missing, err := db.GetSession("nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing session")
	}
}

func TestListSessionsOrder(t *testing.T) {
	db := openTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		s := &Session{
			ID:        id,
			Request:   "r",
			Status:    SessionPlanning,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base,
		}
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	sessions, err := db.ListSessions()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "c" {
		t.Errorf("expected most recent first, got %q", sessions[0].ID)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	db := openTestDB(t)

	snap := &Snapshot{
		SessionID: "sess-001",
		Phase:     "awaiting_human",
		Request:   "analyze cluster health",
		Transcript: []models.Turn{
			models.UserTurn("please plan a cluster health report"),
			{
				Role: models.RoleAssistant,
				ToolCalls: []models.ToolCall{
					{ID: "call_1", Name: "present_plan_for_feedback", Input: []byte(`{"message":"ok"}`)},
				},
			},
		},
		Plan: &models.Plan{Sections: []models.PlanSection{
			{Number: 1, Title: "Nodes", Objective: "node health", Description: "list nodes"},
		}},
		PendingCallID: "call_1",
	}
	if err := db.SaveCheckpoint(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadCheckpoint("sess-001")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if got.Phase != "awaiting_human" {
		t.Errorf("unexpected phase %q", got.Phase)
	}
	if len(got.Transcript) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got.Transcript))
	}
	if got.Transcript[1].ToolCalls[0].ID != "call_1" {
		t.Error("tool call not preserved")
	}
	if got.Plan == nil || got.Plan.Sections[0].Title != "Nodes" {
		t.Error("plan not preserved")
	}
	if got.PendingCallID != "call_1" {
		t.Error("pending call id not preserved")
	}
}

func TestCheckpointOverwrite(t *testing.T) {
	db := openTestDB(t)

	first := &Snapshot{SessionID: "sess-001", Phase: "collecting", Request: "r"}
	if err := db.SaveCheckpoint(first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := &Snapshot{SessionID: "sess-001", Phase: "awaiting_human", Request: "r"}
	if err := db.SaveCheckpoint(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := db.LoadCheckpoint("sess-001")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Phase != "awaiting_human" {
		t.Errorf("expected latest checkpoint, got phase %q", got.Phase)
	}
}

func TestCheckpointReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	snap := &Snapshot{SessionID: "sess-001", Phase: "awaiting_human", Request: "r"}
	if err := db.SaveCheckpoint(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	db.Close()

	// Reopen as a fresh process would.
	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	if err := db2.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	got, err := db2.LoadCheckpoint("sess-001")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || got.Phase != "awaiting_human" {
		t.Fatal("checkpoint did not survive reopen")
	}
}

func TestDeleteCheckpoint(t *testing.T) {
	db := openTestDB(t)

	snap := &Snapshot{SessionID: "sess-001", Phase: "collecting", Request: "r"}
	if err := db.SaveCheckpoint(snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.DeleteCheckpoint("sess-001"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := db.LoadCheckpoint("sess-001")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Error("expected checkpoint removed")
	}
}

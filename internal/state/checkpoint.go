package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kubescout/kubescout/pkg/models"
)

// SessionStatus represents the lifecycle state of a research session.
type SessionStatus string

const (
	SessionPlanning         SessionStatus = "planning"
	SessionAwaitingApproval SessionStatus = "awaiting_approval"
	SessionResearching      SessionStatus = "researching"
	SessionCompleted        SessionStatus = "completed"
	SessionCancelled        SessionStatus = "cancelled"
	SessionFailed           SessionStatus = "failed"
)

// Session is one research session record.
type Session struct {
	ID        string        `json:"id"`
	Request   string        `json:"request"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Snapshot is the full externalizable state of a session at a suspension
// point: the conversation so far, the last candidate plan, the task queues,
// and each worker's private sub-transcript. Suspension persists a Snapshot;
// resumption loads it, independent of which process resumes.
type Snapshot struct {
	SessionID string `json:"session_id"`
	// Phase is the planning state machine phase at suspension time.
	Phase string `json:"phase"`
	// Request is the user's original research request.
	Request string `json:"request"`
	// Transcript is the planner conversation up to the suspend point.
	Transcript []models.Turn `json:"transcript"`
	// Plan is the last candidate plan presented to the human, if any.
	Plan *models.Plan `json:"plan,omitempty"`
	// PendingCallID is the tool call awaiting the human's reply.
	PendingCallID string `json:"pending_call_id,omitempty"`
	// Revisions counts how many times the human has sent the plan back.
	Revisions int `json:"revisions,omitempty"`
	// Queues holds the task queues once a plan is approved.
	Queues *models.TaskQueues `json:"queues,omitempty"`
	// WorkerTranscripts holds per-agent research sub-transcripts.
	WorkerTranscripts map[string][]models.Turn `json:"worker_transcripts,omitempty"`
}

// Session CRUD operations

// CreateSession creates a new session record.
func (db *DB) CreateSession(s *Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (id, request, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.Request, string(s.Status), formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. Returns nil if not found.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, request, status, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var s Session
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.Request, &s.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	s.CreatedAt, _ = parseTime(createdAt)
	s.UpdatedAt, _ = parseTime(updatedAt)
	return &s, nil
}

// UpdateSessionStatus updates a session's status.
func (db *DB) UpdateSessionStatus(id string, status SessionStatus) error {
	_, err := db.Exec(`
		UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, most recent first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, request, status, created_at, updated_at
		FROM sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Request, &s.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.CreatedAt, _ = parseTime(createdAt)
		s.UpdatedAt, _ = parseTime(updatedAt)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Checkpoint operations

// SaveCheckpoint durably stores the session snapshot. The write is a single
// upsert inside SQLite's transactional journal, so a crash mid-save leaves
// either the previous checkpoint or the new one, never a torn record.
func (db *DB) SaveCheckpoint(snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO checkpoints (session_id, phase, snapshot, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			phase = excluded.phase,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, snap.SessionID, snap.Phase, string(payload), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves the snapshot for a session. Returns nil if no
// checkpoint exists.
func (db *DB) LoadCheckpoint(sessionID string) (*Snapshot, error) {
	row := db.QueryRow(`
		SELECT snapshot FROM checkpoints WHERE session_id = ?
	`, sessionID)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// DeleteCheckpoint removes a session's checkpoint once it reaches a
// terminal state.
func (db *DB) DeleteCheckpoint(sessionID string) error {
	_, err := db.Exec(`DELETE FROM checkpoints WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

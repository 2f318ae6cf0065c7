// Package state provides SQLite-based persistence for kubescout.
package state

import "io"

// SessionStore handles session-record persistence.
type SessionStore interface {
	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	UpdateSessionStatus(id string, status SessionStatus) error
	ListSessions() ([]Session, error)
}

// CheckpointStore handles durable session snapshots. Save-then-crash-then-
// load must recover the saved snapshot with no partial-write corruption.
type CheckpointStore interface {
	SaveCheckpoint(snap *Snapshot) error
	LoadCheckpoint(sessionID string) (*Snapshot, error)
	DeleteCheckpoint(sessionID string) error
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// Store defines the persistence interface the orchestration core depends
// on, composed of focused sub-interfaces so callers can depend on only
// what they use.
type Store interface {
	io.Closer
	Migrator
	SessionStore
	CheckpointStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store           = (*DB)(nil)
	_ Migrator        = (*DB)(nil)
	_ SessionStore    = (*DB)(nil)
	_ CheckpointStore = (*DB)(nil)
)

package worker

import (
	"sync"

	"github.com/kubescout/kubescout/pkg/models"
)

// Aggregator collects findings from all workers in arrival order. It is
// safe for concurrent use during parallel handoffs, and deduplicates
// replayed deliveries by fingerprint so a retried register_finding call
// never double-counts.
type Aggregator struct {
	mu    sync.Mutex
	notes []models.ObservabilityNote
	seen  map[string]bool
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]bool)}
}

// Add appends a note unless an identical one was already recorded.
// Returns true if the note was newly added.
func (a *Aggregator) Add(note models.ObservabilityNote) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	fp := note.Fingerprint()
	if a.seen[fp] {
		return false
	}
	a.seen[fp] = true
	a.notes = append(a.notes, note)
	return true
}

// Notes returns a copy of all recorded notes in arrival order.
func (a *Aggregator) Notes() []models.ObservabilityNote {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.ObservabilityNote, len(a.notes))
	copy(out, a.notes)
	return out
}

// Count returns the number of distinct notes recorded.
func (a *Aggregator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.notes)
}

// ByAgent returns the recorded notes grouped by reporting agent.
func (a *Aggregator) ByAgent() map[string][]models.ObservabilityNote {
	a.mu.Lock()
	defer a.mu.Unlock()
	grouped := make(map[string][]models.ObservabilityNote)
	for _, n := range a.notes {
		grouped[n.ReportingAgent] = append(grouped[n.ReportingAgent], n)
	}
	return grouped
}

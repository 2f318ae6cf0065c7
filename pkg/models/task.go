package models

import "fmt"

// TaskStatus represents the current state of a research task.
type TaskStatus string

const (
	// TaskPending indicates the task has not been dispatched yet.
	TaskPending TaskStatus = "pending"
	// TaskInProgress indicates the supervisor is working the task.
	TaskInProgress TaskStatus = "in_progress"
	// TaskDone indicates the task finished with findings collected.
	TaskDone TaskStatus = "done"
	// TaskSkipped indicates the supervisor abandoned the task.
	TaskSkipped TaskStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskDone, TaskSkipped:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status ends the task's lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == TaskDone || s == TaskSkipped
}

// ResearchTask is one unit of research work derived from a plan section.
// Tasks are created by the queue transformer, have their status changed only
// by the supervisor dispatcher, and have notes appended only by the note
// aggregator. They are never deleted, only marked done or skipped.
type ResearchTask struct {
	// ID is derived from the section number ("task_3" for section 3).
	ID string `json:"id"`
	// Section is the plan section this task researches.
	Section PlanSection `json:"section"`
	// Status is the task's lifecycle state.
	Status TaskStatus `json:"status"`
	// Notes holds the findings recorded against this task, in the order
	// their tool results were observed.
	Notes []ObservabilityNote `json:"notes"`
}

// NewResearchTask creates a pending task for the given plan section.
func NewResearchTask(section PlanSection) *ResearchTask {
	return &ResearchTask{
		ID:      fmt.Sprintf("task_%d", section.Number),
		Section: section,
		Status:  TaskPending,
	}
}

// TaskQueues holds the pending and completed task queues for one research
// session. Tasks move strictly from pending to completed, never backward.
type TaskQueues struct {
	Pending   []*ResearchTask `json:"pending"`
	Completed []*ResearchTask `json:"completed"`
}

// NextPending returns the head of the pending queue, or nil if empty.
func (q *TaskQueues) NextPending() *ResearchTask {
	if len(q.Pending) == 0 {
		return nil
	}
	return q.Pending[0]
}

// Retire moves the head of the pending queue to the completed queue. The
// task must already carry a terminal status.
func (q *TaskQueues) Retire(task *ResearchTask) error {
	if !task.Status.Terminal() {
		return fmt.Errorf("task %s: cannot retire with non-terminal status %q", task.ID, task.Status)
	}
	if len(q.Pending) == 0 || q.Pending[0] != task {
		return fmt.Errorf("task %s is not at the head of the pending queue", task.ID)
	}
	q.Pending = q.Pending[1:]
	q.Completed = append(q.Completed, task)
	return nil
}

// Empty reports whether no tasks remain pending.
func (q *TaskQueues) Empty() bool {
	return len(q.Pending) == 0
}

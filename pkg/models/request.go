package models

import "time"

// Request is one incoming routing request. Requests are created per call
// and never persisted in mutable form; the history store records only
// their terminal outcome.
type Request struct {
	// ID is the unique identifier for this request.
	ID string `json:"id"`
	// Text is the raw request text to classify.
	Text string `json:"text"`
	// Handler optionally pre-selects a handler by name, bypassing
	// classification entirely.
	Handler string `json:"handler,omitempty"`
	// CreatedAt is when the request was received.
	CreatedAt time.Time `json:"created_at"`
}

// ExecutionPlan is the ordered list of tasks for one request.
// The order is a topological order of the task dependency graph: no task
// appears before a task it depends on. Plans are built once per request
// and immutable thereafter.
type ExecutionPlan struct {
	// RequestID is the request this plan was built for.
	RequestID string `json:"request_id"`
	// Tasks are the plan's tasks in execution order.
	Tasks []*Task `json:"tasks"`
}

// HandlerNames returns the handler names in plan order.
func (p *ExecutionPlan) HandlerNames() []string {
	names := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		names = append(names, t.Handler)
	}
	return names
}

// Task returns the plan's task with the given ID, or nil.
func (p *ExecutionPlan) Task(id string) *Task {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ExecutionResult enumerates each task's terminal status after the
// coordinator finishes or aborts a plan. It is always populated, even
// when some tasks failed, so callers can inspect partial outcomes.
type ExecutionResult struct {
	// RequestID is the request this result belongs to.
	RequestID string `json:"request_id"`
	// Tasks are the plan's tasks with terminal statuses and outputs.
	Tasks []*Task `json:"tasks"`
	// Duration is the total execution wall time.
	Duration time.Duration `json:"duration"`
}

// Succeeded returns true if every task completed.
func (r *ExecutionResult) Succeeded() bool {
	for _, t := range r.Tasks {
		if t.Status != TaskStatusCompleted {
			return false
		}
	}
	return true
}

// Counts returns the number of completed, failed, and skipped tasks.
func (r *ExecutionResult) Counts() (completed, failed, skipped int) {
	for _, t := range r.Tasks {
		switch t.Status {
		case TaskStatusCompleted:
			completed++
		case TaskStatusFailed:
			failed++
		case TaskStatusSkipped:
			skipped++
		}
	}
	return completed, failed, skipped
}

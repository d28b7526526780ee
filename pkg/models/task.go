package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task's handler is being invoked.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the handler reported success.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the handler reported failure or timed out.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusSkipped indicates an upstream dependency failed, so the
	// task was never started.
	TaskStatusSkipped TaskStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
// Terminal tasks never transition again.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Task represents one unit of delegated work: a single handler invocation
// scoped to one request. Tasks live only for the lifetime of their request.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// RequestID is the ID of the request this task belongs to.
	RequestID string `json:"request_id"`
	// Handler is the name of the handler this task targets.
	Handler string `json:"handler"`
	// Domain is the domain tag that selected this handler.
	Domain string `json:"domain"`
	// Payload is the input passed to the handler, derived from the request.
	Payload string `json:"payload,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// DependsOn lists task IDs that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty"`
	// Output is the handler-produced result payload, opaque to the core.
	Output string `json:"output,omitempty"`
	// Error contains the error message if the task failed.
	Error string `json:"error,omitempty"`
	// StartedAt is when the handler was invoked.
	StartedAt time.Time `json:"started_at,omitzero"`
	// CompletedAt is when the task reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Package coordinator executes execution plans: it runs each task's
// handler respecting the dependency order, with bounded concurrency and
// fail-fast skip-cascades along dependency edges.
package coordinator

import (
	"time"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventTaskQueued indicates a task is ready and queued for execution.
	EventTaskQueued EventType = "task_queued"
	// EventTaskStarted indicates a task's handler has been invoked.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task's handler reported failure.
	EventTaskFailed EventType = "task_failed"
	// EventTaskSkipped indicates a task was skipped because an upstream
	// dependency failed.
	EventTaskSkipped EventType = "task_skipped"
	// EventRequestDone indicates the entire plan reached terminal state.
	EventRequestDone EventType = "request_done"
)

// Event represents an event emitted by the coordinator while executing
// a plan. Consumers use these to render progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RequestID is the ID of the request being executed.
	RequestID string
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// Handler is the handler name of the related task, if applicable.
	Handler string
	// Message provides additional context about the event.
	Message string
	// Err contains error details for failure events.
	Err error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

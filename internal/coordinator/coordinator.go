package coordinator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jharlow/dispatch/internal/graph"
	"github.com/jharlow/dispatch/internal/handler"
	"github.com/jharlow/dispatch/pkg/models"
)

// DefaultWorkers is the concurrency limit used when none is configured.
const DefaultWorkers = 4

// Coordinator executes one plan and then closes its event channel.
// Create a new Coordinator per request.
//
// Task status transitions are applied only by the Execute goroutine, so
// a task is never observed in an inconsistent state by the
// failure-propagation check.
type Coordinator struct {
	handlers map[string]handler.Handler
	workers  int
	logger   *DebugLogger

	events  chan Event
	dropped atomic.Uint64
}

// Options configures a Coordinator.
type Options struct {
	// Workers bounds the number of concurrently running tasks.
	// Zero means DefaultWorkers.
	Workers int
	// Logger receives debug output. Nil means no logging.
	Logger *DebugLogger
}

// New creates a Coordinator that invokes the given handlers.
func New(handlers map[string]handler.Handler, opts Options) *Coordinator {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}
	return &Coordinator{
		handlers: handlers,
		workers:  workers,
		logger:   logger,
		events:   make(chan Event, 100),
	}
}

// Events returns the channel of execution events. It is closed when
// Execute returns.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// DroppedEventCount returns the number of events dropped because the
// event channel was full.
func (c *Coordinator) DroppedEventCount() uint64 {
	return c.dropped.Load()
}

// outcome is a handler invocation result delivered back to Execute.
type outcome struct {
	taskID string
	output string
	err    error
}

// Execute runs each task in the plan, respecting dependency order.
// Independent tasks run concurrently up to the worker limit. When a task
// fails, every task depending on it directly or transitively is marked
// skipped instead of executed; already-completed tasks are left
// untouched. Context cancellation marks all unresolved tasks failed and
// cascades skips the same way.
//
// Execute always returns a populated ExecutionResult, even on partial
// failure.
func (c *Coordinator) Execute(ctx context.Context, plan *models.ExecutionPlan) *models.ExecutionResult {
	defer close(c.events)
	started := time.Now()

	g := graph.New()
	if err := g.Build(plan.Tasks); err != nil {
		// Plans come from the router already validated; an invalid plan
		// here fails every task rather than panicking.
		c.logger.Log("[coordinator] invalid plan for request %s: %v", plan.RequestID, err)
		for _, t := range plan.Tasks {
			t.Status = models.TaskStatusFailed
			t.Error = fmt.Sprintf("invalid plan: %v", err)
		}
		return c.result(plan, started)
	}

	outcomes := make(chan outcome, len(plan.Tasks))
	running := make(map[string]bool)

	for {
		c.launchReady(ctx, g, running, outcomes, plan.RequestID)

		if len(running) == 0 {
			// Nothing running and nothing launchable: every task is
			// terminal (skip-cascades resolve blocked tasks eagerly).
			break
		}

		select {
		case out := <-outcomes:
			delete(running, out.taskID)
			c.applyOutcome(g, plan, out)
		case <-ctx.Done():
			c.abort(g, plan, running, ctx.Err())
			c.logger.Log("[coordinator] request %s aborted: %v", plan.RequestID, ctx.Err())
			c.emit(Event{Type: EventRequestDone, RequestID: plan.RequestID, Err: ctx.Err(), Timestamp: time.Now()})
			return c.result(plan, started)
		}
	}

	c.logger.Log("[coordinator] request %s done in %s", plan.RequestID, time.Since(started))
	c.emit(Event{Type: EventRequestDone, RequestID: plan.RequestID, Timestamp: time.Now()})
	return c.result(plan, started)
}

// launchReady starts ready tasks while worker slots are available.
func (c *Coordinator) launchReady(ctx context.Context, g *graph.DependencyGraph, running map[string]bool, outcomes chan<- outcome, requestID string) {
	for _, id := range g.Ready() {
		if running[id] {
			continue
		}
		if len(running) >= c.workers {
			c.logger.Log("[coordinator] no available slots: workers=%d running=%d", c.workers, len(running))
			return
		}

		task := g.Task(id)
		c.emit(Event{Type: EventTaskQueued, RequestID: requestID, TaskID: task.ID, Handler: task.Handler, Timestamp: time.Now()})

		h, ok := c.handlers[task.Handler]
		if !ok {
			// A plan task without a bound handler fails immediately.
			task.Status = models.TaskStatusFailed
			task.Error = fmt.Sprintf("no handler bound for %s", task.Handler)
			task.CompletedAt = time.Now()
			c.emit(Event{Type: EventTaskFailed, RequestID: requestID, TaskID: task.ID, Handler: task.Handler, Message: task.Error, Timestamp: time.Now()})
			c.cascadeSkips(g, task.ID)
			continue
		}

		task.Status = models.TaskStatusRunning
		task.StartedAt = time.Now()
		running[id] = true
		c.logger.Log("[coordinator] starting task %s (handler=%s)", task.ID, task.Handler)
		c.emit(Event{Type: EventTaskStarted, RequestID: requestID, TaskID: task.ID, Handler: task.Handler, Timestamp: time.Now()})

		go func(t *models.Task) {
			res, err := h.Invoke(ctx, t)
			out := outcome{taskID: t.ID, err: err}
			if res != nil {
				out.output = res.Output
			}
			outcomes <- out
		}(task)
	}
}

// applyOutcome transitions a task to its terminal state and propagates
// failure to dependents.
func (c *Coordinator) applyOutcome(g *graph.DependencyGraph, plan *models.ExecutionPlan, out outcome) {
	task := g.Task(out.taskID)
	task.Output = out.output
	task.CompletedAt = time.Now()

	if out.err != nil {
		task.Status = models.TaskStatusFailed
		task.Error = out.err.Error()
		c.logger.Log("[coordinator] task %s failed: %v", task.ID, out.err)
		c.emit(Event{Type: EventTaskFailed, RequestID: plan.RequestID, TaskID: task.ID, Handler: task.Handler, Err: out.err, Timestamp: time.Now()})
		c.cascadeSkips(g, task.ID)
		return
	}

	task.Status = models.TaskStatusCompleted
	g.MarkComplete(task.ID)
	c.logger.Log("[coordinator] task %s completed", task.ID)
	c.emit(Event{Type: EventTaskCompleted, RequestID: plan.RequestID, TaskID: task.ID, Handler: task.Handler, Timestamp: time.Now()})
}

// cascadeSkips marks every still-pending transitive dependent of a
// failed task as skipped. Completed tasks are never touched: the core
// does not own handler side effects and cannot roll them back.
func (c *Coordinator) cascadeSkips(g *graph.DependencyGraph, failedID string) {
	for _, depID := range g.TransitiveDependents(failedID) {
		dep := g.Task(depID)
		if dep.Status != models.TaskStatusPending {
			continue
		}
		dep.Status = models.TaskStatusSkipped
		dep.Error = "dependency failed: " + failedID
		dep.CompletedAt = time.Now()
		c.logger.Log("[coordinator] task %s skipped (depends on failed %s)", depID, failedID)
		c.emit(Event{Type: EventTaskSkipped, RequestID: dep.RequestID, TaskID: dep.ID, Handler: dep.Handler, Message: dep.Error, Timestamp: time.Now()})
	}
}

// abort resolves all non-terminal tasks after context cancellation.
// Running tasks fail with the context error, their dependents are
// skipped, and any remaining pending tasks fail with the same error.
func (c *Coordinator) abort(g *graph.DependencyGraph, plan *models.ExecutionPlan, running map[string]bool, cause error) {
	for id := range running {
		task := g.Task(id)
		task.Status = models.TaskStatusFailed
		task.Error = cause.Error()
		task.CompletedAt = time.Now()
		c.emit(Event{Type: EventTaskFailed, RequestID: plan.RequestID, TaskID: task.ID, Handler: task.Handler, Err: cause, Timestamp: time.Now()})
		c.cascadeSkips(g, id)
	}
	for _, task := range plan.Tasks {
		if task.Status != models.TaskStatusPending {
			continue
		}
		task.Status = models.TaskStatusFailed
		task.Error = cause.Error()
		task.CompletedAt = time.Now()
		c.emit(Event{Type: EventTaskFailed, RequestID: plan.RequestID, TaskID: task.ID, Handler: task.Handler, Err: cause, Timestamp: time.Now()})
	}
}

// emit sends an event without blocking; full channels drop events.
func (c *Coordinator) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.dropped.Add(1)
	}
}

func (c *Coordinator) result(plan *models.ExecutionPlan, started time.Time) *models.ExecutionResult {
	return &models.ExecutionResult{
		RequestID: plan.RequestID,
		Tasks:     plan.Tasks,
		Duration:  time.Since(started),
	}
}

// Package handler defines the contract between the core and external
// specialist handlers. The core invokes a handler with a task payload
// and observes only a success/failure signal plus an opaque output; all
// domain behavior lives on the handler's side of this boundary.
package handler

import (
	"context"

	"github.com/jharlow/dispatch/pkg/models"
)

// Result is the opaque payload a handler returns on success.
type Result struct {
	// Output is the handler-produced payload, passed through to the
	// execution result unmodified.
	Output string
}

// Handler is an external specialist. Invoke must honor ctx cancellation;
// a non-nil error marks the task failed.
type Handler interface {
	Invoke(ctx context.Context, task *models.Task) (*Result, error)
}

// Func adapts a plain function to the Handler interface.
type Func func(ctx context.Context, task *models.Task) (*Result, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, task *models.Task) (*Result, error) {
	return f(ctx, task)
}

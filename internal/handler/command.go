package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/jharlow/dispatch/internal/exec"
	"github.com/jharlow/dispatch/internal/registry"
	"github.com/jharlow/dispatch/pkg/models"
)

// CommandHandler invokes a configured shell command as the external
// specialist. The task payload is written to the command's stdin and the
// command's exit status is the success/failure signal.
type CommandHandler struct {
	runner  exec.CommandRunner
	command string
	workDir string
}

// NewCommandHandler creates a CommandHandler running command via runner.
func NewCommandHandler(runner exec.CommandRunner, command, workDir string) *CommandHandler {
	return &CommandHandler{
		runner:  runner,
		command: command,
		workDir: workDir,
	}
}

// Invoke runs the command with the task payload on stdin. Combined
// output is returned as the result payload even on failure, so callers
// can surface the command's diagnostics.
func (h *CommandHandler) Invoke(ctx context.Context, task *models.Task) (*Result, error) {
	output, err := h.runner.RunShell(ctx, h.workDir, h.command, []byte(task.Payload))
	result := &Result{Output: strings.TrimRight(string(output), "\n")}
	if err != nil {
		return result, fmt.Errorf("handler %s command failed: %w", task.Handler, err)
	}
	return result, nil
}

// Verify CommandHandler implements Handler at compile time.
var _ Handler = (*CommandHandler)(nil)

// Bind builds a Handler per registered descriptor. Descriptors without a
// command get a no-op handler that succeeds immediately, which keeps
// dry registries usable for routing experiments.
func Bind(reg *registry.Registry, runner exec.CommandRunner, workDir string) map[string]Handler {
	handlers := make(map[string]Handler, reg.Count())
	for _, d := range reg.Descriptors() {
		if d.Command == "" {
			handlers[d.Name] = Func(func(ctx context.Context, task *models.Task) (*Result, error) {
				return &Result{}, nil
			})
			continue
		}
		handlers[d.Name] = NewCommandHandler(runner, d.Command, workDir)
	}
	return handlers
}

package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/jharlow/dispatch/internal/registry"
	"github.com/jharlow/dispatch/pkg/models"
)

// fakeRunner records invocations and returns canned results.
type fakeRunner struct {
	lastCommand string
	lastStdin   []byte
	output      []byte
	err         error
}

func (f *fakeRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	return f.output, f.err
}

func (f *fakeRunner) RunShell(ctx context.Context, workDir string, command string, stdin []byte) ([]byte, error) {
	f.lastCommand = command
	f.lastStdin = stdin
	return f.output, f.err
}

func TestCommandHandlerSuccess(t *testing.T) {
	runner := &fakeRunner{output: []byte("generated section\n")}
	h := NewCommandHandler(runner, "generate.sh", "")

	task := &models.Task{ID: "t1", Handler: "theme", Payload: "add a hero section"}
	res, err := h.Invoke(context.Background(), task)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if res.Output != "generated section" {
		t.Errorf("Output = %q, want trailing newline trimmed", res.Output)
	}
	if runner.lastCommand != "generate.sh" {
		t.Errorf("command = %q", runner.lastCommand)
	}
	if string(runner.lastStdin) != "add a hero section" {
		t.Errorf("stdin = %q, want task payload", runner.lastStdin)
	}
}

func TestCommandHandlerFailure(t *testing.T) {
	runner := &fakeRunner{output: []byte("stack trace"), err: errors.New("exit status 1")}
	h := NewCommandHandler(runner, "broken.sh", "")

	task := &models.Task{ID: "t1", Handler: "theme"}
	res, err := h.Invoke(context.Background(), task)
	if err == nil {
		t.Fatal("expected error for failed command")
	}

	// Output is preserved even on failure so diagnostics surface.
	if res == nil || res.Output != "stack trace" {
		t.Errorf("failure output not preserved: %+v", res)
	}
}

func TestBind(t *testing.T) {
	reg, err := registry.New([]*models.HandlerDescriptor{
		{Name: "db", Domains: []string{"data"}, Command: "db.sh"},
		{Name: "noop", Domains: []string{"misc"}},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	runner := &fakeRunner{output: []byte("ok")}
	handlers := Bind(reg, runner, "")

	if len(handlers) != 2 {
		t.Fatalf("expected 2 bound handlers, got %d", len(handlers))
	}

	res, err := handlers["db"].Invoke(context.Background(), &models.Task{Handler: "db"})
	if err != nil || res.Output != "ok" {
		t.Errorf("db handler: res=%+v err=%v", res, err)
	}

	// Descriptors without a command succeed immediately.
	res, err = handlers["noop"].Invoke(context.Background(), &models.Task{Handler: "noop"})
	if err != nil || res == nil {
		t.Errorf("noop handler: res=%+v err=%v", res, err)
	}
}

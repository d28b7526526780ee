package graph

import (
	"errors"
	"testing"

	"github.com/jharlow/dispatch/pkg/models"
)

func task(id string, deps ...string) *models.Task {
	return &models.Task{ID: id, Status: models.TaskStatusPending, DependsOn: deps}
}

func TestBuildUnknownDependency(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{task("a", "missing")})
	if err == nil {
		t.Fatal("expected error for unknown dependency")
	}
}

func TestBuildDetectsCycle(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{
		task("a", "b"),
		task("b", "c"),
		task("c", "a"),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestBuildSelfCycle(t *testing.T) {
	g := New()
	err := g.Build([]*models.Task{task("a", "a")})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestTopologicalSortOrder(t *testing.T) {
	g := New()
	if err := g.Build([]*models.Task{
		task("ui", "api"),
		task("api", "db"),
		task("db"),
	}); err != nil {
		t.Fatalf("build: %v", err)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("sort: %v", err)
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos["db"] > pos["api"] || pos["api"] > pos["ui"] {
		t.Errorf("invalid topological order: %v", order)
	}
}

func TestTopologicalSortStable(t *testing.T) {
	// Independent tasks keep insertion order, and repeated sorts agree.
	build := func() *DependencyGraph {
		g := New()
		if err := g.Build([]*models.Task{
			task("a"),
			task("b"),
			task("c", "a"),
		}); err != nil {
			t.Fatalf("build: %v", err)
		}
		return g
	}

	first, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	second, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("sort: %v", err)
	}

	if len(first) != 3 || first[0] != "a" || first[1] != "b" || first[2] != "c" {
		t.Errorf("expected [a b c], got %v", first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("sort not deterministic: %v vs %v", first, second)
		}
	}
}

func TestReadyAndMarkComplete(t *testing.T) {
	g := New()
	if err := g.Build([]*models.Task{
		task("db"),
		task("api", "db"),
	}); err != nil {
		t.Fatalf("build: %v", err)
	}

	ready := g.Ready()
	if len(ready) != 1 || ready[0] != "db" {
		t.Fatalf("expected [db] ready, got %v", ready)
	}

	g.Task("db").Status = models.TaskStatusCompleted
	g.MarkComplete("db")

	ready = g.Ready()
	if len(ready) != 1 || ready[0] != "api" {
		t.Fatalf("expected [api] ready after db, got %v", ready)
	}
}

func TestReadySkipsNonPending(t *testing.T) {
	g := New()
	if err := g.Build([]*models.Task{task("a")}); err != nil {
		t.Fatalf("build: %v", err)
	}

	g.Task("a").Status = models.TaskStatusRunning
	if ready := g.Ready(); len(ready) != 0 {
		t.Errorf("running task should not be ready, got %v", ready)
	}
}

func TestDependents(t *testing.T) {
	g := New()
	if err := g.Build([]*models.Task{
		task("db"),
		task("api", "db"),
		task("ui", "api"),
	}); err != nil {
		t.Fatalf("build: %v", err)
	}

	direct := g.Dependents("db")
	if len(direct) != 1 || direct[0] != "api" {
		t.Errorf("Dependents(db) = %v, want [api]", direct)
	}

	transitive := g.TransitiveDependents("db")
	if len(transitive) != 2 || transitive[0] != "api" || transitive[1] != "ui" {
		t.Errorf("TransitiveDependents(db) = %v, want [api ui]", transitive)
	}
}

func TestTransitiveDependentsDiamond(t *testing.T) {
	g := New()
	if err := g.Build([]*models.Task{
		task("root"),
		task("left", "root"),
		task("right", "root"),
		task("join", "left", "right"),
	}); err != nil {
		t.Fatalf("build: %v", err)
	}

	// join reachable via both branches must appear once.
	transitive := g.TransitiveDependents("root")
	if len(transitive) != 3 {
		t.Errorf("TransitiveDependents(root) = %v, want 3 unique tasks", transitive)
	}
}

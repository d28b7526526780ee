// Package router turns a classification into an execution plan: it
// selects exactly one handler per matched domain, builds the dependency
// graph over the selected handlers, and orders them topologically.
package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jharlow/dispatch/internal/classify"
	"github.com/jharlow/dispatch/internal/graph"
	"github.com/jharlow/dispatch/internal/registry"
	"github.com/jharlow/dispatch/pkg/models"
)

// ErrUnroutable indicates the request matched no domain and no handler
// override was supplied. The router never guesses.
var ErrUnroutable = errors.New("unroutable request: no domain matched")

// ErrUnknownHandler indicates an explicit handler override named a
// handler that is not registered.
var ErrUnknownHandler = errors.New("unknown handler")

// AmbiguityError reports a domain that resolved to more than one
// equally-specific handler. The candidate list lets the caller
// disambiguate with an explicit override.
type AmbiguityError struct {
	// Domain is the ambiguous domain tag.
	Domain string
	// Candidates are the equally-specific handler names.
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous route for domain %q: candidates %v", e.Domain, e.Candidates)
}

// Router builds execution plans from classifications.
// It is pure and side-effect free; safe for concurrent use.
type Router struct {
	reg *registry.Registry
}

// New creates a Router over the given registry.
func New(reg *registry.Registry) *Router {
	return &Router{reg: reg}
}

// Route builds an ExecutionPlan for the request.
//
// If req.Handler is set, classification is bypassed and the plan contains
// a single task for that handler. Otherwise each matched domain is
// reduced to exactly one handler (most distinct matched keywords wins;
// an exact tie is an AmbiguityError), the dependency graph over the
// selected handlers is built, and a stable topological sort produces the
// plan. Dependency tags whose handlers were not selected for this
// request are ignored: they are assumed satisfied outside the request's
// scope.
func (r *Router) Route(req *models.Request, cls classify.Classification) (*models.ExecutionPlan, error) {
	if req.Handler != "" {
		return r.routeOverride(req)
	}

	if cls.Empty() {
		return nil, ErrUnroutable
	}

	selected, err := r.selectHandlers(cls)
	if err != nil {
		return nil, err
	}

	tasks := r.buildTasks(req, selected)

	g := graph.New()
	if err := g.Build(tasks); err != nil {
		// The registry rejects cycles at startup, so a cycle here means
		// the registry and plan disagree.
		return nil, fmt.Errorf("build plan graph: %w", err)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("order plan: %w", err)
	}

	ordered := make([]*models.Task, 0, len(order))
	for _, id := range order {
		ordered = append(ordered, g.Task(id))
	}

	return &models.ExecutionPlan{RequestID: req.ID, Tasks: ordered}, nil
}

// selection pairs a chosen descriptor with the domain that selected it.
type selection struct {
	domain string
	desc   *models.HandlerDescriptor
}

// selectHandlers reduces each matched domain to exactly one handler using
// the specificity tie-break. The same handler selected via multiple
// domains yields a single selection (first domain wins).
func (r *Router) selectHandlers(cls classify.Classification) ([]selection, error) {
	var selected []selection
	chosen := make(map[string]bool)

	for _, m := range cls.Matches {
		// Handlers are ordered by specificity; an exact tie at the top
		// is explicit ambiguity, surfaced rather than silently resolved.
		best := m.Handlers[0]
		if len(m.Handlers) > 1 && m.Handlers[1].Specificity() == best.Specificity() {
			var candidates []string
			for _, h := range m.Handlers {
				if h.Specificity() == best.Specificity() {
					candidates = append(candidates, h.Name)
				}
			}
			return nil, &AmbiguityError{Domain: m.Domain, Candidates: candidates}
		}

		if chosen[best.Name] {
			continue
		}
		chosen[best.Name] = true
		selected = append(selected, selection{domain: m.Domain, desc: r.reg.Handler(best.Name)})
	}

	return selected, nil
}

// buildTasks creates one task per selected handler, in classification
// order, wiring DependsOn to the tasks of selected handlers that serve
// each declared dependency tag. Unselected dependency tags are dropped.
func (r *Router) buildTasks(req *models.Request, selected []selection) []*models.Task {
	taskByHandler := make(map[string]*models.Task, len(selected))
	tasks := make([]*models.Task, 0, len(selected))

	for _, sel := range selected {
		task := &models.Task{
			ID:        uuid.New().String()[:8],
			RequestID: req.ID,
			Handler:   sel.desc.Name,
			Domain:    sel.domain,
			Payload:   req.Text,
			Status:    models.TaskStatusPending,
		}
		taskByHandler[sel.desc.Name] = task
		tasks = append(tasks, task)
	}

	for _, sel := range selected {
		task := taskByHandler[sel.desc.Name]
		for _, tag := range sel.desc.DependsOn {
			for _, other := range selected {
				if other.desc.Name == sel.desc.Name {
					continue
				}
				if other.desc.ServesDomain(tag) {
					task.DependsOn = append(task.DependsOn, taskByHandler[other.desc.Name].ID)
				}
			}
		}
	}

	return tasks
}

// routeOverride builds a single-task plan for an explicit handler override.
func (r *Router) routeOverride(req *models.Request) (*models.ExecutionPlan, error) {
	desc := r.reg.Handler(req.Handler)
	if desc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandler, req.Handler)
	}

	domain := ""
	if len(desc.Domains) > 0 {
		domain = desc.Domains[0]
	}

	task := &models.Task{
		ID:        uuid.New().String()[:8],
		RequestID: req.ID,
		Handler:   desc.Name,
		Domain:    domain,
		Payload:   req.Text,
		Status:    models.TaskStatusPending,
	}

	return &models.ExecutionPlan{RequestID: req.ID, Tasks: []*models.Task{task}}, nil
}

// NewRequest creates a Request with a fresh ID.
func NewRequest(text, handlerOverride string) *models.Request {
	return &models.Request{
		ID:        uuid.New().String()[:8],
		Text:      text,
		Handler:   handlerOverride,
		CreatedAt: time.Now(),
	}
}

// Package registry holds the static set of handler descriptors and
// validates it at startup. The registry is the only process-wide state
// and is read-only after construction.
package registry

import (
	"errors"
	"fmt"

	"github.com/jharlow/dispatch/pkg/models"
)

// ErrCycleDetected indicates a circular dependency among handler
// descriptors. This is a configuration error and fatal at startup.
var ErrCycleDetected = errors.New("circular dependency among handlers")

// ErrUnknownDependency indicates a descriptor declares a dependency tag
// that no registered handler serves.
var ErrUnknownDependency = errors.New("dependency tag not served by any handler")

// ErrDuplicateHandler indicates two descriptors share a name.
var ErrDuplicateHandler = errors.New("duplicate handler name")

// Registry is an immutable, validated set of handler descriptors.
// Safe for concurrent readers.
type Registry struct {
	// descriptors in declaration order.
	descriptors []*models.HandlerDescriptor
	// byName maps handler name to descriptor.
	byName map[string]*models.HandlerDescriptor
	// byDomain maps domain tag to the descriptors serving it,
	// in declaration order.
	byDomain map[string][]*models.HandlerDescriptor
	// domains holds unique domain tags in first-declaration order.
	domains []string
}

// New validates the descriptors and builds a Registry.
// Validation errors:
//   - empty or duplicate handler names
//   - a handler with no domain tags
//   - a dependency tag that resolves to no registered handler
//   - a cycle in the descriptor dependency graph
func New(descriptors []*models.HandlerDescriptor) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]*models.HandlerDescriptor),
		byDomain: make(map[string][]*models.HandlerDescriptor),
	}

	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("handler with empty name")
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHandler, d.Name)
		}
		if len(d.Domains) == 0 {
			return nil, fmt.Errorf("handler %s serves no domains", d.Name)
		}
		r.descriptors = append(r.descriptors, d)
		r.byName[d.Name] = d
		for _, tag := range d.Domains {
			if len(r.byDomain[tag]) == 0 {
				r.domains = append(r.domains, tag)
			}
			r.byDomain[tag] = append(r.byDomain[tag], d)
		}
	}

	// Every dependency tag must be resolvable to a registered handler.
	for _, d := range r.descriptors {
		for _, tag := range d.DependsOn {
			if len(r.byDomain[tag]) == 0 {
				return nil, fmt.Errorf("%w: handler %s depends on %q", ErrUnknownDependency, d.Name, tag)
			}
		}
	}

	if r.hasCycle() {
		return nil, ErrCycleDetected
	}

	return r, nil
}

// hasCycle detects circular dependencies in the descriptor graph using
// depth-first search with coloring. An edge runs from a handler to every
// handler serving one of its dependency tags.
func (r *Registry) hasCycle() bool {
	// Color states: 0 = white (unvisited), 1 = gray (in progress), 2 = black (done).
	colors := make(map[string]int, len(r.descriptors))

	var visit func(d *models.HandlerDescriptor) bool
	visit = func(d *models.HandlerDescriptor) bool {
		colors[d.Name] = 1

		for _, tag := range d.DependsOn {
			for _, dep := range r.byDomain[tag] {
				switch colors[dep.Name] {
				case 1:
					return true
				case 0:
					if visit(dep) {
						return true
					}
				}
			}
		}

		colors[d.Name] = 2
		return false
	}

	for _, d := range r.descriptors {
		if colors[d.Name] == 0 {
			if visit(d) {
				return true
			}
		}
	}
	return false
}

// Handler returns the descriptor with the given name, or nil.
func (r *Registry) Handler(name string) *models.HandlerDescriptor {
	return r.byName[name]
}

// ForDomain returns the descriptors serving the given domain tag,
// in declaration order.
func (r *Registry) ForDomain(tag string) []*models.HandlerDescriptor {
	return r.byDomain[tag]
}

// Descriptors returns all descriptors in declaration order.
func (r *Registry) Descriptors() []*models.HandlerDescriptor {
	return r.descriptors
}

// Domains returns the unique domain tags in first-declaration order.
func (r *Registry) Domains() []string {
	return r.domains
}

// Count returns the number of registered handlers.
func (r *Registry) Count() int {
	return len(r.descriptors)
}

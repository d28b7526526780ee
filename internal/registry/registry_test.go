package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jharlow/dispatch/pkg/models"
)

func desc(name string, domains, keywords, deps []string) *models.HandlerDescriptor {
	return &models.HandlerDescriptor{
		Name:      name,
		Domains:   domains,
		Keywords:  keywords,
		DependsOn: deps,
	}
}

func TestNewValidRegistry(t *testing.T) {
	reg, err := New([]*models.HandlerDescriptor{
		desc("db", []string{"data"}, []string{"schema"}, nil),
		desc("api", []string{"api"}, []string{"graphql"}, []string{"data"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reg.Count() != 2 {
		t.Errorf("Count() = %d, want 2", reg.Count())
	}
	if reg.Handler("db") == nil {
		t.Error("Handler(db) = nil")
	}
	if reg.Handler("missing") != nil {
		t.Error("Handler(missing) should be nil")
	}
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New([]*models.HandlerDescriptor{
		desc("db", []string{"data"}, nil, nil),
		desc("db", []string{"data"}, nil, nil),
	})
	if !errors.Is(err, ErrDuplicateHandler) {
		t.Fatalf("expected ErrDuplicateHandler, got %v", err)
	}
}

func TestNewRejectsEmptyDomains(t *testing.T) {
	_, err := New([]*models.HandlerDescriptor{
		desc("db", nil, nil, nil),
	})
	if err == nil {
		t.Fatal("expected error for handler with no domains")
	}
}

func TestNewRejectsUnknownDependency(t *testing.T) {
	_, err := New([]*models.HandlerDescriptor{
		desc("api", []string{"api"}, nil, []string{"data"}),
	})
	if !errors.Is(err, ErrUnknownDependency) {
		t.Fatalf("expected ErrUnknownDependency, got %v", err)
	}
}

func TestNewRejectsCycle(t *testing.T) {
	_, err := New([]*models.HandlerDescriptor{
		desc("a", []string{"one"}, nil, []string{"two"}),
		desc("b", []string{"two"}, nil, []string{"one"}),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestNewRejectsSelfDependency(t *testing.T) {
	_, err := New([]*models.HandlerDescriptor{
		desc("a", []string{"one"}, nil, []string{"one"}),
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestForDomainOrder(t *testing.T) {
	reg, err := New([]*models.HandlerDescriptor{
		desc("first", []string{"forms"}, nil, nil),
		desc("second", []string{"forms"}, nil, nil),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := reg.ForDomain("forms")
	if len(got) != 2 || got[0].Name != "first" || got[1].Name != "second" {
		t.Errorf("ForDomain(forms) order wrong: %v", got)
	}
}

func TestDomainsDeclarationOrder(t *testing.T) {
	reg, err := New([]*models.HandlerDescriptor{
		desc("ui", []string{"ui"}, nil, nil),
		desc("db", []string{"data"}, nil, nil),
		desc("theme", []string{"ui", "theme"}, nil, nil),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	domains := reg.Domains()
	want := []string{"ui", "data", "theme"}
	if len(domains) != len(want) {
		t.Fatalf("Domains() = %v, want %v", domains, want)
	}
	for i := range want {
		if domains[i] != want[i] {
			t.Errorf("Domains()[%d] = %s, want %s", i, domains[i], want[i])
		}
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handlers.yaml")

	content := `handlers:
  - name: db
    domains: [data]
    keywords: [schema, sql]
    depends_on: []
    command: "true"
  - name: api
    domains: [api]
    keywords: [graphql]
    depends_on: [data]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if reg.Count() != 2 {
		t.Errorf("Count() = %d, want 2", reg.Count())
	}
	api := reg.Handler("api")
	if api == nil || len(api.DependsOn) != 1 || api.DependsOn[0] != "data" {
		t.Errorf("api descriptor not loaded correctly: %+v", api)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing registry file")
	}
}

func TestLoadEmptyRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handlers.yaml")
	if err := os.WriteFile(path, []byte("handlers: []\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty registry")
	}
}

package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jharlow/dispatch/pkg/models"
)

// registryFile represents the handlers YAML file structure.
type registryFile struct {
	Handlers []*models.HandlerDescriptor `yaml:"handlers"`
}

// LoadFile reads handler descriptors from a YAML file.
func LoadFile(path string) ([]*models.HandlerDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}

	if len(file.Handlers) == 0 {
		return nil, fmt.Errorf("registry file %s declares no handlers", path)
	}

	return file.Handlers, nil
}

// Load reads descriptors from a YAML file and builds a validated Registry.
func Load(path string) (*Registry, error) {
	descriptors, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(descriptors)
}

// Package catalog loads the static course catalog.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/msomdec/studytrack/internal/domain"
	"github.com/msomdec/studytrack/pkg/validator"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type file struct {
	Modules []domain.Module `yaml:"modules" validate:"required,min=1,dive"`
}

// Default returns the built-in catalog.
func Default() ([]domain.Module, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file. An empty path yields the built-in catalog.
func Load(path string) ([]domain.Module, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	modules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return modules, nil
}

// Parse decodes and validates catalog YAML. Module IDs must be unique and
// video IDs unique within their module.
func Parse(data []byte) ([]domain.Module, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validator.ValidateStruct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	seen := make(map[int]bool, len(f.Modules))
	for _, m := range f.Modules {
		if seen[m.ID] {
			return nil, fmt.Errorf("%w: duplicate module id %d", domain.ErrInvalidInput, m.ID)
		}
		seen[m.ID] = true

		videos := make(map[string]bool, len(m.Videos))
		for _, v := range m.Videos {
			if videos[v.ID] {
				return nil, fmt.Errorf("%w: duplicate video id %q in module %d", domain.ErrInvalidInput, v.ID, m.ID)
			}
			videos[v.ID] = true
		}
	}
	return f.Modules, nil
}

package risk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CatalogEntry names one configured model instance.
type CatalogEntry struct {
	Name     string  `yaml:"name" json:"name"`
	Model    string  `yaml:"model" json:"model"`
	Options  Options `yaml:"options,omitempty" json:"options,omitempty"`
	Disabled bool    `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

type Catalog struct {
	Models []CatalogEntry `yaml:"models" json:"models"`
}

// LoadCatalog reads a YAML catalog. An empty path yields DefaultCatalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}

	if len(cat.Models) == 0 {
		return Catalog{}, errors.New("no models configured")
	}

	return cat, nil
}

// DefaultCatalog registers every model under its own name with default
// options.
func DefaultCatalog() Catalog {
	names := Names()
	cat := Catalog{Models: make([]CatalogEntry, 0, len(names))}
	for _, name := range names {
		cat.Models = append(cat.Models, CatalogEntry{Name: name, Model: name})
	}
	return cat
}

// Build constructs every enabled entry, keyed by entry name.
func (c Catalog) Build() (map[string]Model, error) {
	models := make(map[string]Model, len(c.Models))
	for _, entry := range c.Models {
		if entry.Disabled {
			continue
		}
		name := entry.Name
		if name == "" {
			name = entry.Model
		}
		if _, dup := models[name]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", name)
		}
		m, err := New(entry.Model, entry.Options)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}
		models[name] = m
	}
	return models, nil
}

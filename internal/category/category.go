// Package category loads the catalog descriptors that parameterize a journal.
package category

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pbaille/tastemap/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultDescriptors []byte

// ErrUnknownCategory is returned when a category id is not registered
var ErrUnknownCategory = errors.New("unknown category")

type descriptorFile struct {
	Categories []domain.Category `yaml:"categories"`
}

// Registry holds the loaded categories in file order
type Registry struct {
	order []string
	byID  map[string]domain.Category
}

// Load reads category descriptors from path, or the built-in set when path is empty
func Load(path string) (*Registry, error) {
	data := defaultDescriptors
	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read categories: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a YAML descriptor file
func Parse(data []byte) (*Registry, error) {
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("parse categories: no categories defined")
	}

	reg := &Registry{byID: make(map[string]domain.Category, len(file.Categories))}
	for _, c := range file.Categories {
		if err := validate(c); err != nil {
			return nil, err
		}
		if _, dup := reg.byID[c.ID]; dup {
			return nil, fmt.Errorf("category %q: duplicate id", c.ID)
		}
		if c.StorageKey == "" {
			c.StorageKey = "my-" + c.ID + "-storage"
		}
		if c.DefaultName == "" {
			c.DefaultName = c.ID
		}
		reg.byID[c.ID] = c
		reg.order = append(reg.order, c.ID)
	}
	return reg, nil
}

func validate(c domain.Category) error {
	if c.ID == "" {
		return fmt.Errorf("category: missing id")
	}
	if c.CustomPrefix == "" {
		return fmt.Errorf("category %q: missing custom_prefix", c.ID)
	}
	if len(c.Types) == 0 {
		return fmt.Errorf("category %q: no types", c.ID)
	}
	if c.NormalizeType(c.DefaultType) != c.DefaultType || c.DefaultType == "" {
		return fmt.Errorf("category %q: default_type %q not in types", c.ID, c.DefaultType)
	}
	if c.HasGenre() && !c.IsGenre(c.DefaultGenre) {
		return fmt.Errorf("category %q: default_genre %q not in genres", c.ID, c.DefaultGenre)
	}
	for _, id := range c.SeedWantToTry {
		if c.IsCustomID(id) {
			return fmt.Errorf("category %q: seed id %q uses the custom prefix", c.ID, id)
		}
	}
	return nil
}

// Get returns the category with the given id
func (r *Registry) Get(id string) (domain.Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	return c, nil
}

// IDs returns the registered category ids in file order
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

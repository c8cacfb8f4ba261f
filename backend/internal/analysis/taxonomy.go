package analysis

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Category names are fixed; a taxonomy file may change phrases and tags but
// not invent new categories.
const (
	FixerUpper      = "fixer-upper"
	DevelopmentLand = "development-land"
	QuickSale       = "quick-sale"
)

var knownCategories = map[string]bool{
	FixerUpper:      true,
	DevelopmentLand: true,
	QuickSale:       true,
}

// ErrInvalidTaxonomy wraps every validation failure.
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// Category groups the phrases that earn one tag.
type Category struct {
	Name    string   `yaml:"name"`
	Tag     string   `yaml:"tag"`
	Phrases []string `yaml:"phrases"`
}

// Override forces a category's tag from a structured field instead of text.
type Override struct {
	Category             string `yaml:"category"`
	PropertyTypeContains string `yaml:"property_type_contains"`
}

// Taxonomy is the read-only keyword configuration used by the Tagger.
type Taxonomy struct {
	DefaultTag string     `yaml:"default_tag"`
	Categories []Category `yaml:"categories"`
	Overrides  []Override `yaml:"overrides"`
}

// Default returns a fresh copy of the built-in taxonomy.
func Default() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomyYAML)
	if err != nil {
		panic(fmt.Sprintf("analysis: built-in taxonomy: %v", err))
	}
	return t
}

// LoadTaxonomy reads a taxonomy file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes and validates YAML taxonomy data.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	t := &Taxonomy{}
	if err := yaml.UnmarshalStrict(data, t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Category looks a category up by name.
func (t *Taxonomy) Category(name string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

func (t *Taxonomy) Validate() error {
	if strings.TrimSpace(t.DefaultTag) == "" {
		return fmt.Errorf("%w: default_tag is required", ErrInvalidTaxonomy)
	}

	seen := make(map[string]bool, len(t.Categories))
	for _, c := range t.Categories {
		if !knownCategories[c.Name] {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidTaxonomy, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, c.Name)
		}
		seen[c.Name] = true

		if strings.TrimSpace(c.Tag) == "" {
			return fmt.Errorf("%w: category %q has no tag", ErrInvalidTaxonomy, c.Name)
		}
		for _, p := range c.Phrases {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: category %q has an empty phrase", ErrInvalidTaxonomy, c.Name)
			}
		}
	}

	for _, o := range t.Overrides {
		if !seen[o.Category] {
			return fmt.Errorf("%w: override targets missing category %q", ErrInvalidTaxonomy, o.Category)
		}
		if strings.TrimSpace(o.PropertyTypeContains) == "" {
			return fmt.Errorf("%w: override for %q has no property_type_contains", ErrInvalidTaxonomy, o.Category)
		}
	}
	return nil
}

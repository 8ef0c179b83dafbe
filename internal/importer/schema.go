package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogSchema is the top-level structure of a catalog seed file.
// JSON files parse too, since JSON is a subset of YAML.
type CatalogSchema struct {
	Version  int             `yaml:"version"`
	Defaults *DefaultsImport `yaml:"defaults,omitempty"`
	Actions  []ActionImport  `yaml:"actions"`
}

// DefaultsImport supplies values for actions that leave them blank.
type DefaultsImport struct {
	Intent   string `yaml:"intent,omitempty" validate:"max=120"`
	Topic    string `yaml:"topic,omitempty" validate:"max=120"`
	Location string `yaml:"location,omitempty" validate:"max=120"`
	CTAType  string `yaml:"cta_type,omitempty"`
}

// ActionImport is one catalog record in a seed file.
type ActionImport struct {
	ID               string   `yaml:"id" validate:"required,max=64"`
	Title            string   `yaml:"title" validate:"required,max=200"`
	Description      string   `yaml:"description" validate:"max=2000"`
	Tags             []string `yaml:"tags" validate:"max=20,dive,required,max=40"`
	Intent           string   `yaml:"intent" validate:"max=120"`
	Topic            string   `yaml:"topic" validate:"max=120"`
	Location         string   `yaml:"location" validate:"max=120"`
	CTAType          string   `yaml:"cta_type"`
	Impact           int      `yaml:"impact" validate:"omitempty,min=1,max=5"`
	Urgency          int      `yaml:"urgency" validate:"omitempty,min=1,max=5"`
	TimeCommitment   string   `yaml:"time_commitment" validate:"max=80"`
	OrganizationName string   `yaml:"organization_name" validate:"max=200"`
	Link             string   `yaml:"link" validate:"omitempty,url"`
}

// LoadCatalogSchema reads and parses a catalog seed file.
func LoadCatalogSchema(path string) (*CatalogSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalogSchema(data)
}

// ParseCatalogSchema parses seed file contents.
func ParseCatalogSchema(data []byte) (*CatalogSchema, error) {
	var schema CatalogSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	return &schema, nil
}

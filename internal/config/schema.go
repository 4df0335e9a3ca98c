package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// SchemaIssue is one schema violation in a config file.
type SchemaIssue struct {
	Field       string
	Description string
}

// ValidateFile checks a YAML config file against the embedded JSON schema and
// returns the violations found. A nil slice means the file conforms. The
// schema check catches structural mistakes (wrong types, unknown keys) with
// field-level messages before viper's decode flattens them.
func ValidateFile(path string) ([]SchemaIssue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if doc == nil {
		return nil, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]SchemaIssue, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		issues = append(issues, SchemaIssue{Field: verr.Field(), Description: verr.Description()})
	}

	return issues, nil
}

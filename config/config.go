// Package config loads host-level resolver configuration: a limit on def
// nesting depth and a "did you mean" hints switch.
// Configuration is authored as YAML and validated against an embedded
// JSON Schema before use, the same two-step load-then-validate shape
// core/types uses for parameter schemas.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config controls resolver behavior that sits outside the language
// semantics themselves.
type Config struct {
	// MaxDefDepth bounds how deeply nested user defs may be, guarding
	// against pathological or adversarial input driving the scope
	// stack unbounded. Zero means unbounded.
	MaxDefDepth int `yaml:"maxDefDepth" json:"maxDefDepth"`

	// SuggestHints is decoded and validated, but neither package resolve
	// nor cmd/jaqc reads it: unresolved-name diagnostics carry a fuzzy
	// "did you mean" hint whenever a close candidate exists, whatever
	// its value.
	SuggestHints bool `yaml:"suggestHints" json:"suggestHints"`
}

// Default returns the configuration used when none is supplied.
func Default() Config {
	return Config{MaxDefDepth: 64, SuggestHints: true}
}

const schemaDoc = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"maxDefDepth": {"type": "integer", "minimum": 0},
		"suggestHints": {"type": "boolean"}
	}
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader([]byte(schemaDoc))); err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	return compiler.MustCompile("config.schema.json")
}

// Load parses YAML configuration bytes, validates the result against
// the embedded schema, and returns the decoded Config.
func Load(data []byte) (Config, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	if raw == nil {
		return Default(), nil
	}

	// jsonschema validates against json-shaped values, so round-trip
	// through JSON rather than feeding it the yaml.v3 node tree.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: re-encode for validation: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return Config{}, fmt.Errorf("config: decode for validation: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Config{}, fmt.Errorf("config: schema validation: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

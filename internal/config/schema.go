// ABOUTME: JSON Schema validation for hook settings files
// ABOUTME: Compiles the embedded schema once with santhosh-tekuri/jsonschema and validates raw file bytes

package config

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const settingsSchemaURL = "pi-go://settings.schema.json"

// settingsSchemaJSON constrains the keys the hook loader reads. Other
// top-level keys are allowed so hook settings can share a file with the
// rest of the agent configuration.
const settingsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "hooks": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": { "$ref": "#/$defs/hookDef" }
      }
    },
    "disableAllHooks": { "type": "boolean" },
    "hookTimeout": { "type": ["string", "number"] },
    "maxParallelHooks": { "type": "integer", "minimum": 0 },
    "env": {
      "type": "object",
      "additionalProperties": { "type": "string" }
    }
  },
  "$defs": {
    "hookType": { "enum": ["command"] },
    "timeout": { "type": "number", "exclusiveMinimum": 0 },
    "command": {
      "type": "object",
      "properties": {
        "type": { "$ref": "#/$defs/hookType" },
        "command": { "type": "string", "minLength": 1 },
        "timeout": { "$ref": "#/$defs/timeout" }
      },
      "required": ["command"]
    },
    "hookDef": {
      "type": "object",
      "properties": {
        "matcher": { "type": "string" },
        "type": { "$ref": "#/$defs/hookType" },
        "command": { "type": "string", "minLength": 1 },
        "timeout": { "$ref": "#/$defs/timeout" },
        "sequential": { "type": "boolean" },
        "enabled": { "type": "boolean" },
        "hooks": {
          "type": "array",
          "items": { "$ref": "#/$defs/command" }
        }
      },
      "anyOf": [
        { "required": ["command"] },
        { "required": ["hooks"] }
      ]
    }
  }
}`

var (
	schemaOnce     sync.Once
	settingsSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(settingsSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse settings schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(settingsSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add settings schema: %w", err)
			return
		}
		settingsSchema, schemaErr = c.Compile(settingsSchemaURL)
	})
	return settingsSchema, schemaErr
}

// validateSettings checks raw settings JSON against the settings schema.
func validateSettings(data []byte) error {
	schema, err := compiledSettingsSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return schema.Validate(inst)
}

package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response contracts are checked before normalization so that a drifted
// backend fails loudly at the boundary instead of producing a half-seeded
// session. The schemas are deliberately loose about which field-name
// variant carries a value; they pin types, not spellings.

var sessionSchemaDef = map[string]any{
	"type": "object",
	"anyOf": []any{
		map[string]any{"required": []any{"id"}},
		map[string]any{"required": []any{"session_id"}},
		map[string]any{"required": []any{"sessionId"}},
	},
	"properties": map[string]any{
		"id":              map[string]any{"type": "string"},
		"session_id":      map[string]any{"type": "string"},
		"current_index":   map[string]any{"type": "integer", "minimum": 0},
		"total_items":     map[string]any{"type": "integer", "minimum": 0},
		"total_questions": map[string]any{"type": "integer", "minimum": 0},
		"total_words":     map[string]any{"type": "integer", "minimum": 0},
		"current_score":   map[string]any{"type": "number"},
		"is_resuming":     map[string]any{"type": "boolean"},
		"next_action":     map[string]any{"type": "string"},
	},
}

var resultSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"correct":            map[string]any{"type": "boolean"},
		"points_earned":      map[string]any{"type": "number"},
		"current_score":      map[string]any{"type": "number"},
		"feedback":           map[string]any{"type": "string"},
		"is_complete":        map[string]any{"type": "boolean"},
		"needs_confirmation": map[string]any{"type": "boolean"},
		"percentage_score":   map[string]any{"type": "number"},
		"passed":             map[string]any{"type": "boolean"},
		"next_action":        map[string]any{"type": "string"},
	},
}

var finishSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"success"},
	"properties": map[string]any{
		"success":         map[string]any{"type": "boolean"},
		"passed":          map[string]any{"type": "boolean"},
		"final_score":     map[string]any{"type": "number"},
		"words_completed": map[string]any{"type": "number"},
	},
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

// checkContract validates raw JSON against the named schema definition.
func checkContract(name string, def map[string]any, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(name, def)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("contract %q violated: %w", name, err)
	}
	return nil
}

func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler expects a parsed JSON value, not Go maps with typed
	// values; round-trip through JSON to get a clean representation.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, err
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

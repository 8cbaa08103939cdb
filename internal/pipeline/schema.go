package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/garment-labs/labelaudit/constants"
)

// BuildExtractJSONSchema returns the extract response contract as a
// JSON-Schema (draft 2020-12 subset) generic map. Payloads are validated
// against it before they are persisted or served.
func BuildExtractJSONSchema() map[string]any {
	items := map[string]any{"type": "array", "items": mergedItemSchema()}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"care_labels": items,
			"hang_tags":   items,
		},
		"required": []string{"care_labels", "hang_tags"},
	}
}

// BuildValidationJSONSchema returns the reconciliation report contract.
func BuildValidationJSONSchema() map[string]any {
	side := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"match":        map[string]any{"type": "string", "enum": matchLevelEnum()},
			"upc_expected": map[string]any{"type": "string"},
			"upc_actual":   map[string]any{"type": "string"},
			"upc_matches":  map[string]any{"type": "boolean"},
			"item":         map[string]any{"type": []string{"object", "null"}},
		},
		"required": []string{"match", "upc_expected", "upc_actual", "upc_matches", "item"},
	}
	row := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"style":    map[string]any{"type": "string"},
			"size":     map[string]any{"type": "string"},
			"color":    map[string]any{"type": "string"},
			"care_upc": map[string]any{"type": "string"},
			"hang_upc": map[string]any{"type": "string"},
		},
		"required": []string{"style", "size", "color", "care_upc", "hang_upc"},
	}
	result := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"row":        row,
			"care_label": side,
			"hang_tag":   side,
		},
		"required": []string{"row", "care_label", "hang_tag"},
	}
	summary := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"rows":               map[string]any{"type": "integer", "minimum": 0},
			"care_label_matches": map[string]any{"type": "integer", "minimum": 0},
			"hang_tag_matches":   map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"rows", "care_label_matches", "hang_tag_matches"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"summary": summary,
			"results": map[string]any{"type": "array", "items": result},
		},
		"required": []string{"summary", "results"},
	}
}

func mergedItemSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"style_number": map[string]any{"type": "string"},
			"size":         map[string]any{"type": "string"},
			"color":        map[string]any{"type": "string"},
			// upc may carry a raw scanned payload, not only digits
			"upc": map[string]any{"type": "string"},
			"raw": map[string]any{"type": "object"},
		},
		"required": []string{"style_number", "size", "color", "upc", "raw"},
	}
}

func matchLevelEnum() []string {
	return []string{
		string(constants.MatchStyleSizeColor),
		string(constants.MatchStyleSize),
		string(constants.MatchStyleColor),
		string(constants.MatchStyle),
		string(constants.MatchNone),
	}
}

// CheckExtractPayload validates marshaled extract output against its
// contract.
func CheckExtractPayload(data []byte) error {
	return validateAgainstSchema(BuildExtractJSONSchema(), data)
}

// CheckValidationPayload validates a marshaled reconciliation report against
// its contract.
func CheckValidationPayload(data []byte) error {
	return validateAgainstSchema(BuildValidationJSONSchema(), data)
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match contract: %w", err)
	}
	return nil
}

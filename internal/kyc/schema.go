package kyc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildKYCSchema returns the acceptance schema for extraction payloads as a
// generic map. It is deliberately permissive: the gate is "a non-empty JSON
// object whose known fields have sane types", not a full KYC schema — the
// pipeline must tolerate partial extractions.
func BuildKYCSchema() map[string]any {
	return map[string]any{
		"type":          "object",
		"minProperties": 1,
		"properties": map[string]any{
			"full_name":       map[string]any{"type": "string"},
			"date_of_birth":   map[string]any{"type": "string"},
			"address":         map[string]any{"type": "string"},
			"id_number":       map[string]any{"type": "string"},
			"source_of_funds": map[string]any{"type": "string"},
			"pep_status":      map[string]any{"type": "string"},
		},
		"additionalProperties": true,
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
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
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

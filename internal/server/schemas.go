package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/clinops/docintake/constants"
)

// Request-body schemas as generic maps (draft 2020-12 subset), compiled once
// at startup and used to validate create/update payloads before decoding.

func buildOrderCreateSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"patient_id":  uuidProp(),
			"order_type":  map[string]any{"type": "string", "maxLength": 100},
			"description": map[string]any{"type": "string", "maxLength": 2000},
		},
	}
}

func buildOrderUpdateSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"minProperties":        1,
		"properties": map[string]any{
			"patient_id":  uuidProp(),
			"order_type":  map[string]any{"type": "string", "maxLength": 100},
			"description": map[string]any{"type": "string", "maxLength": 2000},
			"status": map[string]any{
				"type": "string",
				"enum": constants.OrderStatuses(),
			},
		},
	}
}

func buildPatientSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"minProperties":        1,
		"properties": map[string]any{
			"first_name":    map[string]any{"type": "string", "minLength": 1, "maxLength": 100},
			"last_name":     map[string]any{"type": "string", "minLength": 1, "maxLength": 100},
			"date_of_birth": map[string]any{"type": "string", "pattern": `^\d{2}/\d{2}/\d{4}$`},
		},
	}
}

func uuidProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`,
	}
}

type schemaSet struct {
	orderCreate *jsonschema.Schema
	orderUpdate *jsonschema.Schema
	patient     *jsonschema.Schema
}

func compileSchemas() (*schemaSet, error) {
	oc, err := compileSchema(buildOrderCreateSchema())
	if err != nil {
		return nil, fmt.Errorf("order create schema: %w", err)
	}
	ou, err := compileSchema(buildOrderUpdateSchema())
	if err != nil {
		return nil, fmt.Errorf("order update schema: %w", err)
	}
	p, err := compileSchema(buildPatientSchema())
	if err != nil {
		return nil, fmt.Errorf("patient schema: %w", err)
	}
	return &schemaSet{orderCreate: oc, orderUpdate: ou, patient: p}, nil
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("schema.json")
}

// validateBody checks raw JSON against a compiled schema.
func validateBody(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("body does not match schema: %w", err)
	}
	return nil
}

package llm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects T into a closed JSON schema suitable for strict
// structured output: no additional properties, every field inlined.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// SchemaMap converts a schema value into a generic JSON object. Providers
// that accept the schema as raw JSON use it; "$schema" and "$id" are dropped since
// several APIs reject it.
func SchemaMap(schema any) (map[string]any, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode response schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}

func marshalCompact(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode response schema: %w", err)
	}
	return string(data), nil
}

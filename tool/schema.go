package tool

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema derives a JSON Schema object for a tool's input struct.
// Field descriptions come from `jsonschema_description` struct tags. The
// schema is inlined (no $ref) and closed against additional properties so a
// shape mismatch is detectable at dispatch time.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		// Reflection over a plain struct cannot produce unmarshalable output.
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	delete(m, "$schema")
	return m
}

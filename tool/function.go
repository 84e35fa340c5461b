package tool

import (
	"bytes"
	"context"
	"encoding/json"
)

// FunctionTool adapts a plain Go function into a Tool. The input schema is
// derived from the input struct I via GenerateSchema, and raw model input is
// decoded into I with unknown fields rejected, so malformed tool calls
// surface as *InvalidInputError before the function runs.
type FunctionTool[I any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (Result, error)
}

// NewFunctionTool constructs a FunctionTool from a name, a model-facing
// description and the implementation.
func NewFunctionTool[I any](
	name, description string,
	fn func(ctx context.Context, input I) (Result, error),
) *FunctionTool[I] {
	return &FunctionTool[I]{
		name:        name,
		description: description,
		schema:      GenerateSchema[I](),
		fn:          fn,
	}
}

// Name implements Tool.
func (t *FunctionTool[I]) Name() string { return t.name }

// Description implements Tool.
func (t *FunctionTool[I]) Description() string { return t.description }

// InputSchema implements Tool.
func (t *FunctionTool[I]) InputSchema() map[string]any { return t.schema }

// Call implements Tool. Decoding is strict: unknown fields and type
// mismatches fail with *InvalidInputError.
func (t *FunctionTool[I]) Call(ctx context.Context, input json.RawMessage) (Result, error) {
	var in I
	if len(input) > 0 {
		dec := json.NewDecoder(bytes.NewReader(input))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return Result{}, &InvalidInputError{Tool: t.name, Err: err}
		}
	}
	return t.fn(ctx, in)
}

// Package model defines the submit capability consumed by the conversation
// state machine: hand over conversation history plus tool declarations, get
// back one ordered sequence of wire events. Concrete transports live in the
// vendor subpackages (anthropic, openai); ScriptedModel provides a
// deterministic in-memory implementation for tests and examples.
package model

import (
	"context"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/stream"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// InputSchema is a JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Request captures the normalized input of one model turn.
type Request struct {
	System      string           `json:"system,omitempty"`
	Messages    []core.Message   `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int64            `json:"max_tokens"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the state machine needs to drive one turn.
//
// Stream submits the request and returns the event sequence for exactly one
// response. Both channels are closed when production ends. Implementations
// must honor ctx: cancellation stops event production promptly so no
// background producer leaks.
type Model interface {
	Stream(ctx context.Context, req Request) (<-chan stream.Event, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

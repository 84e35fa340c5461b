// Package tool implements the tool-calling subsystem: the Tool abstraction,
// a registry for per-run lookup, and the dispatcher that resolves a model's
// tool-use request, executes it and folds the outcome back into conversation
// content.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the outcome of one tool execution. IsError marks a failure the
// model should see and react to (as opposed to an infrastructure error that
// aborts the run).
type Result struct {
	IsError bool   `json:"is_error"`
	Content string `json:"content"`
}

// Tool is a locally executable capability exposed to the model.
//
// Implementations should be safe for concurrent use: a single Tool value may
// serve multiple runs.
type Tool interface {
	// Name returns the unique identifier used in tool-use blocks.
	Name() string

	// Description is the natural-language summary shown to the model.
	Description() string

	// InputSchema returns a JSON Schema object describing the expected input.
	InputSchema() map[string]any

	// Call executes the tool against raw structured input produced by the
	// model. Implementations must return *InvalidInputError when the input
	// does not match the expected shape.
	Call(ctx context.Context, input json.RawMessage) (Result, error)
}

// ErrNotImplemented is returned by tool stubs whose behavior is declared but
// not yet available. The dispatcher converts it into a NotImplementedError
// carrying the tool name.
var ErrNotImplemented = errors.New("tool not implemented")

// ErrNoToolUse reports an assistant message that contains no tool-use block
// even though a tool-dispatch step was requested.
var ErrNoToolUse = errors.New("no tool use block found in message")

// ErrNotAssistantMessage reports a dispatch attempt against a message that
// was not authored by the assistant.
var ErrNotAssistantMessage = errors.New("last message is not an assistant message")

// NotFoundError reports a tool-use request naming a tool absent from the
// run's registry (or a run with no registry at all).
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("tool not found: %s", e.Name) }

// NotImplementedError reports a registered tool whose execution is not
// implemented.
type NotImplementedError struct {
	Name string
}

func (e *NotImplementedError) Error() string { return fmt.Sprintf("tool not implemented: %s", e.Name) }

func (e *NotImplementedError) Unwrap() error { return ErrNotImplemented }

// InvalidInputError reports tool input that does not match the tool's
// expected shape.
type InvalidInputError struct {
	Tool string
	Err  error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for tool %s: %v", e.Tool, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// ExecutionError reports a tool that was found and fed well-formed input but
// failed while executing.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s execution failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

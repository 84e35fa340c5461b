package tool

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/logging"
)

// errorResultPrefix marks tool outcomes the model should treat as failures.
const errorResultPrefix = "Error: "

// Dispatch is the committed outcome of one tool-dispatch step: the raw
// output text keyed by the originating tool-use id, plus the user-role
// message carrying the tool result block, ready to append to history.
type Dispatch struct {
	ToolUseID string
	ToolName  string
	Output    string
	Message   core.Message
}

// Dispatcher resolves tool-use requests against a registry and executes
// them. It performs no retries: every lookup, decode or execution failure
// aborts the step with a specific error.
type Dispatcher struct {
	registry *Registry
	logger   logging.Logger
}

// NewDispatcher constructs a dispatcher. A nil logger disables logging.
func NewDispatcher(registry *Registry, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// DispatchFirst selects the first tool-use block of the given assistant
// message and executes it. Additional tool-use blocks in the same message
// are ignored for this step; the model re-issues them on the next turn.
//
// Failure classification:
//   - message not assistant-authored: ErrNotAssistantMessage
//   - no tool-use block present: ErrNoToolUse
//   - nil registry or unknown name: *NotFoundError
//   - registered stub: *NotImplementedError
//   - input shape mismatch: *InvalidInputError
//   - execution failure: *ExecutionError
func (d *Dispatcher) DispatchFirst(ctx context.Context, msg core.Message) (*Dispatch, error) {
	if msg.Role != core.RoleAssistant {
		return nil, ErrNotAssistantMessage
	}

	use, ok := msg.FirstToolUse()
	if !ok {
		return nil, ErrNoToolUse
	}

	if d.registry == nil {
		return nil, &NotFoundError{Name: use.Name}
	}
	t, ok := d.registry.Get(use.Name)
	if !ok {
		return nil, &NotFoundError{Name: use.Name}
	}

	start := time.Now()
	result, err := t.Call(ctx, use.Input)
	if err != nil {
		d.logger.Error("tool.dispatch.failed", "tool", use.Name, "tool_use_id", use.ID, "error", err)

		var invalid *InvalidInputError
		switch {
		case errors.Is(err, ErrNotImplemented):
			return nil, &NotImplementedError{Name: use.Name}
		case errors.As(err, &invalid):
			return nil, invalid
		default:
			return nil, &ExecutionError{Tool: use.Name, Err: err}
		}
	}

	d.logger.Info("tool.dispatch.executed",
		"tool", use.Name,
		"tool_use_id", use.ID,
		"is_error", result.IsError,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	content := result.Content
	if result.IsError {
		content = errorResultPrefix + content
	}

	return &Dispatch{
		ToolUseID: use.ID,
		ToolName:  use.Name,
		Output:    result.Content,
		Message:   core.NewToolResultMessage(use.ID, content),
	}, nil
}

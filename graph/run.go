package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/stream"
	"github.com/hupe1980/agentgraph/tool"
)

// State is the conversation state shared across node behaviors. Callers may
// inspect it between steps; node behaviors mutate it only when the step
// commits (a failed step leaves it unchanged, except for the truncated
// assistant message on a max-tokens stop).
type State struct {
	// UserPrompt is the prompt the Start node seeds history with.
	UserPrompt string
	// History is the full alternating conversation.
	History []core.Message
	// ToolOutputs records raw tool output text keyed by tool-use id.
	ToolOutputs map[string]string
}

// Deps bundles the capabilities node behaviors need.
type Deps struct {
	Model        model.Model
	Tools        *tool.Registry
	SystemPrompt string
	MaxTokens    int64
	Temperature  *float64
	Wrapper      stream.Wrapper
	Logger       logging.Logger
}

// Run drives one conversation from prompt to final answer. It is pull-based:
// each Next call executes exactly one node. A Run is not safe for concurrent
// use.
type Run struct {
	id         string
	node       Node
	state      State
	deps       Deps
	dispatcher *tool.Dispatcher
	finished   bool
	result     string
	hasResult  bool
}

// NewRun creates a run positioned at the Start node.
func NewRun(prompt string, deps Deps) *Run {
	if deps.Logger == nil {
		deps.Logger = logging.NoOpLogger{}
	}
	if deps.Wrapper == nil {
		deps.Wrapper = stream.NopWrapper{}
	}
	return &Run{
		id:   uuid.NewString(),
		node: NodeStart,
		state: State{
			UserPrompt:  prompt,
			ToolOutputs: map[string]string{},
		},
		deps:       deps,
		dispatcher: tool.NewDispatcher(deps.Tools, deps.Logger),
	}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Node returns the node the next Next call will execute (or, once finished,
// the node the run stopped on).
func (r *Run) Node() Node { return r.node }

// State returns the current conversation state.
func (r *Run) State() State { return r.state }

// Finished reports whether the run has terminated, successfully or not.
func (r *Run) Finished() bool { return r.finished }

// Result returns the final assistant text after a successful run. It
// returns ErrNoResult when the run finished without assistant text.
func (r *Run) Result() (string, error) {
	if !r.hasResult {
		return "", ErrNoResult
	}
	return r.result, nil
}

// Next executes the current node and advances to its successor. It returns
// the node that executed. Once the run has finished, Next returns ok=false
// without executing anything. Any step error is terminal: the run is marked
// finished and no further node executes.
func (r *Run) Next(ctx context.Context) (Node, bool, error) {
	if r.finished {
		return r.node, false, nil
	}

	executed := r.node
	tr, err := r.step(ctx, executed)
	if err != nil {
		r.finished = true
		r.deps.Logger.Error("graph.node.failed", "run_id", r.id, "node", executed.String(), "error", err)
		return executed, true, err
	}

	if tr == terminal {
		r.finished = true
		r.deps.Logger.Debug("graph.run.finished", "run_id", r.id)
		return executed, true, nil
	}

	next, ok := edges[executed][tr]
	if !ok {
		r.finished = true
		return executed, true, &InvalidTransitionError{From: executed, Transition: tr.String()}
	}

	r.deps.Logger.Debug("graph.node.executed", "run_id", r.id, "node", executed.String(), "next", next.String())
	r.node = next
	return executed, true, nil
}

func (r *Run) step(ctx context.Context, node Node) (transition, error) {
	switch node {
	case NodeStart:
		return r.stepStart()
	case NodeRequestModel:
		return r.stepRequestModel(ctx)
	case NodeExecuteTools:
		return r.stepExecuteTools(ctx)
	case NodeEnd:
		return r.stepEnd()
	default:
		return terminal, &InvalidTransitionError{From: node, Transition: "unknown node"}
	}
}

// stepStart appends the initial user message.
func (r *Run) stepStart() (transition, error) {
	r.state.History = append(r.state.History, core.NewUserTextMessage(r.state.UserPrompt))
	return toRequestModel, nil
}

// stepRequestModel submits the conversation, folds the streamed response
// into an assistant message and routes on its stop reason. The producer is
// scoped to the step: every return path cancels it, so an aborted turn never
// leaves a goroutine parked on a channel send or an HTTP stream open.
func (r *Run) stepRequestModel(ctx context.Context) (transition, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := model.Request{
		System:      r.deps.SystemPrompt,
		Messages:    r.state.History,
		MaxTokens:   r.deps.MaxTokens,
		Temperature: r.deps.Temperature,
	}
	if r.deps.Tools != nil {
		for _, t := range r.deps.Tools.List() {
			req.Tools = append(req.Tools, model.ToolDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: t.InputSchema(),
			})
		}
	}

	events, errs := r.deps.Model.Stream(ctx, req)
	events = r.deps.Wrapper.Wrap(ctx, events)

	resp, err := stream.Collect(ctx, events, errs)
	if err != nil {
		return terminal, fmt.Errorf("model request failed: %w", err)
	}

	r.state.History = append(r.state.History, resp.ToMessage())
	r.deps.Logger.Debug("graph.model.responded",
		"run_id", r.id,
		"stop_reason", string(resp.StopReason),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	switch resp.StopReason {
	case core.StopReasonToolUse:
		return toExecuteTools, nil
	case core.StopReasonMaxTokens:
		return terminal, ErrMaxTokens
	default:
		return toEnd, nil
	}
}

// stepExecuteTools dispatches the first tool use of the last assistant
// message and appends its result. History is only touched once the dispatch
// has succeeded.
func (r *Run) stepExecuteTools(ctx context.Context) (transition, error) {
	if len(r.state.History) == 0 {
		return terminal, tool.ErrNoToolUse
	}
	last := r.state.History[len(r.state.History)-1]

	dispatch, err := r.dispatcher.DispatchFirst(ctx, last)
	if err != nil {
		if errors.Is(err, tool.ErrNotAssistantMessage) {
			// Reaching ExecuteTools without an assistant message means the
			// run was driven out of order, not that the tool layer failed.
			return terminal, &InvalidTransitionError{From: NodeExecuteTools, Transition: "execute tools without assistant message"}
		}
		return terminal, err
	}

	r.state.History = append(r.state.History, dispatch.Message)
	r.state.ToolOutputs[dispatch.ToolUseID] = dispatch.Output
	return toRequestModel, nil
}

// stepEnd captures the user-visible result from the last assistant message.
func (r *Run) stepEnd() (transition, error) {
	for i := len(r.state.History) - 1; i >= 0; i-- {
		msg := r.state.History[i]
		if msg.Role != core.RoleAssistant {
			continue
		}
		if text, ok := msg.FirstText(); ok && text != "" {
			r.result = text
			r.hasResult = true
		}
		break
	}
	return terminal, nil
}

package graph

import (
	"context"
	"encoding/json"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/stream"
	"github.com/hupe1980/agentgraph/tool"
)

// textScript plays one complete assistant turn containing only text.
func textScript(text string, reason core.StopReason) model.Script {
	return model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted", Role: core.RoleAssistant},
		stream.ContentBlockStart{Index: 0, Block: stream.TextStart{}},
		stream.ContentBlockDelta{Index: 0, Delta: stream.TextDelta{Text: text}},
		stream.ContentBlockStop{Index: 0},
		stream.MessageDelta{StopReason: reason},
		stream.MessageStop{},
	}}
}

// toolUseScript plays one assistant turn requesting a single tool call.
func toolUseScript(id, name, input string) model.Script {
	return model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted", Role: core.RoleAssistant},
		stream.ContentBlockStart{Index: 0, Block: stream.ToolUseStart{ID: id, Name: name}},
		stream.ContentBlockDelta{Index: 0, Delta: stream.InputJSONDelta{PartialJSON: input}},
		stream.ContentBlockStop{Index: 0},
		stream.MessageDelta{StopReason: core.StopReasonToolUse},
		stream.MessageStop{},
	}}
}

func echoRegistry() *tool.Registry {
	echo := tool.NewFunctionTool("echo", "Echoes its input",
		func(_ context.Context, input struct {
			Text string `json:"text"`
		}) (tool.Result, error) {
			return tool.Result{Content: input.Text}, nil
		})
	return tool.NewRegistry(echo)
}

// drive advances the run to completion and returns the executed node
// sequence.
func drive(t *testing.T, run *Run) ([]Node, error) {
	t.Helper()
	var nodes []Node
	for {
		node, ok, err := run.Next(context.Background())
		if !ok {
			return nodes, nil
		}
		nodes = append(nodes, node)
		if err != nil {
			return nodes, err
		}
	}
}

// -------------------- Happy Paths --------------------

func TestRun_TextOnlyConversation(t *testing.T) {
	m := model.NewScriptedModel(textScript("Hello!", core.StopReasonEndTurn))
	run := NewRun("Hi", Deps{Model: m})

	nodes, err := drive(t, run)
	require.NoError(t, err)
	assert.Equal(t, []Node{NodeStart, NodeRequestModel, NodeEnd}, nodes)
	assert.True(t, run.Finished())

	result, err := run.Result()
	require.NoError(t, err)
	assert.Equal(t, "Hello!", result)

	history := run.State().History
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, core.RoleAssistant, history[1].Role)
}

func TestRun_ToolLoop(t *testing.T) {
	m := model.NewScriptedModel(
		toolUseScript("tu_1", "echo", `{"text":"pong"}`),
		textScript("The tool said pong.", core.StopReasonEndTurn),
	)
	run := NewRun("ping the tool", Deps{Model: m, Tools: echoRegistry()})

	nodes, err := drive(t, run)
	require.NoError(t, err)
	assert.Equal(t, []Node{NodeStart, NodeRequestModel, NodeExecuteTools, NodeRequestModel, NodeEnd}, nodes)

	result, err := run.Result()
	require.NoError(t, err)
	assert.Equal(t, "The tool said pong.", result)

	state := run.State()
	assert.Equal(t, map[string]string{"tu_1": "pong"}, state.ToolOutputs)

	// user, assistant(tool_use), user(tool_result), assistant(text)
	require.Len(t, state.History, 4)
	resultBlock, ok := state.History[2].Content[0].(core.ToolResultBlock)
	require.True(t, ok)
	assert.Equal(t, "tu_1", resultBlock.ToolUseID)
	assert.Equal(t, "pong", resultBlock.Content)
}

func TestRun_StartSeedsPromptBeforeSubmit(t *testing.T) {
	m := model.NewScriptedModel(textScript("ok", core.StopReasonEndTurn))
	run := NewRun("the prompt", Deps{Model: m})

	node, ok, err := run.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, NodeStart, node)

	// Start appended the user message without touching the model.
	assert.Equal(t, 0, m.Calls())
	history := run.State().History
	require.Len(t, history, 1)
	text, _ := history[0].FirstText()
	assert.Equal(t, "the prompt", text)
	assert.Equal(t, NodeRequestModel, run.Node())
}

func TestRun_ToolDefinitionsSentToModel(t *testing.T) {
	m := model.NewScriptedModel(textScript("ok", core.StopReasonEndTurn))
	run := NewRun("Hi", Deps{Model: m, Tools: echoRegistry()})

	_, err := drive(t, run)
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "echo", reqs[0].Tools[0].Name)
	assert.NotEmpty(t, reqs[0].Tools[0].InputSchema)
}

func TestRun_NonToolStopReasonsReachEnd(t *testing.T) {
	for _, reason := range []core.StopReason{
		core.StopReasonEndTurn,
		core.StopReasonStopSequence,
		core.StopReasonNone,
	} {
		t.Run(string(reason), func(t *testing.T) {
			m := model.NewScriptedModel(textScript("done", reason))
			run := NewRun("Hi", Deps{Model: m})

			nodes, err := drive(t, run)
			require.NoError(t, err)
			assert.Equal(t, []Node{NodeStart, NodeRequestModel, NodeEnd}, nodes)
		})
	}
}

// -------------------- Failure Paths --------------------

func TestRun_MaxTokensIsTerminal(t *testing.T) {
	m := model.NewScriptedModel(textScript("truncated...", core.StopReasonMaxTokens))
	run := NewRun("Hi", Deps{Model: m})

	_, err := drive(t, run)
	assert.ErrorIs(t, err, ErrMaxTokens)
	assert.True(t, run.Finished())

	// The truncated assistant message still lands in history.
	history := run.State().History
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleAssistant, history[1].Role)
}

func TestRun_NoToolUseFoundLeavesStateUnchanged(t *testing.T) {
	// The model claims tool use but emits no tool-use block.
	script := model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted"},
		stream.ContentBlockStart{Index: 0, Block: stream.TextStart{Text: "no tool here"}},
		stream.ContentBlockStop{Index: 0},
		stream.MessageDelta{StopReason: core.StopReasonToolUse},
		stream.MessageStop{},
	}}
	m := model.NewScriptedModel(script)
	run := NewRun("Hi", Deps{Model: m, Tools: echoRegistry()})

	nodes, err := drive(t, run)
	assert.ErrorIs(t, err, tool.ErrNoToolUse)
	assert.Equal(t, []Node{NodeStart, NodeRequestModel, NodeExecuteTools}, nodes)

	// ExecuteTools failed without appending anything.
	state := run.State()
	assert.Len(t, state.History, 2)
	assert.Empty(t, state.ToolOutputs)
}

func TestRun_UnknownToolFails(t *testing.T) {
	m := model.NewScriptedModel(toolUseScript("tu_1", "nope", `{}`))
	run := NewRun("Hi", Deps{Model: m, Tools: echoRegistry()})

	_, err := drive(t, run)
	var notFound *tool.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Name)
}

func TestRun_ModelErrorIsTerminal(t *testing.T) {
	m := model.NewScriptedModel(model.Script{Err: assert.AnError})
	run := NewRun("Hi", Deps{Model: m})

	_, err := drive(t, run)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, run.Finished())
}

func TestRun_AbortedModelTurnReleasesProducer(t *testing.T) {
	// The error event aborts collection while the producer still has
	// events queued behind it.
	m := model.NewScriptedModel(model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted", Role: core.RoleAssistant},
		stream.ErrorEvent{Kind: "overloaded_error", Message: "try again later"},
		stream.ContentBlockDelta{Index: 0, Delta: stream.TextDelta{Text: "never consumed"}},
		stream.MessageStop{},
	}})
	run := NewRun("Hi", Deps{Model: m})

	before := runtime.NumGoroutine()
	_, err := drive(t, run)
	var protocolErr *stream.ProtocolError
	require.ErrorAs(t, err, &protocolErr)

	// The step-scoped cancel must unpark the producer from its channel
	// send even though the run's own context is still live.
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}

func TestRun_ExecuteToolsRequiresAssistantMessage(t *testing.T) {
	run := NewRun("Hi", Deps{Model: model.NewScriptedModel(), Tools: echoRegistry()})
	run.node = NodeExecuteTools
	run.state.History = []core.Message{core.NewUserTextMessage("Hi")}

	node, ok, err := run.Next(context.Background())
	assert.True(t, ok)
	assert.Equal(t, NodeExecuteTools, node)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, NodeExecuteTools, invalid.From)
	assert.True(t, run.Finished())
}

func TestRun_NoFurtherStepsAfterFailure(t *testing.T) {
	m := model.NewScriptedModel(model.Script{Err: assert.AnError})
	run := NewRun("Hi", Deps{Model: m})

	_, err := drive(t, run)
	require.Error(t, err)

	node, ok, err := run.Next(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, NodeRequestModel, node)
	assert.Equal(t, 1, m.Calls())
}

func TestRun_NoFurtherStepsAfterEnd(t *testing.T) {
	m := model.NewScriptedModel(textScript("done", core.StopReasonEndTurn))
	run := NewRun("Hi", Deps{Model: m})

	_, err := drive(t, run)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ok, err := run.Next(context.Background())
		assert.False(t, ok)
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, m.Calls())
}

func TestRun_NoResultWithoutAssistantText(t *testing.T) {
	// Assistant ends the turn with empty content.
	script := model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted"},
		stream.MessageDelta{StopReason: core.StopReasonEndTurn},
		stream.MessageStop{},
	}}
	m := model.NewScriptedModel(script)
	run := NewRun("Hi", Deps{Model: m})

	_, err := drive(t, run)
	require.NoError(t, err)

	_, err = run.Result()
	assert.ErrorIs(t, err, ErrNoResult)
}

// -------------------- Stream Wrapping --------------------

func TestRun_WrapperObservesModelEvents(t *testing.T) {
	m := model.NewScriptedModel(textScript("Hello!", core.StopReasonEndTurn))

	var text string
	wrapper := stream.WrapperFunc(func(ev stream.Event) {
		if d, ok := ev.(stream.ContentBlockDelta); ok {
			if td, ok := d.Delta.(stream.TextDelta); ok {
				text += td.Text
			}
		}
	})
	run := NewRun("Hi", Deps{Model: m, Wrapper: wrapper})

	_, err := drive(t, run)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)
}

// -------------------- First Tool Wins --------------------

func TestRun_OnlyFirstToolUseDispatched(t *testing.T) {
	script := model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted"},
		stream.ContentBlockStart{Index: 0, Block: stream.ToolUseStart{ID: "tu_1", Name: "echo", Input: json.RawMessage(`{"text":"first"}`)}},
		stream.ContentBlockStop{Index: 0},
		stream.ContentBlockStart{Index: 1, Block: stream.ToolUseStart{ID: "tu_2", Name: "echo", Input: json.RawMessage(`{"text":"second"}`)}},
		stream.ContentBlockStop{Index: 1},
		stream.MessageDelta{StopReason: core.StopReasonToolUse},
		stream.MessageStop{},
	}}
	m := model.NewScriptedModel(
		script,
		textScript("done", core.StopReasonEndTurn),
	)
	run := NewRun("Hi", Deps{Model: m, Tools: echoRegistry()})

	_, err := drive(t, run)
	require.NoError(t, err)

	state := run.State()
	assert.Equal(t, map[string]string{"tu_1": "first"}, state.ToolOutputs)
}

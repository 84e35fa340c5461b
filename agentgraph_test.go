package agentgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/stream"
	"github.com/hupe1980/agentgraph/tool"
)

func textTurn(text string, reason core.StopReason) model.Script {
	return model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted", Role: core.RoleAssistant},
		stream.ContentBlockStart{Index: 0, Block: stream.TextStart{}},
		stream.ContentBlockDelta{Index: 0, Delta: stream.TextDelta{Text: text}},
		stream.ContentBlockStop{Index: 0},
		stream.MessageDelta{StopReason: reason},
		stream.MessageStop{},
	}}
}

func toolTurn(id, name, input string) model.Script {
	return model.Script{Events: []stream.Event{
		stream.MessageStart{ID: "msg_1", Model: "scripted", Role: core.RoleAssistant},
		stream.ContentBlockStart{Index: 0, Block: stream.ToolUseStart{ID: id, Name: name}},
		stream.ContentBlockDelta{Index: 0, Delta: stream.InputJSONDelta{PartialJSON: input}},
		stream.ContentBlockStop{Index: 0},
		stream.MessageDelta{StopReason: core.StopReasonToolUse},
		stream.MessageStop{},
	}}
}

func TestAgent_Run(t *testing.T) {
	m := model.NewScriptedModel(textTurn("Hello!", core.StopReasonEndTurn))
	agent := New(m)

	result, err := agent.Run(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", result)
}

func TestAgent_RunWithTools(t *testing.T) {
	echo := tool.NewFunctionTool("echo", "Echoes its input",
		func(_ context.Context, input struct {
			Text string `json:"text"`
		}) (tool.Result, error) {
			return tool.Result{Content: input.Text}, nil
		})

	m := model.NewScriptedModel(
		toolTurn("tu_1", "echo", `{"text":"pong"}`),
		textTurn("Got pong.", core.StopReasonEndTurn),
	)
	agent := New(m, func(o *Options) {
		o.SystemPrompt = "You may call tools."
		o.Tools = tool.NewRegistry(echo)
	})

	result, err := agent.Run(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "Got pong.", result)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "You may call tools.", reqs[0].System)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "echo", reqs[0].Tools[0].Name)
}

func TestAgent_NewRunStepwise(t *testing.T) {
	m := model.NewScriptedModel(textTurn("done", core.StopReasonEndTurn))
	agent := New(m)

	run := agent.NewRun("Hi")
	assert.Equal(t, graph.NodeStart, run.Node())

	var nodes []graph.Node
	for {
		node, ok, err := run.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		nodes = append(nodes, node)
	}
	assert.Equal(t, []graph.Node{graph.NodeStart, graph.NodeRequestModel, graph.NodeEnd}, nodes)
}

func TestAgent_RunSurfacesFailure(t *testing.T) {
	m := model.NewScriptedModel(textTurn("truncated", core.StopReasonMaxTokens))
	agent := New(m)

	_, err := agent.Run(context.Background(), "Hi")
	assert.ErrorIs(t, err, graph.ErrMaxTokens)
}

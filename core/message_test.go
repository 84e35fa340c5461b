package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserTextMessage(t *testing.T) {
	msg := NewUserTextMessage("hello")
	assert.Equal(t, RoleUser, msg.Role)
	text, ok := msg.FirstText()
	require.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage("tu_1", "output")
	assert.Equal(t, RoleUser, msg.Role)
	require.Len(t, msg.Content, 1)
	result, ok := msg.Content[0].(ToolResultBlock)
	require.True(t, ok)
	assert.Equal(t, "tu_1", result.ToolUseID)
	assert.Equal(t, "output", result.Content)
}

func TestMessage_FirstToolUsePreservesBlockOrder(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Content: []ContentBlock{
			TextBlock{Text: "checking"},
			ToolUseBlock{ID: "tu_1", Name: "a", Input: json.RawMessage(`{}`)},
			ToolUseBlock{ID: "tu_2", Name: "b", Input: json.RawMessage(`{}`)},
		},
	}

	use, ok := msg.FirstToolUse()
	require.True(t, ok)
	assert.Equal(t, "tu_1", use.ID)

	uses := msg.ToolUses()
	require.Len(t, uses, 2)
	assert.Equal(t, "tu_2", uses[1].ID)
}

func TestMessage_LookupsOnEmptyMessage(t *testing.T) {
	var msg Message
	_, ok := msg.FirstText()
	assert.False(t, ok)
	_, ok = msg.FirstToolUse()
	assert.False(t, ok)
	assert.Empty(t, msg.ToolUses())
}

func TestResponse_ToMessage(t *testing.T) {
	resp := Response{
		ID:   "msg_1",
		Role: RoleAssistant,
		Content: []ContentBlock{
			TextBlock{Text: "hi"},
		},
		StopReason: StopReasonEndTurn,
	}

	msg := resp.ToMessage()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, resp.Content, msg.Content)
}

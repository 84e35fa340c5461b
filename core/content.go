package core

import "encoding/json"

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks caller-authored messages, including tool results.
	RoleUser Role = "user"
	// RoleAssistant marks model-authored messages.
	RoleAssistant Role = "assistant"
)

// ContentBlock represents one typed unit of message content. Concrete block
// types implement the unexported isContentBlock marker enabling a closed set.
type ContentBlock interface{ isContentBlock() }

// TextBlock is a plain text content segment.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) isContentBlock() {}

// ToolUseBlock is a model request to invoke a named tool. Input carries the
// raw structured arguments exactly as produced by the model; it is only
// decoded at dispatch time against the concrete tool's input shape.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (ToolUseBlock) isContentBlock() {}

// ToolResultBlock carries the outcome of a previously requested tool
// invocation back to the model. ToolUseID matches the originating
// ToolUseBlock.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
}

func (ToolResultBlock) isContentBlock() {}

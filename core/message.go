package core

// Message is one conversational turn: a role plus an ordered sequence of
// content blocks. Messages are append-only within a run; helpers return
// copies or read-only views and never mutate.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserTextMessage builds a user message containing a single text block.
func NewUserTextMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock{Text: text}}}
}

// NewToolResultMessage builds the user-role message carrying a single tool
// result block, as expected by vendors after a tool_use stop.
func NewToolResultMessage(toolUseID, content string) Message {
	return Message{
		Role:    RoleUser,
		Content: []ContentBlock{ToolResultBlock{ToolUseID: toolUseID, Content: content}},
	}
}

// FirstText returns the first text block's content, preserving block order.
func (m Message) FirstText() (string, bool) {
	for _, b := range m.Content {
		if tb, ok := b.(TextBlock); ok {
			return tb.Text, true
		}
	}
	return "", false
}

// FirstToolUse returns the first tool-use block, preserving block order.
// Additional tool-use blocks in the same message are deliberately not
// surfaced here; dispatch handles one tool per turn.
func (m Message) FirstToolUse() (ToolUseBlock, bool) {
	for _, b := range m.Content {
		if tu, ok := b.(ToolUseBlock); ok {
			return tu, true
		}
	}
	return ToolUseBlock{}, false
}

// ToolUses returns all tool-use blocks in block order.
func (m Message) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, b := range m.Content {
		if tu, ok := b.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}

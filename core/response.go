package core

// StopReason classifies why the model stopped producing output for a turn.
// The zero value means the model never reported a reason.
type StopReason string

const (
	// StopReasonNone is the absence of a reported stop reason.
	StopReasonNone StopReason = ""
	// StopReasonEndTurn means the model finished its turn naturally.
	StopReasonEndTurn StopReason = "end_turn"
	// StopReasonMaxTokens means generation was cut off at the token limit.
	StopReasonMaxTokens StopReason = "max_tokens"
	// StopReasonStopSequence means a configured stop sequence was produced.
	StopReasonStopSequence StopReason = "stop_sequence"
	// StopReasonToolUse means the model is requesting tool execution.
	StopReasonToolUse StopReason = "tool_use"
)

// Usage captures token accounting for one model turn.
type Usage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens,omitempty"`
}

// Response is one fully reconstructed model turn. Content is ordered strictly
// by original block index, independent of event arrival order. A Response is
// built once per model request, converted into a Message and discarded.
type Response struct {
	ID           string         `json:"id"`
	Model        string         `json:"model"`
	Role         Role           `json:"role"`
	Content      []ContentBlock `json:"content"`
	StopReason   StopReason     `json:"stop_reason,omitempty"`
	StopSequence string         `json:"stop_sequence,omitempty"`
	Usage        Usage          `json:"usage"`
}

// ToMessage converts the response into an assistant message for appending to
// conversation history. The content slice is shared, not copied; responses
// are discarded after conversion.
func (r *Response) ToMessage() Message {
	return Message{Role: RoleAssistant, Content: r.Content}
}

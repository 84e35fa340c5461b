// Package openai adapts the OpenAI Chat Completions API (streaming, with
// tool calling) to the generic model.Model interface. Chunk deltas are
// translated into the same wire-event vocabulary the Anthropic adapter
// produces, so a single aggregator serves both vendors: text deltas become
// block 0, each tool call occupies its own block above it, and the finish
// reason maps onto a stop-reason classification.
package openai

import (
	"context"
	"fmt"
	"sort"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/stream"
)

const defaultMaxTokens = 4096

// textBlockIndex is the wire index reserved for the single streamed text
// block; tool-call blocks are offset above it.
const textBlockIndex = 0

// Options configure the OpenAI model adapter.
type Options struct {
	Model string
}

// Model wraps the OpenAI Chat Completions API behind the generic
// model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{Model: openai.ChatModelGPT4oMini}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Stream implements model.Model.
func (m *Model) Stream(ctx context.Context, req model.Request) (<-chan stream.Event, <-chan error) {
	out := make(chan stream.Event)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		emit := func(ev stream.Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				errCh <- ctx.Err()
				return false
			}
		}

		params := m.buildParams(req)
		sdkStream := m.client.Chat.Completions.NewStreaming(ctx, params)

		tr := newTranslator()
		for sdkStream.Next() {
			for _, ev := range tr.apply(sdkStream.Current()) {
				if !emit(ev) {
					return
				}
			}
		}
		if err := sdkStream.Err(); err != nil {
			errCh <- fmt.Errorf("openai streaming error: %w", err)
			return
		}
		for _, ev := range tr.finish() {
			if !emit(ev) {
				return
			}
		}
	}()

	return out, errCh
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

// buildParams assembles the Chat Completions request.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, def := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        def.Name,
					Description: openai.String(def.Description),
					Parameters:  def.InputSchema,
				},
			}
		}
		params.Tools = tools
	}
	return params
}

// buildMessages converts conversation history into chat messages, splitting
// tool results out into tool-role messages as the API requires.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case core.RoleAssistant:
			messages = append(messages, buildAssistantMessage(msg))
		default:
			for _, b := range msg.Content {
				switch block := b.(type) {
				case core.TextBlock:
					if block.Text != "" {
						messages = append(messages, openai.UserMessage(block.Text))
					}
				case core.ToolResultBlock:
					messages = append(messages, openai.ToolMessage(block.Content, block.ToolUseID))
				}
			}
		}
	}
	return messages
}

func buildAssistantMessage(msg core.Message) openai.ChatCompletionMessageParamUnion {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	text, _ := msg.FirstText()
	for _, use := range msg.ToolUses() {
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   use.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      use.Name,
				Arguments: string(use.Input),
			},
		})
	}
	if len(toolCalls) == 0 {
		return openai.AssistantMessage(text)
	}
	assistant := &openai.ChatCompletionAssistantMessageParam{
		Role:      "assistant",
		ToolCalls: toolCalls,
	}
	if text != "" {
		assistant.Content.OfString = openai.String(text)
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: assistant}
}

// translator reconstructs block-structured wire events from flat chunk
// deltas. Text occupies block 0; tool call i occupies block i+1.
type translator struct {
	startSent    bool
	textOpen     bool
	toolOpen     map[int64]bool
	finishReason string
	usage        *core.Usage
}

func newTranslator() *translator {
	return &translator{toolOpen: make(map[int64]bool)}
}

func (tr *translator) apply(ck openai.ChatCompletionChunk) []stream.Event {
	var events []stream.Event

	if !tr.startSent {
		tr.startSent = true
		events = append(events, stream.MessageStart{
			ID:    ck.ID,
			Model: ck.Model,
			Role:  core.RoleAssistant,
		})
	}
	if ck.Usage.TotalTokens > 0 {
		tr.usage = &core.Usage{
			InputTokens:  ck.Usage.PromptTokens,
			OutputTokens: ck.Usage.CompletionTokens,
		}
	}

	for _, choice := range ck.Choices {
		if choice.Delta.Content != "" {
			if !tr.textOpen {
				tr.textOpen = true
				events = append(events, stream.ContentBlockStart{
					Index: textBlockIndex,
					Block: stream.TextStart{},
				})
			}
			events = append(events, stream.ContentBlockDelta{
				Index: textBlockIndex,
				Delta: stream.TextDelta{Text: choice.Delta.Content},
			})
		}
		for _, tc := range choice.Delta.ToolCalls {
			index := textBlockIndex + 1 + int(tc.Index)
			if !tr.toolOpen[tc.Index] {
				tr.toolOpen[tc.Index] = true
				events = append(events, stream.ContentBlockStart{
					Index: index,
					Block: stream.ToolUseStart{ID: tc.ID, Name: tc.Function.Name},
				})
			}
			if tc.Function.Arguments != "" {
				events = append(events, stream.ContentBlockDelta{
					Index: index,
					Delta: stream.InputJSONDelta{PartialJSON: tc.Function.Arguments},
				})
			}
		}
		if choice.FinishReason != "" {
			tr.finishReason = choice.FinishReason
		}
	}

	return events
}

// finish closes every open block and terminates the message once the chunk
// stream is exhausted.
func (tr *translator) finish() []stream.Event {
	var events []stream.Event
	if tr.textOpen {
		events = append(events, stream.ContentBlockStop{Index: textBlockIndex})
	}
	indices := make([]int64, 0, len(tr.toolOpen))
	for i := range tr.toolOpen {
		indices = append(indices, i)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, i := range indices {
		events = append(events, stream.ContentBlockStop{Index: textBlockIndex + 1 + int(i)})
	}
	events = append(events,
		stream.MessageDelta{StopReason: stopReason(tr.finishReason), Usage: tr.usage},
		stream.MessageStop{},
	)
	return events
}

// stopReason maps a Chat Completions finish reason onto the normalized
// classification.
func stopReason(finishReason string) core.StopReason {
	switch finishReason {
	case "stop", "content_filter":
		return core.StopReasonEndTurn
	case "length":
		return core.StopReasonMaxTokens
	case "tool_calls", "function_call":
		return core.StopReasonToolUse
	default:
		return core.StopReasonNone
	}
}

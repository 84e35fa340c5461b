// Package anthropic adapts the Anthropic Messages API (streaming) to the
// generic model.Model interface, translating SDK stream events into the
// wire-event vocabulary consumed by the aggregator.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/stream"
)

const defaultMaxTokens = 4096

// Options configures the Anthropic model adapter.
type Options struct {
	Model   anthropic.Model
	APIKey  string
	BaseURL string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{Model: anthropic.ModelClaude3_5Sonnet20241022}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{Model: anthropic.ModelClaude3_5Sonnet20241022}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Stream implements model.Model. It opens a streaming Messages request and
// forwards each SDK event, converted, in arrival order. The goroutine exits
// promptly on ctx cancellation (the SDK stream honors the request context).
func (m *Model) Stream(ctx context.Context, req model.Request) (<-chan stream.Event, <-chan error) {
	out := make(chan stream.Event)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params, err := m.buildParams(req)
		if err != nil {
			errCh <- err
			return
		}

		sdkStream := m.client.Messages.NewStreaming(ctx, params)
		for sdkStream.Next() {
			for _, ev := range convertEvent(sdkStream.Current()) {
				select {
				case out <- ev:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}
		if err := sdkStream.Err(); err != nil {
			errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		}
	}()

	return out, errCh
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

// buildParams assembles the Messages API request from the normalized request.
func (m *Model) buildParams(req model.Request) (anthropic.MessageNewParams, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	messages, err := buildMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     m.opts.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	return params, nil
}

// buildMessages converts conversation history to Anthropic message params.
func buildMessages(history []core.Message) ([]anthropic.MessageParam, error) {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, msg := range history {
		var blocks []anthropic.ContentBlockParamUnion
		for _, b := range msg.Content {
			switch block := b.(type) {
			case core.TextBlock:
				if block.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(block.Text))
				}
			case core.ToolUseBlock:
				input := block.Input
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(block.ID, input, block.Name))
			case core.ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(block.ToolUseID, block.Content, false))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		switch msg.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		case core.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		default:
			return nil, fmt.Errorf("anthropic: unsupported role %q", msg.Role)
		}
	}
	return messages, nil
}

// buildTools converts tool declarations to the Anthropic tool format.
func buildTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if def.InputSchema != nil {
			if properties, exists := def.InputSchema["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := def.InputSchema["required"]; exists {
				inputSchema.Required = requiredStrings(required)
			}
		}
		tools[i] = anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: inputSchema,
		}}
	}
	return tools
}

// requiredStrings normalizes a schema "required" entry, which decodes as
// either []string or []any depending on its origin.
func requiredStrings(required any) []string {
	switch req := required.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// convertEvent translates one SDK stream event into wire events. Unknown
// vendor additions convert to nothing rather than failing the stream.
func convertEvent(ev anthropic.MessageStreamEventUnion) []stream.Event {
	switch v := ev.AsAny().(type) {
	case anthropic.MessageStartEvent:
		usage := core.Usage{
			InputTokens:              v.Message.Usage.InputTokens,
			OutputTokens:             v.Message.Usage.OutputTokens,
			CacheCreationInputTokens: v.Message.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     v.Message.Usage.CacheReadInputTokens,
		}
		return []stream.Event{stream.MessageStart{
			ID:    v.Message.ID,
			Model: string(v.Message.Model),
			Role:  core.RoleAssistant,
			Usage: &usage,
		}}

	case anthropic.ContentBlockStartEvent:
		start := convertBlockStart(v)
		if start == nil {
			return nil
		}
		return []stream.Event{stream.ContentBlockStart{Index: int(v.Index), Block: start}}

	case anthropic.ContentBlockDeltaEvent:
		delta := convertDelta(v)
		if delta == nil {
			return nil
		}
		return []stream.Event{stream.ContentBlockDelta{Index: int(v.Index), Delta: delta}}

	case anthropic.ContentBlockStopEvent:
		return []stream.Event{stream.ContentBlockStop{Index: int(v.Index)}}

	case anthropic.MessageDeltaEvent:
		return []stream.Event{stream.MessageDelta{
			StopReason:   core.StopReason(v.Delta.StopReason),
			StopSequence: v.Delta.StopSequence,
			Usage:        &core.Usage{OutputTokens: v.Usage.OutputTokens},
		}}

	case anthropic.MessageStopEvent:
		return []stream.Event{stream.MessageStop{}}

	default:
		return nil
	}
}

func convertBlockStart(ev anthropic.ContentBlockStartEvent) stream.BlockStart {
	switch block := ev.ContentBlock.AsAny().(type) {
	case anthropic.TextBlock:
		return stream.TextStart{Text: block.Text}
	case anthropic.ToolUseBlock:
		return stream.ToolUseStart{ID: block.ID, Name: block.Name, Input: block.Input}
	case anthropic.ThinkingBlock:
		return stream.ThinkingStart{Thinking: block.Thinking}
	default:
		return nil
	}
}

func convertDelta(ev anthropic.ContentBlockDeltaEvent) stream.Delta {
	switch delta := ev.Delta.AsAny().(type) {
	case anthropic.TextDelta:
		return stream.TextDelta{Text: delta.Text}
	case anthropic.InputJSONDelta:
		return stream.InputJSONDelta{PartialJSON: delta.PartialJSON}
	case anthropic.ThinkingDelta:
		return stream.ThinkingDelta{Thinking: delta.Thinking}
	case anthropic.SignatureDelta:
		return stream.SignatureDelta{Signature: delta.Signature}
	default:
		return nil
	}
}

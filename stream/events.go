package stream

import (
	"encoding/json"

	"github.com/hupe1980/agentgraph/core"
)

// Event is one incremental unit of a streamed model response. Concrete event
// types implement the unexported isEvent marker enabling a closed set, so a
// new vendor event kind forces an explicit classification at compile time.
type Event interface{ isEvent() }

// MessageStart opens a response and seeds its identity and initial usage.
type MessageStart struct {
	ID    string
	Model string
	Role  core.Role
	Usage *core.Usage
}

func (MessageStart) isEvent() {}

// ContentBlockStart opens the content block at Index with an initial payload.
type ContentBlockStart struct {
	Index int
	Block BlockStart
}

func (ContentBlockStart) isEvent() {}

// BlockStart is the initial payload of a content block. Closed set.
type BlockStart interface{ isBlockStart() }

// TextStart opens a text block, possibly with initial text.
type TextStart struct {
	Text string
}

func (TextStart) isBlockStart() {}

// ToolUseStart opens a tool-use block. Input may be empty or partial; the
// complete input is assembled from InputJSONDelta fragments.
type ToolUseStart struct {
	ID    string
	Name  string
	Input json.RawMessage
}

func (ToolUseStart) isBlockStart() {}

// ThinkingStart opens a thinking block. Thinking blocks are tracked during
// aggregation but never surface in the final response.
type ThinkingStart struct {
	Thinking string
}

func (ThinkingStart) isBlockStart() {}

// ContentBlockDelta appends an incremental payload to the block at Index.
type ContentBlockDelta struct {
	Index int
	Delta Delta
}

func (ContentBlockDelta) isEvent() {}

// Delta is one incremental content payload. Closed set.
type Delta interface{ isDelta() }

// TextDelta appends text to a text block.
type TextDelta struct {
	Text string
}

func (TextDelta) isDelta() {}

// InputJSONDelta carries a fragment of a tool-use block's input. Fragments
// are not independently parseable; they are buffered verbatim and parsed as
// one value when the block stops.
type InputJSONDelta struct {
	PartialJSON string
}

func (InputJSONDelta) isDelta() {}

// ThinkingDelta extends a thinking block; discarded during aggregation.
type ThinkingDelta struct {
	Thinking string
}

func (ThinkingDelta) isDelta() {}

// SignatureDelta carries a thinking-block signature; discarded during
// aggregation.
type SignatureDelta struct {
	Signature string
}

func (SignatureDelta) isDelta() {}

// ContentBlockStop closes the content block at Index. For tool-use blocks
// this is the point where buffered input fragments are parsed.
type ContentBlockStop struct {
	Index int
}

func (ContentBlockStop) isEvent() {}

// MessageDelta updates message-level metadata. Later occurrences overwrite
// earlier ones; only one is expected per response.
type MessageDelta struct {
	StopReason   core.StopReason
	StopSequence string
	Usage        *core.Usage
}

func (MessageDelta) isEvent() {}

// MessageStop marks the logical end of useful data in the sequence.
type MessageStop struct{}

func (MessageStop) isEvent() {}

// Ping is a keepalive; it carries no data and is ignored.
type Ping struct{}

func (Ping) isEvent() {}

// ErrorEvent is an in-band error reported by the producer. It aborts
// aggregation; it is never treated as end-of-stream.
type ErrorEvent struct {
	Kind    string
	Message string
}

func (ErrorEvent) isEvent() {}

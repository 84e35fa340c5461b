package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agentgraph/core"
)

type blockKind int

const (
	blockText blockKind = iota
	blockToolUse
	blockThinking
)

// blockEntry accumulates one content block keyed by its wire index.
type blockEntry struct {
	kind     blockKind
	text     strings.Builder
	toolID   string
	toolName string
	input    json.RawMessage
}

// Aggregator folds an ordered event sequence into one complete response. It
// performs no cross-event reordering and no concurrent buffer access: events
// must be applied one at a time, strictly in arrival order.
//
// The zero value is not usable; construct with NewAggregator.
type Aggregator struct {
	id           string
	model        string
	role         core.Role
	stopReason   core.StopReason
	stopSequence string
	usage        core.Usage
	blocks       map[int]*blockEntry
	jsonBufs     map[int]*strings.Builder
	stopped      bool
}

// NewAggregator returns an empty aggregator ready to consume one sequence.
func NewAggregator() *Aggregator {
	return &Aggregator{
		role:     core.RoleAssistant,
		blocks:   make(map[int]*blockEntry),
		jsonBufs: make(map[int]*strings.Builder),
	}
}

// Apply folds a single event into the aggregate. It reports done=true once
// MessageStop has been seen; callers may stop consuming at that point, and
// any events applied afterwards are ignored. A non-nil error aborts the
// whole aggregation: the partially built response must never be used.
func (a *Aggregator) Apply(ev Event) (done bool, err error) {
	if a.stopped {
		return true, nil
	}

	switch e := ev.(type) {
	case MessageStart:
		a.id = e.ID
		a.model = e.Model
		if e.Role != "" {
			a.role = e.Role
		}
		if e.Usage != nil {
			a.usage = *e.Usage
		}

	case ContentBlockStart:
		a.applyBlockStart(e.Index, e.Block)

	case ContentBlockDelta:
		return false, a.applyDelta(e.Index, e.Delta)

	case ContentBlockStop:
		return false, a.closeBlock(e.Index)

	case MessageDelta:
		// Last write wins, including clearing back to the zero value.
		a.stopReason = e.StopReason
		a.stopSequence = e.StopSequence
		if e.Usage != nil {
			a.usage = *e.Usage
		}

	case MessageStop:
		a.stopped = true
		return true, nil

	case Ping:
		// Keepalive only.

	case ErrorEvent:
		return false, &ProtocolError{Msg: fmt.Sprintf("error event (%s): %s", e.Kind, e.Message)}

	default:
		return false, &ProtocolError{Msg: fmt.Sprintf("unhandled event type %T", ev)}
	}

	return false, nil
}

func (a *Aggregator) applyBlockStart(index int, start BlockStart) {
	switch b := start.(type) {
	case TextStart:
		entry := &blockEntry{kind: blockText}
		entry.text.WriteString(b.Text)
		a.blocks[index] = entry
	case ToolUseStart:
		a.blocks[index] = &blockEntry{
			kind:     blockToolUse,
			toolID:   b.ID,
			toolName: b.Name,
			input:    b.Input,
		}
	case ThinkingStart:
		// Tracked so the index is accounted for, excluded from final output.
		a.blocks[index] = &blockEntry{kind: blockThinking}
	}
}

func (a *Aggregator) applyDelta(index int, delta Delta) error {
	switch d := delta.(type) {
	case TextDelta:
		if entry, ok := a.blocks[index]; ok && entry.kind == blockText {
			entry.text.WriteString(d.Text)
			return nil
		}
		// Tolerate a missing ContentBlockStart: create the text block on
		// first delta.
		entry := &blockEntry{kind: blockText}
		entry.text.WriteString(d.Text)
		a.blocks[index] = entry
	case InputJSONDelta:
		buf, ok := a.jsonBufs[index]
		if !ok {
			buf = &strings.Builder{}
			a.jsonBufs[index] = buf
		}
		buf.WriteString(d.PartialJSON)
	case ThinkingDelta, SignatureDelta:
		// Never surfaced in the final response.
	}
	return nil
}

// closeBlock parses any buffered tool input for the index. Fragments only
// form a parseable value once the block closes; a parse failure aborts the
// aggregation so partially trusted tool input is never returned.
func (a *Aggregator) closeBlock(index int) error {
	buf, ok := a.jsonBufs[index]
	if !ok {
		return nil
	}
	delete(a.jsonBufs, index)

	raw := buf.String()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return &ProtocolError{Msg: fmt.Sprintf("invalid tool input json for block %d", index), Err: err}
	}
	if entry, ok := a.blocks[index]; ok && entry.kind == blockToolUse {
		entry.input = json.RawMessage(raw)
	}
	return nil
}

// Finalize assembles the response with content sorted ascending by block
// index. It fails if the sequence never reached MessageStop.
func (a *Aggregator) Finalize() (*core.Response, error) {
	if !a.stopped {
		return nil, &ProtocolError{Msg: "incomplete response", Err: ErrNoMessageStop}
	}

	indices := make([]int, 0, len(a.blocks))
	for i := range a.blocks {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var content []core.ContentBlock
	for _, i := range indices {
		entry := a.blocks[i]
		switch entry.kind {
		case blockText:
			content = append(content, core.TextBlock{Text: entry.text.String()})
		case blockToolUse:
			content = append(content, core.ToolUseBlock{
				ID:    entry.toolID,
				Name:  entry.toolName,
				Input: entry.input,
			})
		case blockThinking:
			// Excluded from the final response.
		}
	}

	return &core.Response{
		ID:           a.id,
		Model:        a.model,
		Role:         a.role,
		Content:      content,
		StopReason:   a.stopReason,
		StopSequence: a.stopSequence,
		Usage:        a.usage,
	}, nil
}

// Collect consumes events produced by one model request and returns the
// reconstructed response. It stops consuming after MessageStop. Cancellation
// of ctx aborts promptly with ctx.Err(); a closed event channel without a
// prior MessageStop fails with a ProtocolError wrapping ErrNoMessageStop; an
// error received on errs aborts immediately and is returned verbatim.
func Collect(ctx context.Context, events <-chan Event, errs <-chan error) (*core.Response, error) {
	agg := NewAggregator()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return nil, err
			}
		case ev, ok := <-events:
			if !ok {
				return agg.Finalize()
			}
			done, err := agg.Apply(ev)
			if err != nil {
				return nil, err
			}
			if done {
				return agg.Finalize()
			}
		}
	}
}

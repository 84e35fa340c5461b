package stream

import "context"

// Wrapper decorates an event sequence as it flows from producer to
// aggregator, e.g. to print text deltas to a terminal as they arrive. The
// returned channel must yield every event of the input in the same order and
// must be closed when the input closes or ctx is cancelled.
type Wrapper interface {
	Wrap(ctx context.Context, events <-chan Event) <-chan Event
}

// WrapperFunc adapts a per-event observer into a Wrapper. The observer is
// invoked synchronously for each event before forwarding.
type WrapperFunc func(Event)

// Wrap implements Wrapper.
func (fn WrapperFunc) Wrap(ctx context.Context, events <-chan Event) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for ev := range events {
			fn(ev)
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// NopWrapper passes the sequence through unchanged.
type NopWrapper struct{}

// Wrap implements Wrapper.
func (NopWrapper) Wrap(_ context.Context, events <-chan Event) <-chan Event { return events }

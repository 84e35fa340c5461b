package graph

import (
	"errors"
	"fmt"
)

// ErrMaxTokens indicates the model stopped generating because it hit the
// output token limit. The truncated assistant message is still appended to
// history before the run fails.
var ErrMaxTokens = errors.New("model stopped early: max tokens reached")

// ErrNoResult indicates a finished run produced no assistant text to return.
var ErrNoResult = errors.New("run produced no result")

// InvalidTransitionError reports a node behavior that requested a transition
// outside the edge table.
type InvalidTransitionError struct {
	From       Node
	Transition string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %q from node %q", e.Transition, e.From)
}

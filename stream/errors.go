package stream

import (
	"errors"
	"fmt"
)

// ErrNoMessageStop reports a sequence whose producer was exhausted without
// ever emitting MessageStop. Truncation is an explicit failure, never a
// silent success.
var ErrNoMessageStop = errors.New("stream ended before message_stop")

// ProtocolError reports a malformed or prematurely terminated event sequence:
// an in-band error event, an unparseable tool-input buffer, or a missing
// MessageStop. It wraps the underlying cause where one exists.
type ProtocolError struct {
	Msg string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("stream: %s", e.Msg)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

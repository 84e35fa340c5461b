package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentgraph/stream"
)

// Script is the canned event sequence (or error) one Stream call plays back.
type Script struct {
	Events []stream.Event
	Err    error
}

// ScriptedModel is a deterministic in-memory Model for tests and examples.
// Each Stream call plays back the next registered script in order; calls
// beyond the last script fail. Requests are recorded for assertions.
type ScriptedModel struct {
	mu       sync.Mutex
	scripts  []Script
	calls    int
	requests []Request
}

// NewScriptedModel constructs a model that replays the given scripts.
func NewScriptedModel(scripts ...Script) *ScriptedModel {
	return &ScriptedModel{scripts: scripts}
}

// Requests returns a copy of every request received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls reports how many times Stream has been invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Stream implements Model.
func (m *ScriptedModel) Stream(ctx context.Context, req Request) (<-chan stream.Event, <-chan error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	idx := m.calls
	m.calls++
	var script Script
	if idx < len(m.scripts) {
		script = m.scripts[idx]
	} else {
		script = Script{Err: fmt.Errorf("scripted model: no script for call %d", idx+1)}
	}
	m.mu.Unlock()

	out := make(chan stream.Event)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		for _, ev := range script.Events {
			select {
			case out <- ev:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		if script.Err != nil {
			errCh <- script.Err
		}
	}()

	return out, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/stream"
)

func TestScriptedModel_PlaysScriptsInOrder(t *testing.T) {
	m := NewScriptedModel(
		Script{Events: []stream.Event{stream.MessageStart{ID: "first"}, stream.MessageStop{}}},
		Script{Events: []stream.Event{stream.MessageStart{ID: "second"}, stream.MessageStop{}}},
	)

	for _, want := range []string{"first", "second"} {
		events, errs := m.Stream(context.Background(), Request{})
		start, ok := (<-events).(stream.MessageStart)
		require.True(t, ok)
		assert.Equal(t, want, start.ID)
		for range events {
		}
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, 2, m.Calls())
}

func TestScriptedModel_RecordsRequests(t *testing.T) {
	m := NewScriptedModel(Script{Events: []stream.Event{stream.MessageStop{}}})

	events, _ := m.Stream(context.Background(), Request{System: "be brief"})
	for range events {
	}

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be brief", reqs[0].System)
}

func TestScriptedModel_CallBeyondScriptsFails(t *testing.T) {
	m := NewScriptedModel()

	events, errs := m.Stream(context.Background(), Request{})
	for range events {
	}
	assert.Error(t, <-errs)
}

func TestScriptedModel_PlaysScriptError(t *testing.T) {
	m := NewScriptedModel(Script{
		Events: []stream.Event{stream.MessageStart{ID: "x"}},
		Err:    assert.AnError,
	})

	events, errs := m.Stream(context.Background(), Request{})
	for range events {
	}
	assert.ErrorIs(t, <-errs, assert.AnError)
}

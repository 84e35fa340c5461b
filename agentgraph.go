// Package agentgraph provides a high-level façade over the conversation
// graph, the streaming aggregator and the tool dispatcher. Most applications
// interact with this package by:
//  1. Creating an Agent via New() with a model backend
//  2. Registering tools and an optional stream wrapper
//  3. Driving a conversation synchronously (Run) or step by step (NewRun)
//
// The façade delegates orchestration to graph.Run while keeping setup and
// usage ergonomics concise.
package agentgraph

import (
	"context"

	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
	"github.com/hupe1980/agentgraph/stream"
	"github.com/hupe1980/agentgraph/tool"
)

// Options configures the Agent.
type Options struct {
	// SystemPrompt is prepended to every conversation.
	SystemPrompt string

	// MaxTokens caps the model's output per turn. Zero selects the
	// backend default.
	MaxTokens int64

	// Temperature is the sampling temperature. Nil selects the backend
	// default.
	Temperature *float64

	// Tools the model may call. Nil means no tools are offered.
	Tools *tool.Registry

	// Wrapper observes the raw event stream of every model turn, e.g. for
	// live output. Nil disables wrapping.
	Wrapper stream.Wrapper

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Agent is the high-level façade binding a model backend to a tool registry
// and conversation defaults.
type Agent struct {
	model model.Model
	opts  Options
}

// New creates a new Agent with optional overrides.
func New(m model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Agent{model: m, opts: opts}
}

// NewRun starts a conversation for the given prompt, positioned before its
// first step. Callers advance it with Next and may inspect state between
// steps.
func (a *Agent) NewRun(prompt string) *graph.Run {
	return graph.NewRun(prompt, graph.Deps{
		Model:        a.model,
		Tools:        a.opts.Tools,
		SystemPrompt: a.opts.SystemPrompt,
		MaxTokens:    a.opts.MaxTokens,
		Temperature:  a.opts.Temperature,
		Wrapper:      a.opts.Wrapper,
		Logger:       a.opts.Logger,
	})
}

// Run is a synchronous helper that drives a conversation to completion and
// returns the final assistant text.
func (a *Agent) Run(ctx context.Context, prompt string) (string, error) {
	run := a.NewRun(prompt)
	for {
		if _, ok, err := run.Next(ctx); err != nil {
			return "", err
		} else if !ok {
			break
		}
	}
	return run.Result()
}

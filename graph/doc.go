// Package graph implements the conversation state machine that drives a
// multi-turn exchange between a caller and a tool-using model. A Run owns
// the current node and conversation state and advances exactly one node per
// Next call, so callers can inspect intermediate state between steps.
package graph

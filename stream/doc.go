// Package stream defines the wire-event vocabulary of an incrementally
// delivered model response and the aggregator that folds one ordered event
// sequence back into a complete core.Response.
//
// Events arrive strictly in production order; content-block indices may
// interleave within that order (the start of block 1 can precede the stop of
// block 0) and the aggregator reassembles blocks by index without ever
// reordering events. Consumption is single-task: Collect suspends on the next
// event and applies it immediately.
package stream

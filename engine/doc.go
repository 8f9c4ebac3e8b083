// Package engine implements the iteration-bounded orchestration loop: it
// repeatedly requests a completion from the model, dispatches requested tool
// calls through the registry in order, feeds results back into the
// conversation, and stops when the model signals completion or the iteration
// budget is exhausted.
//
// The loop is deliberately forgiving. Provider failures, unknown tools, bad
// arguments and tool panics are all recorded on the current iteration record
// and never abort the session; the only fatal condition is a model without
// tool calling support, which fails the session before any iteration runs.
package engine

// Package core defines the shared data model of the appwright build loop:
// conversation messages, tool call requests and results, per-iteration
// records, the session history that is persisted after every iteration, and
// the progress cell polled by the HTTP layer.
//
// The conversation is an append-only ordered sequence of Messages owned
// exclusively by the orchestration engine for the lifetime of a session.
// The progress Tracker is the only piece of state shared between the
// background build goroutine and concurrent readers; it follows a strict
// single-writer, multi-reader discipline.
package core

package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/appwright/appwright/core"
)

// Tool choice modes passed through to the provider.
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual tool exposed to the model.
// Parameters is a JSON Schema object (minimal subset).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the normalized completion input. Messages is the full
// conversation history, re-sent on every call.
type Request struct {
	Messages   []core.Message   `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`
}

// TokenUsage captures token statistics for a response when the provider
// reports them.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response carries the assistant message produced for a Request. ToolCalls on
// the message, if any, are in the order the model requested them.
type Response struct {
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason"`
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation. SupportsTools gates
// session startup: a model without tool calling cannot drive the build loop.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the engine requires. Complete blocks on
// network I/O and must honor ctx cancellation. A nil response with a nil
// error is treated by the engine as a provider failure.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// mockTurn is one scripted reply: either a response or an error.
type mockTurn struct {
	resp *Response
	err  error
}

// Mock is a deterministic in-memory Model for tests. Replies are consumed in
// the order they were enqueued; once the script is exhausted every further
// call yields a plain text response.
type Mock struct {
	mu       sync.Mutex
	info     Info
	script   []mockTurn
	Requests []Request // every request received, in order
}

// NewMock constructs a Mock with tool support enabled.
func NewMock() *Mock {
	return &Mock{info: Info{Name: "mock-model", Provider: "mock", SupportsTools: true}}
}

// WithoutToolSupport flips the tool-calling capability off, for exercising
// the startup precondition.
func (m *Mock) WithoutToolSupport() *Mock {
	m.info.SupportsTools = false
	return m
}

// EnqueueResponse appends a scripted response.
func (m *Mock) EnqueueResponse(resp Response) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockTurn{resp: &resp})
	return m
}

// EnqueueText appends a scripted plain assistant reply.
func (m *Mock) EnqueueText(text string) *Mock {
	return m.EnqueueResponse(Response{
		Message:      core.AssistantMessage(text),
		FinishReason: "stop",
	})
}

// EnqueueToolCalls appends a scripted assistant reply requesting the given
// tool calls.
func (m *Mock) EnqueueToolCalls(text string, calls ...core.ToolCall) *Mock {
	return m.EnqueueResponse(Response{
		Message: core.Message{
			Role:      core.RoleAssistant,
			Content:   text,
			ToolCalls: calls,
		},
		FinishReason: "tool_calls",
	})
}

// EnqueueError appends a scripted provider failure.
func (m *Mock) EnqueueError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockTurn{err: err})
	return m
}

// Complete implements Model by replaying the script.
func (m *Mock) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	if len(m.script) == 0 {
		return &Response{
			Message:      core.AssistantMessage(fmt.Sprintf("Mock reply %d", len(m.Requests))),
			FinishReason: "stop",
		}, nil
	}

	turn := m.script[0]
	m.script = m.script[1:]
	if turn.err != nil {
		return nil, turn.err
	}
	return turn.resp, nil
}

// Info implements Model.
func (m *Mock) Info() Info { return m.info }

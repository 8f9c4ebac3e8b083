package core

// ToolResult records the outcome of one successfully dispatched tool call.
type ToolResult struct {
	Tool   string `json:"tool"`
	CallID string `json:"call_id"`
	Result string `json:"result"`
}

// ActionError records a failure observed during an iteration. Action names
// the operation that failed ("completion", "tool_call_<name>", "loop"),
// Kind classifies it for post-mortem filtering.
type ActionError struct {
	Action    string `json:"action"`
	Kind      string `json:"kind"`
	Error     string `json:"error"`
	Traceback string `json:"traceback,omitempty"`
}

// Error kinds surfaced per iteration. None of these abort the session; they
// are accumulated on the IterationRecord for forensics.
const (
	ErrKindProvider      = "provider_unavailable"
	ErrKindToolNotFound  = "tool_not_found"
	ErrKindToolExecution = "tool_execution_failed"
	ErrKindArgumentParse = "argument_parse_failed"
	ErrKindLoopInternal  = "loop_internal"
)

// IterationRecord captures everything that happened during one pass of the
// build loop. Exactly one record exists per completed pass; records are never
// mutated after their iteration ends.
type IterationRecord struct {
	Index        int           `json:"iteration"` // 1-based
	LLMResponses []string      `json:"llm_responses"`
	ToolResults  []ToolResult  `json:"tool_results"`
	Errors       []ActionError `json:"errors"`
}

// SessionHistory owns the iteration records of a single run. It is mutated
// only by the engine goroutine and serialized to the history store after
// every iteration (overwrite semantics, at-least-once).
type SessionHistory struct {
	RunID      string             `json:"run_id"`
	Iterations []*IterationRecord `json:"iterations"`
}

// NewSessionHistory creates an empty history for the given run.
func NewSessionHistory(runID string) *SessionHistory {
	return &SessionHistory{RunID: runID, Iterations: []*IterationRecord{}}
}

// BeginIteration appends and returns the record for the given 1-based index.
func (h *SessionHistory) BeginIteration(index int) *IterationRecord {
	rec := &IterationRecord{
		Index:        index,
		LLMResponses: []string{},
		ToolResults:  []ToolResult{},
		Errors:       []ActionError{},
	}
	h.Iterations = append(h.Iterations, rec)
	return rec
}

// HistoryStore persists a session history snapshot. Persistence is advisory:
// the engine swallows store errors and the run is never affected by them.
type HistoryStore interface {
	Save(history *SessionHistory) error
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/appwright/appwright/core"
	"github.com/appwright/appwright/history"
	"github.com/appwright/appwright/logging"
	"github.com/appwright/appwright/metrics"
	"github.com/appwright/appwright/model"
	"github.com/appwright/appwright/tool"
	"github.com/google/uuid"
)

// ErrToolCallingUnsupported is returned by Run when the configured model
// cannot drive the tool protocol. The session fails before any iteration.
var ErrToolCallingUnsupported = errors.New("model does not support tool calling")

// Options configures an Engine instance using the functional options
// pattern. Unset services fall back to safe defaults (in-memory history, no
// logging).
type Options struct {
	// History receives a snapshot of the session history after every
	// iteration. Save errors are swallowed; durability is advisory.
	History core.HistoryStore

	// Tracker is the shared progress cell the engine writes and the status
	// surface reads. A private tracker is created if nil.
	Tracker *core.Tracker

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// MaxIterations bounds the loop. Budget exhaustion ends the session as
	// completed, not as an error.
	MaxIterations int

	// IterationDelay is the fixed pause between iterations, backpressure
	// against rapid provider calls.
	IterationDelay time.Duration

	// ProviderBackoff is the pause applied after a failed completion
	// request before the iteration counter advances.
	ProviderBackoff time.Duration

	// SystemPrompt seeds the conversation. Defaults to DefaultSystemPrompt.
	SystemPrompt string
}

// Engine owns the iteration state machine for one session at a time. It is
// not safe to run two sessions on the same Engine concurrently; callers
// serialize via the busy signal on the tracker.
type Engine struct {
	model   model.Model
	tools   *tool.Registry
	history core.HistoryStore
	tracker *core.Tracker
	logger  logging.Logger

	maxIterations   int
	iterationDelay  time.Duration
	providerBackoff time.Duration
	systemPrompt    string
}

// New creates an Engine for the given model and tool registry.
func New(m model.Model, tools *tool.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		History:         history.NewMemoryStore(),
		Logger:          logging.NoOpLogger{},
		MaxIterations:   50,
		IterationDelay:  2 * time.Second,
		ProviderBackoff: 5 * time.Second,
		SystemPrompt:    DefaultSystemPrompt,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Tracker == nil {
		opts.Tracker = core.NewTracker(opts.MaxIterations)
	}

	return &Engine{
		model:           m,
		tools:           tools,
		history:         opts.History,
		tracker:         opts.Tracker,
		logger:          opts.Logger,
		maxIterations:   opts.MaxIterations,
		iterationDelay:  opts.IterationDelay,
		providerBackoff: opts.ProviderBackoff,
		systemPrompt:    opts.SystemPrompt,
	}
}

// Tracker returns the progress cell read by the status surface.
func (e *Engine) Tracker() *core.Tracker { return e.tracker }

// Run executes one session to completion and returns the accumulated
// display transcript. The only error it returns is the startup precondition
// failure; everything that happens inside the loop is recorded on the
// session history instead of escaping.
func (e *Engine) Run(ctx context.Context, description string) (string, error) {
	if !e.model.Info().SupportsTools {
		e.logger.Error("engine.start.unsupported_model", "model", e.model.Info().Name)
		e.tracker.Reset(e.maxIterations)
		e.tracker.Fail(ErrToolCallingUnsupported.Error())
		metrics.SessionsTotal.WithLabelValues(core.StatusError).Inc()
		return "", ErrToolCallingUnsupported
	}

	runID := uuid.NewString()
	e.logger.Info("engine.session.start", "run_id", runID, "max_iterations", e.maxIterations)

	e.tracker.Reset(e.maxIterations)
	hist := core.NewSessionHistory(runID)

	messages := []core.Message{
		core.SystemMessage(e.systemPrompt),
		core.UserMessage(description),
	}

	var out strings.Builder

	for iteration := 0; iteration < e.maxIterations; iteration++ {
		e.tracker.SetIteration(iteration + 1)
		rec := hist.BeginIteration(iteration + 1)

		done := e.safeIteration(ctx, rec, &messages, &out)

		e.tracker.SetOutput(out.String())
		e.persist(hist)
		metrics.IterationsTotal.Inc()

		if done {
			e.tracker.Complete()
			e.logger.Info("engine.session.completed", "run_id", runID, "iterations", iteration+1)
			metrics.SessionsTotal.WithLabelValues(core.StatusCompleted).Inc()
			return out.String(), nil
		}
		if ctx.Err() != nil {
			e.logger.Warn("engine.session.context_done", "run_id", runID, "iteration", iteration+1)
			break
		}

		e.pause(ctx, e.iterationDelay)
	}

	// Budget exhaustion is not an error: the session finishes with whatever
	// output has accumulated.
	e.tracker.SetOutput(out.String())
	e.tracker.Complete()
	e.persist(hist)
	e.logger.Info("engine.session.budget_exhausted", "run_id", runID, "iterations", len(hist.Iterations))
	metrics.SessionsTotal.WithLabelValues(core.StatusCompleted).Inc()
	return out.String(), nil
}

// safeIteration runs one loop pass with panic isolation: an unexpected
// failure in orchestration bookkeeping is recorded as loop_internal and the
// iteration still advances.
func (e *Engine) safeIteration(ctx context.Context, rec *core.IterationRecord, messages *[]core.Message, out *strings.Builder) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine.iteration.panic", "iteration", rec.Index, "recover", r)
			rec.Errors = append(rec.Errors, core.ActionError{
				Action:    "main_loop",
				Kind:      core.ErrKindLoopInternal,
				Error:     fmt.Sprintf("%v", r),
				Traceback: string(debug.Stack()),
			})
			done = false
		}
	}()
	return e.runIteration(ctx, rec, messages, out)
}

func (e *Engine) runIteration(ctx context.Context, rec *core.IterationRecord, messages *[]core.Message, out *strings.Builder) bool {
	start := time.Now()
	resp, err := e.model.Complete(ctx, model.Request{
		Messages:   *messages,
		Tools:      e.tools.Definitions(),
		ToolChoice: model.ToolChoiceAuto,
	})
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())

	if err != nil || resp == nil {
		if err == nil {
			err = errors.New("provider returned no usable response")
		}
		e.logger.Warn("engine.completion.failed", "iteration", rec.Index, "error", err.Error())
		rec.Errors = append(rec.Errors, core.ActionError{
			Action: "completion",
			Kind:   core.ErrKindProvider,
			Error:  err.Error(),
		})
		metrics.ProviderErrorsTotal.Inc()
		e.pause(ctx, e.providerBackoff)
		return false
	}

	content := resp.Message.Content
	rec.LLMResponses = append(rec.LLMResponses, content)
	fmt.Fprintf(out, "\n<h2>Iteration %d:</h2>\n", rec.Index)

	if len(resp.Message.ToolCalls) == 0 {
		*messages = append(*messages, resp.Message)
		fmt.Fprintf(out, "<strong>LLM Response:</strong>\n<p>%s</p>\n", content)
		return false
	}

	// The assistant message goes into history verbatim, tool call requests
	// included, so the model sees its own calls in subsequent context.
	*messages = append(*messages, resp.Message)
	fmt.Fprintf(out, "<strong>Tool Call:</strong>\n<p>%s</p>\n", content)

	if e.executeBatch(ctx, rec, resp.Message.ToolCalls, messages, out) {
		return true
	}

	e.narrativeFollowUp(ctx, rec, messages, out)
	return false
}

// executeBatch dispatches the requested calls in order. One failing call
// never blocks or rolls back its siblings. Returns true when the completion
// signal fired, short-circuiting the rest of the batch.
func (e *Engine) executeBatch(ctx context.Context, rec *core.IterationRecord, calls []core.ToolCall, messages *[]core.Message, out *strings.Builder) bool {
	for _, call := range calls {
		result, err := e.tools.Dispatch(ctx, call.Name, call.Arguments)
		if err != nil {
			e.recordDispatchError(rec, call, err)
			// Surface the failure to the model as ordinary tool output so
			// it can self-correct on the next pass.
			*messages = append(*messages, core.ToolMessage(call.ID, fmt.Sprintf("Error: %v", err)))
			metrics.ToolExecutionsTotal.WithLabelValues(call.Name, metrics.OutcomeError).Inc()
			continue
		}

		rec.ToolResults = append(rec.ToolResults, core.ToolResult{
			Tool:   call.Name,
			CallID: call.ID,
			Result: result,
		})
		*messages = append(*messages, core.ToolMessage(call.ID, result))
		fmt.Fprintf(out, "<strong>Tool Result (%s):</strong>\n<p>%s</p>\n", call.Name, result)
		e.logger.Info("engine.tool.executed", "iteration", rec.Index, "tool", call.Name, "call_id", call.ID)
		metrics.ToolExecutionsTotal.WithLabelValues(call.Name, metrics.OutcomeSuccess).Inc()

		if call.Name == tool.NameTaskCompleted {
			out.WriteString("\n<h2>COMPLETE</h2>\n")
			return true
		}
	}
	return false
}

func (e *Engine) recordDispatchError(rec *core.IterationRecord, call core.ToolCall, err error) {
	action := "tool_call_" + call.Name
	var terr *tool.ToolError

	switch {
	case errors.Is(err, tool.ErrUnknownTool):
		e.logger.Warn("engine.tool.unknown", "iteration", rec.Index, "tool", call.Name)
		rec.Errors = append(rec.Errors, core.ActionError{
			Action:    action,
			Kind:      core.ErrKindToolNotFound,
			Error:     fmt.Sprintf("Tool '%s' is not available.", call.Name),
			Traceback: "No traceback available.",
		})
	case errors.As(err, &terr) && terr.Code == tool.CodeInvalidArguments:
		e.logger.Warn("engine.tool.bad_arguments", "iteration", rec.Index, "tool", call.Name, "error", err.Error())
		rec.Errors = append(rec.Errors, core.ActionError{
			Action: action,
			Kind:   core.ErrKindArgumentParse,
			Error:  err.Error(),
		})
	default:
		e.logger.Error("engine.tool.failed", "iteration", rec.Index, "tool", call.Name, "error", err.Error())
		rec.Errors = append(rec.Errors, core.ActionError{
			Action:    action,
			Kind:      core.ErrKindToolExecution,
			Error:     fmt.Sprintf("Error executing %s: %v", call.Name, err),
			Traceback: string(debug.Stack()),
		})
	}
}

// narrativeFollowUp issues one additional completion with the updated
// history and no tools offered, to obtain the model's commentary on the
// batch it just ran. Provider failure here is non-fatal.
func (e *Engine) narrativeFollowUp(ctx context.Context, rec *core.IterationRecord, messages *[]core.Message, out *strings.Builder) {
	resp, err := e.model.Complete(ctx, model.Request{Messages: *messages})
	if err != nil || resp == nil {
		if err == nil {
			err = errors.New("provider returned no usable response")
		}
		e.logger.Warn("engine.followup.failed", "iteration", rec.Index, "error", err.Error())
		rec.Errors = append(rec.Errors, core.ActionError{
			Action: "second_completion",
			Kind:   core.ErrKindProvider,
			Error:  err.Error(),
		})
		metrics.ProviderErrorsTotal.Inc()
		return
	}

	rec.LLMResponses = append(rec.LLMResponses, resp.Message.Content)
	*messages = append(*messages, resp.Message)
	fmt.Fprintf(out, "<strong>LLM Response:</strong>\n<p>%s</p>\n", resp.Message.Content)
}

// persist writes the history snapshot, swallowing errors: a failure to log
// must never abort the run.
func (e *Engine) persist(hist *core.SessionHistory) {
	if err := e.history.Save(hist); err != nil {
		e.logger.Warn("engine.history.save_failed", "run_id", hist.RunID, "error", err.Error())
	}
}

// pause sleeps for d unless the context finishes first.
func (e *Engine) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

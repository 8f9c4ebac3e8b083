// Package appwright provides a high-level façade over the orchestration
// engine: construct an App with a model and a workspace, start a build
// session from a natural language description, and poll its progress while
// the engine drives the model's tool calls against the workspace on a
// background goroutine.
//
// Only one session runs per App at a time; Start exposes the busy signal and
// callers serialize session starts.
package appwright

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/appwright/appwright/core"
	"github.com/appwright/appwright/engine"
	"github.com/appwright/appwright/history"
	"github.com/appwright/appwright/logging"
	"github.com/appwright/appwright/model"
	"github.com/appwright/appwright/tool"
	"github.com/appwright/appwright/workspace"
)

// ErrSessionRunning is returned by Start while a previous session is still
// in flight.
var ErrSessionRunning = errors.New("a build session is already running")

// Options configures the App instance.
type Options struct {
	// Workspace receives the generated artifacts. Defaults to a local
	// workspace rooted at "app".
	Workspace core.Workspace

	// History persists the per-iteration session log. Defaults to the
	// file store in the working directory.
	History core.HistoryStore

	// Logger defaults to NoOp.
	Logger logging.Logger

	// MaxIterations bounds each session. Defaults to 50.
	MaxIterations int

	// IterationDelay and ProviderBackoff tune loop pacing.
	IterationDelay  time.Duration
	ProviderBackoff time.Duration

	// SystemPrompt overrides the default build instructions.
	SystemPrompt string
}

// App aggregates the engine, its progress tracker and the session guard.
type App struct {
	engine  *engine.Engine
	tracker *core.Tracker
	logger  logging.Logger

	mu sync.Mutex // serializes Start against the busy check
}

// New creates an App driving the given model. Unset services are initialized
// with sensible defaults.
func New(m model.Model, optFns ...func(o *Options)) *App {
	opts := Options{
		Workspace:       workspace.NewLocal("app"),
		History:         history.NewFileStore(""),
		Logger:          logging.NoOpLogger{},
		MaxIterations:   50,
		IterationDelay:  2 * time.Second,
		ProviderBackoff: 5 * time.Second,
		SystemPrompt:    engine.DefaultSystemPrompt,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.NewRegistry(tool.Builtins(opts.Workspace)...)
	tracker := core.NewTracker(opts.MaxIterations)

	eng := engine.New(m, registry, func(o *engine.Options) {
		o.History = opts.History
		o.Tracker = tracker
		o.Logger = opts.Logger
		o.MaxIterations = opts.MaxIterations
		o.IterationDelay = opts.IterationDelay
		o.ProviderBackoff = opts.ProviderBackoff
		o.SystemPrompt = opts.SystemPrompt
	})

	return &App{engine: eng, tracker: tracker, logger: opts.Logger}
}

// Start launches a session on a background goroutine. It returns
// ErrSessionRunning while a previous session is in flight; once started, a
// session runs to its terminal state.
func (a *App) Start(description string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tracker.Busy() {
		return ErrSessionRunning
	}
	// Claim the cell before the goroutine is scheduled so a second Start
	// observes busy immediately.
	a.tracker.Reset(a.tracker.Snapshot().MaxIterations)

	go func() {
		if _, err := a.engine.Run(context.Background(), description); err != nil {
			a.logger.Error("app.session.failed", "error", err.Error())
		}
	}()
	return nil
}

// Run executes a session synchronously and returns the transcript. It
// honors the same busy guard as Start.
func (a *App) Run(ctx context.Context, description string) (string, error) {
	a.mu.Lock()
	if a.tracker.Busy() {
		a.mu.Unlock()
		return "", ErrSessionRunning
	}
	a.tracker.Reset(a.tracker.Snapshot().MaxIterations)
	a.mu.Unlock()

	return a.engine.Run(ctx, description)
}

// Progress returns a consistent snapshot of the current session state.
func (a *App) Progress() core.Progress { return a.tracker.Snapshot() }

// Busy reports whether a session is currently running.
func (a *App) Busy() bool { return a.tracker.Busy() }

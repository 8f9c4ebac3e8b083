package appwright

import (
	"context"
	"testing"
	"time"

	"github.com/appwright/appwright/core"
	"github.com/appwright/appwright/history"
	"github.com/appwright/appwright/model"
	"github.com/appwright/appwright/tool"
	"github.com/appwright/appwright/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, m model.Model, maxIterations int) *App {
	t.Helper()
	return New(m, func(o *Options) {
		o.Workspace = workspace.NewLocal(t.TempDir())
		o.History = history.NewMemoryStore()
		o.MaxIterations = maxIterations
		o.IterationDelay = 0
		o.ProviderBackoff = 0
	})
}

func TestAppRunSync(t *testing.T) {
	mock := model.NewMock().EnqueueToolCalls("",
		core.ToolCall{ID: "c1", Name: tool.NameTaskCompleted, Arguments: []byte(`{}`)},
	)
	app := newTestApp(t, mock, 10)

	out, err := app.Run(context.Background(), "a landing page")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETE")
	assert.Equal(t, core.StatusCompleted, app.Progress().Status)
	assert.False(t, app.Busy())
}

// blockingModel parks Complete until released, keeping the session busy.
type blockingModel struct {
	*model.Mock
	release chan struct{}
}

func (m *blockingModel) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	select {
	case <-m.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return m.Mock.Complete(ctx, req)
}

func TestAppStartBusySignal(t *testing.T) {
	blocking := &blockingModel{Mock: model.NewMock(), release: make(chan struct{})}
	blocking.EnqueueToolCalls("",
		core.ToolCall{ID: "c1", Name: tool.NameTaskCompleted, Arguments: []byte(`{}`)},
	)
	app := newTestApp(t, blocking, 10)

	require.NoError(t, app.Start("a todo app"))
	assert.ErrorIs(t, app.Start("another app"), ErrSessionRunning)
	assert.True(t, app.Busy())

	close(blocking.release)
	require.Eventually(t, func() bool {
		return app.Progress().Completed
	}, 5*time.Second, 10*time.Millisecond)

	// A finished session frees the slot for the next start.
	assert.False(t, app.Busy())
}

func TestAppRunRejectedWhileBusy(t *testing.T) {
	blocking := &blockingModel{Mock: model.NewMock(), release: make(chan struct{})}
	app := newTestApp(t, blocking, 1)

	require.NoError(t, app.Start("first"))
	_, err := app.Run(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSessionRunning)
	close(blocking.release)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/appwright/appwright"
	"github.com/appwright/appwright/core"
	"github.com/appwright/appwright/history"
	"github.com/appwright/appwright/logging"
	"github.com/appwright/appwright/model"
	"github.com/appwright/appwright/plugin"
	"github.com/appwright/appwright/tool"
	"github.com/appwright/appwright/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingModel parks Complete until released so tests can observe the busy
// window deterministically.
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

type serverFixture struct {
	srv     *Server
	plugins *plugin.Loader
	baseDir string
	release chan struct{}
}

func newFixture(t *testing.T) *serverFixture {
	t.Helper()
	baseDir := t.TempDir()

	release := make(chan struct{})
	blocking := &blockingModel{Mock: model.NewMock(), release: release}
	blocking.EnqueueToolCalls("",
		core.ToolCall{ID: "c1", Name: tool.NameTaskCompleted, Arguments: []byte(`{}`)},
	)

	app := appwright.New(blocking, func(o *appwright.Options) {
		o.Workspace = workspace.NewLocal(baseDir)
		o.History = history.NewMemoryStore()
		o.MaxIterations = 5
		o.IterationDelay = 0
		o.ProviderBackoff = 0
	})

	plugins := plugin.NewLoader(baseDir, logging.NoOpLogger{})
	require.NoError(t, plugins.Load())

	srv := New(app, plugins, baseDir)
	return &serverFixture{srv: srv, plugins: plugins, baseDir: baseDir, release: release}
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(path, description string) *http.Request {
	form := url.Values{"user_input": {description}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeShowsFormWithoutGeneratedIndex(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Describe the app")
}

func TestHomeServesGeneratedIndex(t *testing.T) {
	f := newFixture(t)

	index := filepath.Join(f.baseDir, "templates", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(index), 0o755))
	require.NoError(t, os.WriteFile(index, []byte("<h1>Generated</h1>"), 0o644))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Generated</h1>", rec.Body.String())
}

func TestStartAndPollProgress(t *testing.T) {
	f := newFixture(t)

	rec := f.do(postForm("/", "a counter app"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/progress")

	// Second start while the first session is blocked inside the model.
	rec = f.do(postForm("/", "another app"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(f.release)
	require.Eventually(t, func() bool {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/progress", nil))
		var snap core.Progress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		return snap.Completed && snap.Status == core.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStartRejectsEmptyDescription(t *testing.T) {
	f := newFixture(t)
	rec := f.do(postForm("/", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressSnapshotShape(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/progress", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	for _, key := range []string{"status", "iteration", "max_iterations", "output", "completed"} {
		assert.Contains(t, snap, key)
	}
}

func TestStaticFilesServed(t *testing.T) {
	f := newFixture(t)

	css := filepath.Join(f.baseDir, "static", "style.css")
	require.NoError(t, os.MkdirAll(filepath.Dir(css), 0o755))
	require.NoError(t, os.WriteFile(css, []byte("body{}"), 0o644))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestUnknownPathFallsThroughToPlugins(t *testing.T) {
	f := newFixture(t)

	page := filepath.Join(f.baseDir, "templates", "about.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(page), 0o755))
	require.NoError(t, os.WriteFile(page, []byte("<h1>About</h1>"), 0o644))
	manifest := filepath.Join(f.baseDir, "routes", "about.json")
	require.NoError(t, os.WriteFile(manifest,
		[]byte(`{"module":"about","routes":[{"method":"GET","path":"/about","file":"templates/about.html"}]}`), 0o644))

	// Reload picks the new manifest up without a restart.
	require.NoError(t, f.plugins.Load())

	rec := f.do(httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>About</h1>", rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/never-registered", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpointMounted(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

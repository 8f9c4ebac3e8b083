package plugin

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/appwright/appwright/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLoadCreatesDirectoryAndMarker(t *testing.T) {
	base := t.TempDir()
	l := NewLoader(base, logging.NoOpLogger{})

	require.NoError(t, l.Load())

	info, err := os.Stat(l.RoutesDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(l.RoutesDir(), MarkerFile))
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), l.Version())
}

func TestLoadServesManifestRoutes(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "templates", "about.html"), "<h1>About</h1>")
	writeFile(t, filepath.Join(base, "routes", "about.json"),
		`{"module":"about","routes":[{"method":"GET","path":"/about","file":"templates/about.html","content_type":"text/html"}]}`)

	l := NewLoader(base, logging.NoOpLogger{})
	require.NoError(t, l.Load())
	assert.Equal(t, []string{"about"}, l.Modules())

	rec := get(t, l, "/about")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>About</h1>", rec.Body.String())
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, get(t, l, "/missing").Code)
}

func TestLoadIsolatesBrokenModule(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "templates", "ok.html"), "ok")
	writeFile(t, filepath.Join(base, "routes", "broken.json"), `{"module": "broken", routes`)
	writeFile(t, filepath.Join(base, "routes", "ok.json"),
		`{"module":"ok","routes":[{"method":"GET","path":"/ok","file":"templates/ok.html"}]}`)

	l := NewLoader(base, logging.NoOpLogger{})
	require.NoError(t, l.Load())

	assert.Equal(t, []string{"ok"}, l.Modules())
	assert.Equal(t, http.StatusOK, get(t, l, "/ok").Code)
}

func TestLoadHotSwapReplacesModuleRoutes(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "templates", "v1.html"), "v1")
	writeFile(t, filepath.Join(base, "templates", "v2.html"), "v2")
	writeFile(t, filepath.Join(base, "routes", "page.json"),
		`{"module":"page","routes":[{"method":"GET","path":"/page","file":"templates/v1.html"}]}`)

	l := NewLoader(base, logging.NoOpLogger{})
	require.NoError(t, l.Load())
	assert.Equal(t, "v1", get(t, l, "/page").Body.String())

	// Regenerated module: same path, new target, old binding replaced.
	writeFile(t, filepath.Join(base, "routes", "page.json"),
		`{"module":"page","routes":[{"method":"GET","path":"/page","file":"templates/v2.html"}]}`)
	require.NoError(t, l.Load())

	assert.Equal(t, "v2", get(t, l, "/page").Body.String())
	assert.Equal(t, uint64(2), l.Version())
}

func TestLoadRejectsInvalidRoutePaths(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "routes", "bad.json"),
		`{"module":"bad","routes":[{"method":"GET","path":"no-slash","file":"templates/a.html"}]}`)

	l := NewLoader(base, logging.NoOpLogger{})
	require.NoError(t, l.Load())
	assert.Empty(t, l.Modules())
}

func TestServeFileEscapeIsNotFound(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "routes", "evil.json"),
		`{"module":"evil","routes":[{"method":"GET","path":"/evil","file":"../../etc/passwd"}]}`)

	l := NewLoader(base, logging.NoOpLogger{})
	require.NoError(t, l.Load())
	assert.Equal(t, http.StatusNotFound, get(t, l, "/evil").Code)
}

func TestMissingBackingFileIsNotFound(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "routes", "ghost.json"),
		`{"module":"ghost","routes":[{"method":"GET","path":"/ghost","file":"templates/ghost.html"}]}`)

	l := NewLoader(base, logging.NoOpLogger{})
	require.NoError(t, l.Load())
	assert.Equal(t, http.StatusNotFound, get(t, l, "/ghost").Code)
}

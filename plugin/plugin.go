// Package plugin makes generated route modules live without a process
// restart. A route module is a JSON manifest in the routes directory that
// declares which workspace files are served at which paths; the loader scans
// manifests, builds a complete route table and swaps it in atomically.
// Re-invoking the scan is safe: a later manifest for the same module path
// replaces the prior entry (hot-swap via a versioned registry, not live
// mutation), and one broken manifest never prevents the others from serving.
package plugin

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/appwright/appwright/logging"
)

// MarkerFile is the empty package marker guaranteeing the routes directory
// exists; it is never treated as a manifest.
const MarkerFile = ".keep"

// Route is one servable endpoint declared by a manifest. File is resolved
// relative to the workspace base directory.
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	File        string `json:"file"`
	ContentType string `json:"content_type,omitempty"`
}

// Manifest is the registration entry point a generated module exports.
type Manifest struct {
	Module string  `json:"module"`
	Routes []Route `json:"routes"`
}

type routeTable struct {
	version uint64
	modules []string
	entries map[string]Route // "METHOD /path" -> route
}

// Loader scans the routes directory and serves the current route table.
// Load may be called at startup and again at any time; readers always
// observe either the previous complete table or the new one.
type Loader struct {
	baseDir   string
	routesDir string
	logger    logging.Logger

	table   atomic.Pointer[routeTable]
	version atomic.Uint64
}

// NewLoader creates a loader for baseDir/routes, serving files from baseDir.
func NewLoader(baseDir string, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	l := &Loader{
		baseDir:   filepath.Clean(baseDir),
		routesDir: filepath.Join(filepath.Clean(baseDir), "routes"),
		logger:    logger,
	}
	l.table.Store(&routeTable{entries: map[string]Route{}})
	return l
}

// RoutesDir returns the scanned directory.
func (l *Loader) RoutesDir() string { return l.routesDir }

// Version returns the generation of the current route table; it increases on
// every successful Load.
func (l *Loader) Version() uint64 { return l.table.Load().version }

// Modules returns the module names registered in the current table.
func (l *Loader) Modules() []string {
	mods := l.table.Load().modules
	out := make([]string, len(mods))
	copy(out, mods)
	return out
}

// Load guarantees the routes directory exists (with its marker), scans every
// candidate file, and swaps in the resulting route table. A malformed module
// is logged and skipped; Load only fails when the directory itself cannot be
// prepared.
func (l *Loader) Load() error {
	if err := os.MkdirAll(l.routesDir, 0o755); err != nil {
		return fmt.Errorf("prepare routes directory: %w", err)
	}
	marker := filepath.Join(l.routesDir, MarkerFile)
	if _, err := os.Stat(marker); err != nil {
		if err := os.WriteFile(marker, nil, 0o644); err != nil {
			return fmt.Errorf("write marker: %w", err)
		}
	}

	dirEntries, err := os.ReadDir(l.routesDir)
	if err != nil {
		return fmt.Errorf("scan routes directory: %w", err)
	}

	// Deterministic scan order so a duplicate module name resolves the same
	// way on every load: the lexically last manifest wins.
	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || de.Name() == MarkerFile {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	byModule := map[string][]Route{}
	var moduleOrder []string
	for _, name := range names {
		manifest, err := l.parseManifest(filepath.Join(l.routesDir, name))
		if err != nil {
			l.logger.Warn("plugin.module.skipped", "file", name, "error", err.Error())
			continue
		}
		if _, seen := byModule[manifest.Module]; seen {
			l.logger.Info("plugin.module.replaced", "module", manifest.Module, "file", name)
		} else {
			moduleOrder = append(moduleOrder, manifest.Module)
		}
		byModule[manifest.Module] = manifest.Routes
		l.logger.Info("plugin.module.loaded", "module", manifest.Module, "routes", len(manifest.Routes))
	}

	entries := map[string]Route{}
	for _, mod := range moduleOrder {
		for _, rt := range byModule[mod] {
			entries[routeKey(rt.Method, rt.Path)] = rt
		}
	}

	l.table.Store(&routeTable{
		version: l.version.Add(1),
		modules: moduleOrder,
		entries: entries,
	})
	l.logger.Info("plugin.routes.loaded", "modules", len(moduleOrder), "routes", len(entries))
	return nil
}

func (l *Loader) parseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if manifest.Module == "" {
		return nil, fmt.Errorf("invalid manifest: missing module name")
	}
	for _, rt := range manifest.Routes {
		if !strings.HasPrefix(rt.Path, "/") {
			return nil, fmt.Errorf("invalid manifest: route path %q must start with /", rt.Path)
		}
		if rt.File == "" {
			return nil, fmt.Errorf("invalid manifest: route %q has no file", rt.Path)
		}
	}
	return &manifest, nil
}

// ServeHTTP resolves the request against the current route table.
func (l *Loader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, ok := l.table.Load().entries[routeKey(r.Method, r.URL.Path)]
	if !ok {
		http.NotFound(w, r)
		return
	}

	full := filepath.Clean(filepath.Join(l.baseDir, filepath.FromSlash(rt.File)))
	if full != l.baseDir && !strings.HasPrefix(full, l.baseDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}
	data, err := os.ReadFile(full)
	if err != nil {
		l.logger.Warn("plugin.route.unreadable", "path", r.URL.Path, "file", rt.File, "error", err.Error())
		http.NotFound(w, r)
		return
	}

	contentType := rt.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(rt.File))
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	_, _ = w.Write(data)
}

func routeKey(method, path string) string {
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}
	return method + " " + path
}

// Package server is the HTTP front end: it renders the builder form, starts
// build sessions, exposes the polling progress endpoint and Prometheus
// metrics, serves generated templates and static assets, and falls through
// to the plugin route table for generated pages.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/appwright/appwright"
	"github.com/appwright/appwright/logging"
	"github.com/appwright/appwright/metrics"
	"github.com/appwright/appwright/plugin"
)

// Options configures the HTTP front end.
type Options struct {
	// Logger defaults to NoOp.
	Logger logging.Logger

	// EnableMetrics mounts the Prometheus handler at /metrics.
	EnableMetrics bool
}

// Server wires the App, the generated-artifact directory and the plugin
// route table into one http.Handler.
type Server struct {
	app     *appwright.App
	plugins *plugin.Loader
	baseDir string
	logger  logging.Logger
	handler http.Handler
}

// New creates the front end serving generated artifacts from baseDir.
func New(app *appwright.App, plugins *plugin.Loader, baseDir string, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}, EnableMetrics: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		app:     app,
		plugins: plugins,
		baseDir: filepath.Clean(baseDir),
		logger:  opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/progress", s.handleProgress)
	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir(filepath.Join(s.baseDir, "static")))))
	if opts.EnableMetrics {
		mux.Handle("/metrics", metrics.Handler())
	}
	s.handler = mux
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.handler }

// handleHome serves the generated index when one exists, the builder form
// otherwise, and delegates every other path to the plugin route table.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.plugins.ServeHTTP(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		index := filepath.Join(s.baseDir, "templates", "index.html")
		if data, err := os.ReadFile(index); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(data)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(formPage))

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		description := r.PostFormValue("user_input")
		if description == "" {
			http.Error(w, "describe the app you want to create", http.StatusBadRequest)
			return
		}
		if err := s.app.Start(description); err != nil {
			s.logger.Warn("server.start.rejected", "error", err.Error())
			http.Error(w, "A build is already running.", http.StatusConflict)
			return
		}
		s.logger.Info("server.session.started")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(progressPage))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleProgress returns the progress snapshot as JSON for the poller.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.app.Progress()); err != nil {
		s.logger.Error("server.progress.encode_failed", "error", err.Error())
	}
}

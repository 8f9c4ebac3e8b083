// Command appwright runs the app builder service: an HTTP front end that
// takes a natural language description, drives an LLM build session against
// a local workspace, and serves the generated application live.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/appwright/appwright"
	"github.com/appwright/appwright/config"
	"github.com/appwright/appwright/history"
	"github.com/appwright/appwright/logging"
	"github.com/appwright/appwright/model"
	anthropicmodel "github.com/appwright/appwright/model/anthropic"
	openaimodel "github.com/appwright/appwright/model/openai"
	"github.com/appwright/appwright/plugin"
	"github.com/appwright/appwright/server"
	"github.com/appwright/appwright/workspace"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "appwright: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	m, err := newModel(cfg)
	if err != nil {
		logger.Error("main.model.init_failed", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("main.model.ready", "provider", m.Info().Provider, "model", m.Info().Name)

	ws := workspace.NewLocal(cfg.BaseDir)
	for _, dir := range []string{"templates", "static"} {
		logger.Debug("main.workspace.prepare", "result", ws.CreateDirectory(dir))
	}

	app := appwright.New(m, func(o *appwright.Options) {
		o.Workspace = ws
		o.History = history.NewFileStore(cfg.HistoryFile)
		o.Logger = logger
		o.MaxIterations = cfg.MaxIterations
		o.IterationDelay = cfg.IterationDelay()
		o.ProviderBackoff = cfg.ProviderBackoff()
	})

	plugins := plugin.NewLoader(cfg.BaseDir, logger)
	if err := plugins.Load(); err != nil {
		logger.Error("main.plugins.load_failed", "error", err.Error())
		os.Exit(1)
	}

	srv := server.New(app, plugins, cfg.BaseDir, func(o *server.Options) {
		o.Logger = logger
		o.EnableMetrics = cfg.MetricsEnabled
	})

	addr := ":" + cfg.Port
	logger.Info("main.listening", "addr", addr, "base_dir", cfg.BaseDir)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("main.server.failed", "error", err.Error())
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) logging.Logger {
	if cfg.LogPretty {
		handler := tint.NewHandler(os.Stderr, &tint.Options{
			Level:      parseLevel(cfg.LogLevel),
			TimeFormat: time.TimeOnly,
		})
		return logging.NewSlogAdapter(slog.New(handler))
	}
	return logging.New(logging.Config{Level: cfg.LogLevel})
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.ModelName != "" {
				o.Model = anthropic.Model(cfg.ModelName)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

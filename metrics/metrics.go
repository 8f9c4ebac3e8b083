// Package metrics exposes Prometheus collectors for the build loop. All
// collectors are registered on the default registry; Handler serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool execution outcomes used as label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// SessionsTotal counts sessions by terminal status.
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appwright",
		Name:      "sessions_total",
		Help:      "Build sessions by terminal status.",
	}, []string{"status"})

	// IterationsTotal counts completed loop iterations.
	IterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "appwright",
		Name:      "iterations_total",
		Help:      "Completed build loop iterations.",
	})

	// ToolExecutionsTotal counts tool dispatches by tool name and outcome.
	ToolExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appwright",
		Name:      "tool_executions_total",
		Help:      "Tool call dispatches by tool and outcome.",
	}, []string{"tool", "outcome"})

	// ProviderErrorsTotal counts failed model completion requests.
	ProviderErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "appwright",
		Name:      "provider_errors_total",
		Help:      "Model completion requests that returned no usable response.",
	})

	// CompletionDuration observes model completion latency.
	CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "appwright",
		Name:      "completion_duration_seconds",
		Help:      "Latency of model completion requests.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

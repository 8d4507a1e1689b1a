// Package observability exposes Prometheus metrics for the suite. The
// metrics describe what the automation layer did (actions, waits,
// assertions, sessions, artifacts), not what the application under test
// did.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the suite.
type Metrics struct {
	// Browser action metrics
	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec

	// Assertion metrics
	ExpectationsTotal   *prometheus.CounterVec
	ExpectationFailures *prometheus.CounterVec

	// Session metrics
	SessionsStarted prometheus.Counter
	SessionsFailed  prometheus.Counter

	// Artifact metrics
	ScreenshotsCaptured prometheus.Counter
	ArtifactFailures    prometheus.Counter

	// Fixed-delay waits; nonzero values point at tests leaning on the
	// escape hatch instead of condition-based waits.
	FixedDelayWaits prometheus.Counter
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide metrics instance. promauto registers
// against the default registry, so construction happens exactly once.
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = newMetrics("storeqa")
	})
	return defaultMetrics
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		ActionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "browser_actions_total",
				Help:      "Total browser actions by verb and status",
			},
			[]string{"verb", "status"},
		),
		ActionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "browser_action_duration_seconds",
				Help:      "Browser action duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"verb"},
		),
		ExpectationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expectations_total",
				Help:      "Total assertion checks by condition",
			},
			[]string{"condition"},
		),
		ExpectationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expectation_failures_total",
				Help:      "Assertions that never held within their timeout",
			},
			[]string{"condition"},
		),
		SessionsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_started_total",
				Help:      "Automation sessions started",
			},
		),
		SessionsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_failed_total",
				Help:      "Automation sessions that failed to start",
			},
		),
		ScreenshotsCaptured: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "screenshots_captured_total",
				Help:      "Diagnostic screenshots captured",
			},
		),
		ArtifactFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_failures_total",
				Help:      "Diagnostic captures that failed (logged, never raised)",
			},
		),
		FixedDelayWaits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fixed_delay_waits_total",
				Help:      "Uses of the fixed-delay wait escape hatch",
			},
		),
	}
}

// ObserveAction records one browser action outcome with its duration.
func (m *Metrics) ObserveAction(verb string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ActionsTotal.WithLabelValues(verb, status).Inc()
	m.ActionDuration.WithLabelValues(verb).Observe(time.Since(start).Seconds())
}

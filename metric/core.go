// Package metric provides the substrate's Prometheus instrumentation.
// A Registry owns an isolated prometheus.Registry with the core platform
// metrics pre-registered; the manager and engine record into it when one
// is wired, and skip cleanly when none is.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "substrate"

// Metrics contains all platform-level metrics (not socket-specific)
type Metrics struct {
	// Signal flow
	SignalsCreated     *prometheus.CounterVec
	SignalsRouted      *prometheus.CounterVec
	RoutePassThrough   *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec

	// Socket lifecycle
	SocketsRegistered prometheus.Gauge
	SocketsConnected  prometheus.Gauge

	// Engine
	EngineStatus  prometheus.Gauge
	TextProcessed prometheus.Counter

	// Collaborator boundary
	CollaboratorRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SignalsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signals",
				Name:      "created_total",
				Help:      "Total number of signals created, by type",
			},
			[]string{"type"},
		),

		SignalsRouted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signals",
				Name:      "routed_total",
				Help:      "Total number of signals delivered to a socket",
			},
			[]string{"type", "socket"},
		),

		RoutePassThrough: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signals",
				Name:      "pass_through_total",
				Help:      "Total number of signals returned unprocessed, by reason",
			},
			[]string{"type", "reason"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "sockets",
				Name:      "processing_duration_seconds",
				Help:      "Socket processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"socket"},
		),

		SocketsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sockets",
				Name:      "registered",
				Help:      "Number of sockets currently registered",
			},
		),

		SocketsConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "sockets",
				Name:      "connected",
				Help:      "Number of sockets currently connected",
			},
		),

		EngineStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "status",
				Help:      "Engine status (0=unstarted, 1=started, 2=stopped)",
			},
		),

		TextProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "text_processed_total",
				Help:      "Total number of ProcessText calls completed",
			},
		),

		CollaboratorRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collaborator",
				Name:      "requests_total",
				Help:      "Total collaborator requests, by operation and outcome",
			},
			[]string{"operation", "status"},
		),
	}
}

// collectors returns every core metric for bulk registration
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SignalsCreated,
		m.SignalsRouted,
		m.RoutePassThrough,
		m.ProcessingDuration,
		m.SocketsRegistered,
		m.SocketsConnected,
		m.EngineStatus,
		m.TextProcessed,
		m.CollaboratorRequests,
	}
}

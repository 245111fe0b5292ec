package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the arcade collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcade",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arcade",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "path"},
	)

	workflowEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcade",
			Subsystem: "workflow",
			Name:      "entries_total",
			Help:      "Entry workflow outcomes by game variant and error kind.",
		},
		[]string{"variant", "result"},
	)

	settlementEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcade",
			Subsystem: "settlement",
			Name:      "events_total",
			Help:      "Register-event attempts by event type and journal status.",
		},
		[]string{"event_type", "status"},
	)

	gameOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcade",
			Subsystem: "game",
			Name:      "outcomes_total",
			Help:      "Finished game sessions by variant and outcome.",
		},
		[]string{"variant", "outcome"},
	)

	bridgeClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "arcade",
			Subsystem: "bridge",
			Name:      "clients",
			Help:      "Connected bridge clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		workflowEntries,
		settlementEvents,
		gameOutcomes,
		bridgeClients,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordEntry(variant, result string) {
	workflowEntries.WithLabelValues(variant, result).Inc()
}

func RecordSettlement(eventType, status string) {
	settlementEvents.WithLabelValues(eventType, status).Inc()
}

func RecordGameOutcome(variant, outcome string) {
	gameOutcomes.WithLabelValues(variant, outcome).Inc()
}

func BridgeConnected() {
	bridgeClients.Inc()
}

func BridgeDisconnected() {
	bridgeClients.Dec()
}

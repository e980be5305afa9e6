package portalbridge

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dispatched calls.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	forcedLogouts   prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_bridge_requests_total",
				Help: "Dispatched calls by method and final outcome code",
			},
			[]string{"method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_bridge_request_duration_seconds",
				Help:    "Time from dispatch to resolution, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_bridge_retries_total",
				Help: "Retry attempts by the status that triggered them (0 = no response)",
			},
			[]string{"status"},
		),
		forcedLogouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_bridge_forced_logouts_total",
				Help: "Credentials cleared after a 401 response",
			},
		),
		registry: registry,
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.retriesTotal, m.forcedLogouts)
	return m
}

// Registry exposes the registry for a promhttp handler or tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordResult(method string, code Code, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, string(code)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) recordRetry(status int) {
	m.retriesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) recordForcedLogout() {
	m.forcedLogouts.Inc()
}

// Package metrics holds the relay's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Relay struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	registrations    *prometheus.CounterVec
	logins           *prometheus.CounterVec
}

// NewRelay registers the relay collectors, plus process and Go runtime
// collectors, on a private registry.
func NewRelay() *Relay {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Relay{
		registry: registry,
		upstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_upstream_requests_total",
			Help: "Requests forwarded to the identity authority, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_upstream_request_duration_seconds",
			Help:    "Latency of requests forwarded to the identity authority.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_registrations_total",
			Help: "Registration attempts handled by the relay, by result code.",
		}, []string{"outcome"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_logins_total",
			Help: "Login attempts handled by the relay, by result code.",
		}, []string{"outcome"}),
	}
}

func (m *Relay) ObserveUpstream(operation string, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Relay) RegistrationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

func (m *Relay) LoginOutcome(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Relay) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

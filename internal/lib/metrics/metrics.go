// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rentals"

// Metrics owns a private registry so several instances (one per test server)
// never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	responseTime    *prometheus.HistogramVec
	storeOperations *prometheus.CounterVec
	rateLimitHits   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "http requests by code, route and method",
			},
			[]string{"code", "route", "method"},
		),

		responseTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_time_seconds",
				Help:      "http response time.",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"route", "method"},
		),

		storeOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "document store calls by backend, collection, operation and outcome",
			},
			[]string{"backend", "collection", "operation", "outcome"},
		),

		rateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "requests rejected by the rate limiter",
			},
			[]string{"route"},
		),

		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_enqueued_total",
				Help:      "notification tasks handed to the job queue",
			},
			[]string{"task", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.responseTime,
		m.storeOperations,
		m.rateLimitHits,
		m.notifications,
	)

	return m
}

// ObserveRequest records one finished HTTP request. route is the echo route
// template ("/usuarios/:id"), never the raw path.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(strconv.Itoa(status), route, method).Inc()
	m.responseTime.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveStoreOperation counts a store call. outcome is "ok", "not_found" or
// a storeerr code.
func (m *Metrics) ObserveStoreOperation(backend, collection, operation, outcome string) {
	if m == nil {
		return
	}
	m.storeOperations.WithLabelValues(backend, collection, operation, outcome).Inc()
}

func (m *Metrics) ObserveRateLimitHit(route string) {
	if m == nil {
		return
	}
	m.rateLimitHits.WithLabelValues(route).Inc()
}

func (m *Metrics) ObserveNotification(task, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(task, outcome).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

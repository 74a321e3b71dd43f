// Package metrics exposes Prometheus counters for simulations and HTTP
// requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	// Calculations counts pipeline runs by outcome and rate kind.
	Calculations *prometheus.CounterVec

	// CalculationDuration observes pipeline run time in seconds.
	CalculationDuration prometheus.Histogram

	// Requests counts HTTP requests by route, method and status.
	Requests *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_simulations_total",
				Help: "Simulation pipeline runs",
			},
			[]string{"outcome", "rate_kind"},
		),
		CalculationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mortgage_simulation_duration_seconds",
				Help:    "Time spent running the simulation pipeline",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mortgage_http_requests_total",
				Help: "HTTP requests served",
			},
			[]string{"route", "method", "status"},
		),
	}
}

// ObserveCalculation records one pipeline run.
func (m *Metrics) ObserveCalculation(outcome string, rateKind string, elapsed time.Duration) {
	m.Calculations.WithLabelValues(outcome, rateKind).Inc()
	m.CalculationDuration.Observe(elapsed.Seconds())
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, status int) {
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package metrics defines the Prometheus collectors for sweep runs.
//
// Metrics:
//   - placesweep_tiles_total{outcome} (Counter): tiles swept, outcome "ok", "partial", "failed" or "skipped"
//   - placesweep_requests_total{api, status} (Counter): provider requests by API variant and result class
//   - placesweep_request_duration_seconds{api} (Histogram): provider request latency
//   - placesweep_records_total{stage} (Counter): records "fetched", "dropped_excluded" and "delivered"
//   - placesweep_circuit_state{api} (Gauge): 0 closed, 1 open, 2 half-open
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all collectors are attached to.
var Registry = prometheus.DefaultRegisterer

var (
	// TilesTotal counts swept tiles by outcome.
	TilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placesweep_tiles_total",
		Help: "Total tiles swept by outcome",
	}, []string{"outcome"})

	// RequestsTotal counts provider requests by API and result class.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placesweep_requests_total",
		Help: "Total Places requests by API and status",
	}, []string{"api", "status"})

	// RequestDuration observes provider request latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "placesweep_request_duration_seconds",
		Help:    "Places request duration in seconds by API",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"api"})

	// RecordsTotal counts records by pipeline stage.
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placesweep_records_total",
		Help: "Total place records by stage",
	}, []string{"stage"})

	// CircuitState reports the provider circuit breaker state.
	CircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "placesweep_circuit_state",
		Help: "Provider circuit breaker state (0 closed, 1 open, 2 half-open)",
	}, []string{"api"})
)

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics holds the Prometheus instruments of the permalink
// service. All collectors are registered with the default registry, so
// serving promhttp.Handler() exposes them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK = "ok"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permalink_operations_total",
			Help: "Permalink operations by operation and result (ok or error kind).",
		},
		[]string{"operation", "result"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "permalink_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "permalink_websocket_clients",
			Help: "Number of connected WebSocket clients.",
		})

	BatchRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "permalink_batch_runs_total",
			Help: "Cumulative number of batch resolutions.",
		})
)

func init() {
	prometheus.MustRegister(
		OperationsTotal,
		HTTPRequestDuration,
		WebSocketClients,
		BatchRunsTotal,
	)
}

// ObserveOperation counts one operation. kind is "" on success, otherwise
// an error kind.
func ObserveOperation(operation, kind string) {
	if kind == "" {
		kind = ResultOK
	}
	OperationsTotal.WithLabelValues(operation, kind).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(method, route, status string, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vietddude/catalog/internal/core/resilience"
)

var (
	// OperationAttempts tracks attempts per catalog operation
	OperationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operation_attempts_total",
			Help: "Total number of attempts per operation",
		},
		[]string{"op"},
	)

	// OperationRetries tracks attempts that were followed by a retry
	OperationRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operation_retries_total",
			Help: "Total number of retries per operation",
		},
		[]string{"op", "error_type"},
	)

	// OperationTimeouts tracks attempts that overran their deadline
	OperationTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operation_timeouts_total",
			Help: "Total number of attempts that timed out",
		},
		[]string{"op"},
	)

	// OperationExhausted tracks operations that spent their retry budget
	OperationExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operation_exhausted_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"op"},
	)

	// OperationAttemptsPerSuccess tracks how many attempts successful operations needed
	OperationAttemptsPerSuccess = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_operation_success_attempts",
			Help:    "Number of attempts needed by successful operations",
			Buckets: []float64{1, 2, 3, 5, 8},
		},
		[]string{"op"},
	)

	// WorkerPoolInFlight tracks tasks holding a worker slot
	WorkerPoolInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_worker_pool_in_flight",
			Help: "Number of tasks currently running on the worker pool",
		},
	)

	// DBConnectionPoolUsage tracks open connections as a percentage of the pool limit
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)

	// HTTPRequests tracks API requests by route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPLatency tracks API request latency
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Hooks returns resilience hooks that record into the package collectors.
func Hooks() *resilience.Hooks {
	return &resilience.Hooks{
		OnAttempt: func(op string, attempt int) {
			OperationAttempts.WithLabelValues(op).Inc()
		},
		OnRetry: func(op string, attempt int, err error) {
			OperationRetries.WithLabelValues(op, errorType(err)).Inc()
		},
		OnTimeout: func(op string, attempt int) {
			OperationTimeouts.WithLabelValues(op).Inc()
		},
		OnSuccess: func(op string, attempts int) {
			OperationAttemptsPerSuccess.WithLabelValues(op).Observe(float64(attempts))
		},
		OnExhausted: func(op string, attempts int, err error) {
			OperationExhausted.WithLabelValues(op).Inc()
		},
		OnPoolBusy: func(inFlight int64) {
			WorkerPoolInFlight.Set(float64(inFlight))
		},
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, resilience.ErrTimeout):
		return "timeout"
	case resilience.IsTransient(err):
		return "transient"
	default:
		return "other"
	}
}

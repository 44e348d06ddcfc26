package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Materialization run results.
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

// Per-series failure reasons.
const (
	ReasonInvalidRule     = "invalid_rule"
	ReasonInvalidTimezone = "invalid_timezone"
	ReasonStorage         = "storage"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tempo_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tempo_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	materializeRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tempo_materialize_runs_total",
		Help: "Materialization runs by result.",
	}, []string{"result"})

	materializedInstancesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tempo_materialized_instances_total",
		Help: "Instances handed to the store by materialization.",
	})

	generationTruncatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tempo_generation_truncated_total",
		Help: "Expansions that hit the occurrence or horizon cap.",
	})

	materializeSeriesFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tempo_materialize_series_failures_total",
		Help: "Series that could not be materialized, by reason.",
	}, []string{"reason"})

	materializeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tempo_materialize_duration_seconds",
		Help:    "Wall time of a full materialization run.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
)

// Middleware records request count and latency labelled by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records one materialization run.
func ObserveRun(result string, elapsed time.Duration) {
	materializeRunsTotal.WithLabelValues(result).Inc()
	materializeDuration.Observe(elapsed.Seconds())
}

func AddInstances(n int) {
	materializedInstancesTotal.Add(float64(n))
}

func IncTruncated() {
	generationTruncatedTotal.Inc()
}

func IncSeriesFailure(reason string) {
	materializeSeriesFailuresTotal.WithLabelValues(reason).Inc()
}

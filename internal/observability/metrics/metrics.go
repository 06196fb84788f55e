package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estatehub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	dbQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_db_queries_total",
		Help: "Count of database operations by operation and result kind",
	}, []string{"op", "result"})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estatehub_db_query_duration_seconds",
		Help:    "Duration of database operations",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"op"})

	validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_validation_failures_total",
		Help: "Request bodies rejected before reaching the database",
	}, []string{"schema"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "estatehub_rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter",
	})

	dbConnsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "estatehub_db_request_connections",
		Help: "Request-scoped database connections currently held",
	})

	lookupCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_lookup_cache_total",
		Help: "Lookup table reads by table and cache result",
	}, []string{"table", "result"})

	dbBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "estatehub_db_breaker_state",
		Help: "Database circuit breaker state: 0 closed, 1 open, 2 half-open",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveQuery records one database operation. result is "ok" or an error kind.
func ObserveQuery(op, result string, duration time.Duration) {
	dbQueriesTotal.WithLabelValues(op, result).Inc()
	dbQueryDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveValidationFailure counts a rejected request body
func ObserveValidationFailure(schema string) {
	validationFailures.WithLabelValues(schema).Inc()
}

// ObserveRateLimited counts a request refused by the limiter
func ObserveRateLimited() {
	rateLimited.Inc()
}

// ConnAcquired increments the held request connection gauge.
func ConnAcquired() {
	dbConnsInUse.Inc()
}

// ConnReleased decrements the held request connection gauge.
func ConnReleased() {
	dbConnsInUse.Dec()
}

// ObserveCacheLookup counts a lookup table read served from or missing the cache
func ObserveCacheLookup(table string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	lookupCache.WithLabelValues(table, result).Inc()
}

// SetBreakerState publishes the database breaker state
func SetBreakerState(state int) {
	dbBreakerState.Set(float64(state))
}

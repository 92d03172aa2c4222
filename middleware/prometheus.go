package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_http_requests_total",
		Help: "HTTP requests processed, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	guardDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_guard_decisions_total",
		Help: "Route-guard decisions, by outcome.",
	}, []string{"outcome"})

	sessionCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_session_cache_total",
		Help: "Session cache lookups, by result (hit or miss).",
	}, []string{"result"})

	resolverFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_resolver_failures_total",
		Help: "Auth backend calls that failed and degraded to unauthenticated.",
	}, []string{"endpoint"})
)

// PrometheusMiddleware records request count and latency per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// Guarded page traffic goes through NoRoute; bucket it to keep
			// label cardinality bounded.
			route = "proxy"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordGuardDecision counts one route-guard outcome (pass, skip,
// redirect_login, redirect_inactive, redirect_profile, redirect_dashboard,
// forbidden).
func RecordGuardDecision(outcome string) {
	guardDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheHit counts a session cache hit.
func RecordCacheHit() { sessionCacheTotal.WithLabelValues("hit").Inc() }

// RecordCacheMiss counts a session cache miss.
func RecordCacheMiss() { sessionCacheTotal.WithLabelValues("miss").Inc() }

// RecordResolverFailure counts a degraded call to the auth backend.
func RecordResolverFailure(endpoint string) {
	resolverFailuresTotal.WithLabelValues(endpoint).Inc()
}

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errors           *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	resetCodeOps     *prometheus.CounterVec
	ownership        *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP errors by boundary error code.",
		}, []string{"method", "route", "code"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Token validations by expected kind and result reason.",
		}, []string{"kind", "result"}),
		resetCodeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reset_code_operations_total",
			Help: "Recovery code operations by result.",
		}, []string{"operation", "result"}),
		ownership: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ownership_decisions_total",
			Help: "Ownership guard decisions.",
		}, []string{"decision"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.requestDuration, m.errors, m.tokenValidations, m.resetCodeOps, m.ownership, m.rateLimited)
	}
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// RecordTokenValidation counts a token validation outcome.
func (m *Metrics) RecordTokenValidation(kind, result string) {
	if m == nil {
		return
	}
	m.tokenValidations.WithLabelValues(kind, result).Inc()
}

// RecordResetCode counts a recovery code operation outcome.
func (m *Metrics) RecordResetCode(operation, result string) {
	if m == nil {
		return
	}
	m.resetCodeOps.WithLabelValues(operation, result).Inc()
}

// RecordOwnership counts an ownership decision.
func (m *Metrics) RecordOwnership(decision string) {
	if m == nil {
		return
	}
	m.ownership.WithLabelValues(decision).Inc()
}

// RecordRateLimited counts a rejected request.
func (m *Metrics) RecordRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// TokenValidations exposes the counter for assertions in tests.
func (m *Metrics) TokenValidations() *prometheus.CounterVec { return m.tokenValidations }

// ResetCodeOperations exposes the counter for assertions in tests.
func (m *Metrics) ResetCodeOperations() *prometheus.CounterVec { return m.resetCodeOps }

// OwnershipDecisions exposes the counter for assertions in tests.
func (m *Metrics) OwnershipDecisions() *prometheus.CounterVec { return m.ownership }

// RateLimitedRequests exposes the counter for assertions in tests.
func (m *Metrics) RateLimitedRequests() *prometheus.CounterVec { return m.rateLimited }

// Package metrics provides Prometheus metrics for the session layer and the
// request pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for session and pipeline operations.
type Metrics struct {
	enabled bool

	// Authentication metrics
	loginsTotal        prometheus.Counter
	loginFailuresTotal *prometheus.CounterVec

	// Refresh metrics
	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram

	// Pipeline metrics
	requestRetriesTotal   prometheus.Counter
	sessionExpiredTotal   prometheus.Counter
	proactiveRefreshTotal prometheus.Counter
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_logins_total",
		Help: "Total successful logins",
	})

	m.loginFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_login_failures_total",
		Help: "Total failed logins",
	}, []string{"reason"})

	m.refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_token_refresh_total",
		Help: "Total token refresh attempts",
	}, []string{"result"}) // success, failure, no_token

	m.refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booking_token_refresh_duration_seconds",
		Help:    "Token refresh duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	m.requestRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_request_retries_total",
		Help: "Total requests replayed after a refresh",
	})

	m.sessionExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_session_expired_total",
		Help: "Total unrecoverable session failures surfaced to callers",
	})

	m.proactiveRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_proactive_refresh_total",
		Help: "Total refreshes triggered by the expiry threshold before send",
	})

	return m
}

// RecordLogin records a successful login.
func (m *Metrics) RecordLogin() {
	if !m.enabled {
		return
	}
	m.loginsTotal.Inc()
}

// RecordLoginFailure records a failed login.
func (m *Metrics) RecordLoginFailure(reason string) {
	if !m.enabled {
		return
	}
	m.loginFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordRefresh records a refresh attempt outcome and its duration.
func (m *Metrics) RecordRefresh(result string, durationSeconds float64) {
	if !m.enabled {
		return
	}
	m.refreshTotal.WithLabelValues(result).Inc()
	m.refreshDuration.Observe(durationSeconds)
}

// RecordRefreshSkipped records a refresh attempt that never reached the
// provider. No duration sample is taken.
func (m *Metrics) RecordRefreshSkipped(result string) {
	if !m.enabled {
		return
	}
	m.refreshTotal.WithLabelValues(result).Inc()
}

// RecordRequestRetry records a request replayed with a refreshed token.
func (m *Metrics) RecordRequestRetry() {
	if !m.enabled {
		return
	}
	m.requestRetriesTotal.Inc()
}

// RecordSessionExpired records an unrecoverable session failure.
func (m *Metrics) RecordSessionExpired() {
	if !m.enabled {
		return
	}
	m.sessionExpiredTotal.Inc()
}

// RecordProactiveRefresh records a refresh triggered before send.
func (m *Metrics) RecordProactiveRefresh() {
	if !m.enabled {
		return
	}
	m.proactiveRefreshTotal.Inc()
}

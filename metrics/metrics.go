// Package metrics exposes Prometheus instruments for ledger operations and
// the HTTP API. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns a private registry and the ibom instruments.
type Recorder struct {
	registry    *prometheus.Registry
	ops         *prometheus.CounterVec
	opErrors    *prometheus.CounterVec
	opDurations *prometheus.HistogramVec
	funded      *prometheus.CounterVec
	claimed     *prometheus.CounterVec
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// NewRecorder registers every instrument under namespace (default "ibom").
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = "ibom"
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Ledger operations by outcome.",
		}, []string{"op", "outcome"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "op_errors_total",
			Help:      "Failed ledger operations by error code.",
		}, []string{"op", "code"}),
		opDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "Ledger operation latency including the store transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		funded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "funded_total",
			Help:      "Amount deposited into pools.",
		}, []string{"kind"}),
		claimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claimed_total",
			Help:      "Amount paid out to pool members.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "method", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	r.registry.MustRegister(r.ops, r.opErrors, r.opDurations, r.funded, r.claimed, r.requests, r.reqDuration)
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveOp records one ledger operation. An empty code means success.
func (r *Recorder) ObserveOp(op, code string, d time.Duration) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if code != "" {
		outcome = OutcomeError
		r.opErrors.WithLabelValues(op, code).Inc()
	}
	r.ops.WithLabelValues(op, outcome).Inc()
	r.opDurations.WithLabelValues(op).Observe(d.Seconds())
}

// AddFunded records a pool deposit. kind is "native" or "asset".
func (r *Recorder) AddFunded(kind string, amount uint64) {
	if r == nil {
		return
	}
	r.funded.WithLabelValues(kind).Add(float64(amount))
}

// AddClaimed records a member payout. kind is "native" or "asset".
func (r *Recorder) AddClaimed(kind string, amount uint64) {
	if r == nil {
		return
	}
	r.claimed.WithLabelValues(kind).Add(float64(amount))
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.reqDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

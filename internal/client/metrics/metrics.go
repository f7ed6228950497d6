// Package metrics holds the Prometheus collectors of the client: session
// actions, remote HTTP calls and list operations.
//
// A nil *Metrics is valid and records nothing, so components can take it as
// an optional dependency.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophtodo"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

type Metrics struct {
	sessionActions *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	listOperations *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. Collectors already
// registered by an earlier call are reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_actions_total",
			Help:      "Session actions by action and outcome.",
		}, []string{"action", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests sent to the remote services by method and status class.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of requests sent to the remote services.",
			Buckets:   histogramBuckets,
		}, []string{"method"}),
		listOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_operations_total",
			Help:      "Todo list operations by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	m.sessionActions = registerCounter(reg, m.sessionActions)
	m.httpRequests = registerCounter(reg, m.httpRequests)
	m.listOperations = registerCounter(reg, m.listOperations)
	if err := reg.Register(m.httpLatency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if v, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				m.httpLatency = v
			}
		}
	}
	return m
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if v, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return v
			}
		}
	}
	return c
}

// SessionAction counts one finished session action.
func (m *Metrics) SessionAction(action, outcome string) {
	if m == nil {
		return
	}
	m.sessionActions.WithLabelValues(action, outcome).Inc()
}

// HTTPRequest records a remote call. status 0 means the request never got a
// response.
func (m *Metrics) HTTPRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.httpLatency.WithLabelValues(method).Observe(d.Seconds())
}

// ListOperation counts one finished list operation.
func (m *Metrics) ListOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.listOperations.WithLabelValues(op, outcome).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return OutcomeError
	}
	return strconv.Itoa(status/100) + "xx"
}

// Handler exposes the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve runs a /metrics endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

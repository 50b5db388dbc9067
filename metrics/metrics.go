// Package metrics exposes Prometheus collectors for the pay engine: HTTP
// traffic, pay calculations, live-session transitions and refresher ticks.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/session"
)

// Metrics holds all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Pay metrics
	Calculations *prometheus.CounterVec

	// Session metrics
	SessionTransitions *prometheus.CounterVec
	SessionState       *prometheus.GaugeVec
	RefreshTicks       *prometheus.CounterVec
}

var _ session.Recorder = (*Metrics)(nil)

// Config holds metrics configuration
type Config struct {
	Namespace string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig() *Config {
	return &Config{Namespace: "obpay"}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.Calculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "pay_calculations_total",
			Help:      "Pay calculations by outcome (ok or the validation reason)",
		},
		[]string{"outcome"},
	)

	m.SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "session_transitions_total",
			Help:      "Live session state transitions",
		},
		[]string{"from", "to"},
	)

	m.SessionState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "session_state",
			Help:      "1 for the current live session state, 0 otherwise",
		},
		[]string{"state"},
	)

	m.RefreshTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "session_refresh_ticks_total",
			Help:      "Earnings refresher ticks by status",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.Calculations,
		m.SessionTransitions,
		m.SessionState,
		m.RefreshTicks,
	)

	m.setState(session.StateStopped)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCalculation counts a ComputePay outcome.
func (m *Metrics) RecordCalculation(err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(generic.ReasonOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	m.Calculations.WithLabelValues(outcome).Inc()
}

// Transition implements session.Recorder.
func (m *Metrics) Transition(from, to session.State) {
	m.SessionTransitions.WithLabelValues(string(from), string(to)).Inc()
	m.setState(to)
}

// Tick implements session.Recorder.
func (m *Metrics) Tick(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RefreshTicks.WithLabelValues(status).Inc()
}

func (m *Metrics) setState(current session.State) {
	for _, s := range []session.State{session.StateStopped, session.StateRunning, session.StateOnBreak, session.StatePaused} {
		v := 0.0
		if s == current {
			v = 1
		}
		m.SessionState.WithLabelValues(string(s)).Set(v)
	}
}

// Middleware records HTTP metrics for a chi router. Paths are the matched
// route patterns so IDs do not explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordHTTPRequest(r.Method, path, status, time.Since(start))
	})
}

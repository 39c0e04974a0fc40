package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's prometheus collectors. Each server owns its
// registry so several can coexist in one process.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	selections        *prometheus.CounterVec
	renders           *prometheus.CounterVec
	sessions          prometheus.Gauge
	joinErrors        prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trdemand_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trdemand_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trdemand_selections_total",
			Help: "Selection changes by kind (province, scenario) and outcome.",
		}, []string{"kind", "outcome"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trdemand_renders_total",
			Help: "Rendered images by kind and format.",
		}, []string{"kind", "format"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trdemand_sessions",
			Help: "Number of live dashboard sessions.",
		}),
		joinErrors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trdemand_join_errors",
			Help: "Join errors between the boundary file and the data tables at startup.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.selections,
		m.renders,
		m.sessions,
		m.joinErrors,
		collectors.NewGoCollector(),
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and durations labelled by route
// template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Selection(kind string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	m.selections.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) Render(kind, format string) {
	m.renders.WithLabelValues(kind, format).Inc()
}

func (m *Metrics) SetSessions(n int) {
	m.sessions.Set(float64(n))
}

func (m *Metrics) SetJoinErrors(n int) {
	m.joinErrors.Set(float64(n))
}

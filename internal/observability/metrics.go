package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics exposed on /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quotations      *prometheus.CounterVec
	costBreakdowns  prometheus.Counter
	settingsLoads   *prometheus.CounterVec
}

// NewMetrics builds a private registry with HTTP and domain collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "packquote_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "packquote_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	quotations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "packquote_quotations_total",
		Help: "Quotation writes by operation.",
	}, []string{"operation"})
	breakdowns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "packquote_cost_breakdowns_total",
		Help: "Admin cost breakdowns computed on demand.",
	})
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "packquote_settings_loads_total",
		Help: "System settings loads by result.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, quotations, breakdowns, loads)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		quotations:      quotations,
		costBreakdowns:  breakdowns,
		settingsLoads:   loads,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// QuotationWritten counts a create, update or delete.
func (m *Metrics) QuotationWritten(operation string) {
	if m == nil {
		return
	}
	m.quotations.WithLabelValues(operation).Inc()
}

// CostBreakdownComputed counts an admin breakdown.
func (m *Metrics) CostBreakdownComputed() {
	if m == nil {
		return
	}
	m.costBreakdowns.Inc()
}

// SettingsLoaded counts a settings reload. A nil err is recorded as "ok".
func (m *Metrics) SettingsLoaded(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.settingsLoads.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}

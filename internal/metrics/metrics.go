// Package metrics exposes Prometheus instrumentation for the recommendation
// engine, the catalog client, the preference flusher and the HTTP API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/preference"
	"github.com/alexanderramin/civic/internal/service"
)

// Metrics holds every collector, registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	UseCaseDuration *prometheus.HistogramVec
	UseCaseErrors   *prometheus.CounterVec
	FallbackActions prometheus.Counter
	StaleResponses  prometheus.Counter
	PoolErrors      prometheus.Counter

	CatalogCalls   *prometheus.CounterVec
	CatalogLatency *prometheus.HistogramVec

	Flushes       *prometheus.CounterVec
	FlushDuration prometheus.Histogram

	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

// New registers all collectors on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		UseCaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_use_case_duration_seconds",
			Help:    "Duration of engine use cases in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"use_case"}),
		UseCaseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_use_case_errors_total",
			Help: "Total number of failed engine use cases",
		}, []string{"use_case"}),
		FallbackActions: f.NewCounter(prometheus.CounterOpts{
			Name: "civic_fallback_actions_total",
			Help: "Total number of synthesized fallback actions returned",
		}),
		StaleResponses: f.NewCounter(prometheus.CounterOpts{
			Name: "civic_stale_responses_total",
			Help: "Total number of superseded generations not committed",
		}),
		PoolErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "civic_pool_errors_total",
			Help: "Total number of candidate pools that failed or timed out",
		}),

		CatalogCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_catalog_calls_total",
			Help: "Total number of catalog calls by operation and outcome",
		}, []string{"op", "outcome"}),
		CatalogLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_catalog_call_duration_seconds",
			Help:    "Catalog call latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),

		Flushes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_preference_flushes_total",
			Help: "Total number of preference flush attempts by status",
		}, []string{"status"}),
		FlushDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "civic_preference_flush_duration_seconds",
			Help:    "Preference flush duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_api_requests_total",
			Help: "Total number of API requests",
		}, []string{"method", "route", "status_code"}),
		APIRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveUseCase implements service.UseCaseObserver.
func (m *Metrics) ObserveUseCase(_ context.Context, e service.UseCaseEvent) {
	m.UseCaseDuration.WithLabelValues(e.Name).Observe(e.Duration.Seconds())
	if !e.Success {
		m.UseCaseErrors.WithLabelValues(e.Name).Inc()
	}
	if e.Name != service.UseCaseGenerate {
		return
	}
	if n, ok := e.Fields["fallback_count"].(int); ok {
		m.FallbackActions.Add(float64(n))
	}
	if n, ok := e.Fields["pool_errors"].(int); ok {
		m.PoolErrors.Add(float64(n))
	}
	if stale, ok := e.Fields["stale"].(bool); ok && stale {
		m.StaleResponses.Inc()
	}
}

// OnCallComplete implements catalog.Observer.
func (m *Metrics) OnCallComplete(_ context.Context, e catalog.CallEvent) {
	outcome := "success"
	if !e.Success {
		outcome = e.ErrorCode
		if outcome == "" {
			outcome = "error"
		}
	}
	m.CatalogCalls.WithLabelValues(e.Op, outcome).Inc()
	m.CatalogLatency.WithLabelValues(e.Op).Observe(float64(e.LatencyMs) / 1000)
}

// OnFlush implements preference.FlushObserver.
func (m *Metrics) OnFlush(_ context.Context, e preference.FlushEvent) {
	status := "success"
	if e.Err != nil {
		status = "error"
	}
	m.Flushes.WithLabelValues(status).Inc()
	m.FlushDuration.Observe(e.Duration.Seconds())
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.APIRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.APIRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

var (
	_ service.UseCaseObserver  = (*Metrics)(nil)
	_ catalog.Observer         = (*Metrics)(nil)
	_ preference.FlushObserver = (*Metrics)(nil)
)

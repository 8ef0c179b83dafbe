// Package api exposes the engine and the local action catalog over HTTP.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/metrics"
	"github.com/alexanderramin/civic/internal/service"
)

// Options tunes the router middleware.
type Options struct {
	CORSOrigins []string
	// RateLimit is requests per RateWindow per client IP; zero disables it.
	RateLimit  int
	RateWindow time.Duration
	PoolLimit  int
}

// Server serves the engine routes and, when a catalog client is set, the
// catalog routes the HTTP catalog client talks to.
type Server struct {
	engine  service.ActionEngine
	catalog catalog.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
	opts    Options
}

// NewServer builds a server. cat and m may be nil.
func NewServer(engine service.ActionEngine, cat catalog.Client, m *metrics.Metrics, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.PoolLimit <= 0 {
		opts.PoolLimit = service.DefaultPoolLimit
	}
	return &Server{
		engine:  engine,
		catalog: cat,
		metrics: m,
		logger:  logger.With("component", "api"),
		opts:    opts,
	}
}

// Router assembles the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.respondError(w, http.StatusNotFound, CodeMethodNotFound, "no such route")
	})
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.Limit(s.opts.RateLimit, s.opts.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					s.respondError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
				}),
			))
		}

		if s.engine != nil {
			r.Route("/api/v1", func(r chi.Router) {
				r.Post("/actions/generate", s.handleGenerate)
				r.Get("/actions", s.handleCurrent)
				r.Post("/actions/filter", s.handleFilter)
				r.Route("/actions/{id}", func(r chi.Router) {
					r.Post("/view", s.handleView)
					r.Post("/save", s.handleSave)
					r.Post("/complete", s.handleComplete)
					r.Post("/start", s.handleStart)
					r.Post("/rate", s.handleRate)
				})
				r.Get("/preferences", s.handlePreferences)
				r.Get("/preferences/export", s.handleExport)
				r.Post("/preferences/time", s.handleTimeSpent)
			})
		}

		if s.catalog != nil {
			r.Route("/catalog/v1", func(r chi.Router) {
				r.Get("/actions/popular", s.handlePopular)
				r.Get("/users/{user}/actions/personalized", s.handlePersonalized)
				r.Post("/users/{user}/actions/{id}/start", s.handleCatalogStart)
				r.Post("/users/{user}/actions/{id}/complete", s.handleCatalogComplete)
			})
		}
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.DebugContext(r.Context(), "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

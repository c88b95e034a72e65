// Package api serves assessments and service metadata over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/readiness"
)

// Assessor is the part of the assessment service the API exposes.
type Assessor interface {
	Assess(ctx context.Context, req assessment.Request) (*assessment.Result, error)
	Schedule() readiness.Schedule
	Policy() readiness.Policy
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Version      string
	AllowOrigins []string
	// Checks run on /ready, keyed by dependency name.
	Checks map[string]HealthCheck
	// Gatherer backs /metrics. Defaults to the prometheus default registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	assessor Assessor
	opts     Options
	logger   logger.Logger
	router   chi.Router
}

func NewServer(assessor Assessor, opts Options, log logger.Logger) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		assessor: assessor,
		opts:     opts,
		logger:   log.WithFields(map[string]interface{}{"component": "http"}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := s.opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/assessments", s.createAssessment)
		r.Get("/schedule", s.schedule)
		r.Get("/policy", s.policy)
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router in an http.Server configured from cfg.
func (s *Server) HTTPServer(cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           s,
		ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Millisecond,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"durationMs": time.Since(started).Milliseconds(),
			"requestId":  requestID(r),
		})
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

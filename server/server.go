// Package server exposes the query engine over HTTP.
//
// It serves the five point queries under /api/v1, the FHIR R4 exports
// under /fhir, Prometheus metrics on /metrics and a health probe on
// /healthz.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/spiros/phemap/engine"
)

// Server wraps an engine with an HTTP API.
type Server struct {
	e   *echo.Echo
	eng *engine.Phemap

	// cached serves the scan-heavy queries (exclusions, reverse maps).
	cached *engine.Cached

	log zerolog.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a server around a constructed engine.
func New(eng *engine.Phemap, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		e:      e,
		eng:    eng,
		cached: engine.NewCached(eng),
		log:    log,
	}

	s.registry = prometheus.NewRegistry()
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phemap",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route, method and status.",
	}, []string{"route", "method", "status"})
	s.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phemap",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	s.registry.MustRegister(s.requests, s.duration)

	e.Use(echomw.Recover())
	e.Use(s.logRequests)
	e.Use(s.observe)

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.e.Group("/api/v1")
	api.GET("/phecodes", s.allPhecodes)
	api.GET("/phecodes/:code", s.phecodeInfo)
	api.GET("/phecodes/:code/exclusions", s.exclusions)
	api.GET("/phecodes/:code/icd10", s.icd10ForPhecode)
	api.GET("/icd10/:term/phecodes", s.phecodesForICD10)
	api.GET("/stats", s.stats)

	fhirGroup := s.e.Group("/fhir")
	fhirGroup.GET("/CodeSystem/phecode", s.fhirCodeSystem)
	fhirGroup.GET("/ValueSet/phecode-exclude/:code", s.fhirExclusionValueSet)
	fhirGroup.GET("/ValueSet/phecode-icd10/:code", s.fhirICD10ValueSet)

	s.e.GET("/healthz", s.healthz)
	s.e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// Handler returns the server as an http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on addr until Shutdown or failure.
func (s *Server) Start(addr string) error {
	s.log.Info().
		Str("addr", addr).
		Int("phecodes", s.eng.PhecodeCount()).
		Int("mappings", s.eng.MappingCount()).
		Msg("listening")
	return s.e.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)

		evt := s.log.Info()
		if err != nil {
			evt = s.log.Error().Err(err)
		}
		evt.
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Str("remote_ip", c.RealIP()).
			Msg("request")

		return err
	}
}

func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		route := c.Path()
		if route == "" {
			route = c.Request().URL.Path
		}
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}

		s.requests.WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).Inc()
		s.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		return err
	}
}

// Package api exposes the HTTP trigger interface for the crawl service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/metrics"
	"github.com/atlaswire/newscrawler/internal/news"
	"github.com/atlaswire/newscrawler/internal/registry"
)

// BatchRunner executes one crawl or rescrape batch.
type BatchRunner interface {
	Run(ctx context.Context, params news.RunParams) (news.BatchReport, error)
}

// Server wires HTTP handlers to the orchestrator and registry.
type Server struct {
	router   chi.Router
	runner   BatchRunner
	registry *registry.Registry
	logger   *zap.Logger

	// one batch at a time; concurrent triggers get 409
	runMu sync.Mutex
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner BatchRunner, reg *registry.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:   runner,
		registry: reg,
		logger:   logger,
	}
	metrics.Init()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sites", s.listSites)
		r.Post("/crawl", s.triggerCrawl)
		r.Post("/rescrape", s.triggerRescrape)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type siteSummary struct {
	Source     string `json:"source"`
	Category   string `json:"category"`
	Domain     string `json:"domain"`
	ListingURL string `json:"listing_url"`
}

func (s *Server) listSites(w http.ResponseWriter, _ *http.Request) {
	targets := s.registry.Targets()
	out := make([]siteSummary, 0, len(targets))
	for _, t := range targets {
		out = append(out, siteSummary{
			Source:     t.Source,
			Category:   t.Category,
			Domain:     t.Domain,
			ListingURL: t.ListingURL,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sites": out})
}

func (s *Server) triggerCrawl(w http.ResponseWriter, r *http.Request) {
	var params news.RunParams
	if err := decodeParams(r, &params); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params.RescrapeURLs = nil
	s.runBatch(w, r, params)
}

func (s *Server) triggerRescrape(w http.ResponseWriter, r *http.Request) {
	var params news.RunParams
	if err := decodeParams(r, &params); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(params.RescrapeURLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "rescrape_urls required")
		return
	}
	s.runBatch(w, r, params)
}

func (s *Server) runBatch(w http.ResponseWriter, r *http.Request, params news.RunParams) {
	if !s.runMu.TryLock() {
		s.writeError(w, http.StatusConflict, "a batch is already running")
		return
	}
	defer s.runMu.Unlock()

	report, err := s.runner.Run(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusRequestTimeout
		}
		// The partial report still carries per-site errors and the
		// best-effort article count.
		s.writeJSON(w, status, failedBatch{BatchReport: report, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type failedBatch struct {
	news.BatchReport
	Error string `json:"error"`
}

func decodeParams(r *http.Request, params *news.RunParams) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(params); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unknown"
		}
		metrics.ObserveHTTPRequest(r.Method, route, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

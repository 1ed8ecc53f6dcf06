package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/hotspot-etl/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReportProvider returns the output of the most recent run, if any.
type ReportProvider interface {
	Latest() (domain.Output, bool)
}

// Server exposes health, readiness, metrics and report HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// read-only report routes.
func NewServer(addr string, ready ReadinessChecker, reports ReportProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /reports", handleSeasonal(reports))
	mux.HandleFunc("GET /reports/{season}", handleSeason(reports))
	mux.HandleFunc("GET /hotspots", handleHotspots(reports))
	mux.HandleFunc("GET /stats", handleStats(reports))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func handleSeasonal(reports ReportProvider) http.HandlerFunc {
	return withReport(reports, func(w http.ResponseWriter, _ *http.Request, out domain.Output) {
		writeJSON(w, http.StatusOK, out.Seasonal)
	})
}

func handleSeason(reports ReportProvider) http.HandlerFunc {
	return withReport(reports, func(w http.ResponseWriter, r *http.Request, out domain.Output) {
		name := r.PathValue("season")
		season, ok := domain.ParseSeason(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown season " + name})
			return
		}
		entries := out.Seasonal.Season(season)
		if entries == nil {
			entries = []domain.HotspotReport{}
		}
		writeJSON(w, http.StatusOK, entries)
	})
}

func handleHotspots(reports ReportProvider) http.HandlerFunc {
	return withReport(reports, func(w http.ResponseWriter, _ *http.Request, out domain.Output) {
		writeJSON(w, http.StatusOK, out.Hotspots)
	})
}

func handleStats(reports ReportProvider) http.HandlerFunc {
	return withReport(reports, func(w http.ResponseWriter, _ *http.Request, out domain.Output) {
		writeJSON(w, http.StatusOK, out.Stats)
	})
}

// withReport answers 503 until a run has produced output.
func withReport(reports ReportProvider, next func(http.ResponseWriter, *http.Request, domain.Output)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, ok := reports.Latest()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no report available yet"})
			return
		}
		if !out.GeneratedAt.IsZero() {
			w.Header().Set("Last-Modified", out.GeneratedAt.UTC().Format(http.TimeFormat))
		}
		next(w, r, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

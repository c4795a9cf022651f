// Package httpapi exposes the dashboard over HTTP: selection transitions,
// submission, the option and plot enumerations, and the usual health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/kafkaaudit"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/selection"
)

// AuditPublisher records submission audit events. A nil publisher disables
// auditing entirely.
type AuditPublisher interface {
	PublishSubmission(ctx context.Context, event kafkaaudit.SubmissionEvent) error
}

// Availability looks up the valid MPD numbers for a date without touching
// machine state.
type Availability interface {
	AvailableNumbers(ctx context.Context, date time.Time) ([]string, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	machine      *selection.Machine
	catalog      *domain.Catalog
	availability Availability
	imageBaseURL string
	audit        AuditPublisher
	metrics      *observability.Metrics
}

// NewServer creates the dashboard HTTP server. audit may be nil.
func NewServer(addr string, machine *selection.Machine, catalog *domain.Catalog, availability Availability, imageBaseURL string, audit AuditPublisher, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:       logger,
		machine:      machine,
		catalog:      catalog,
		availability: availability,
		imageBaseURL: imageBaseURL,
		audit:        audit,
		metrics:      metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/plots", s.handlePlots)
	mux.HandleFunc("GET /api/plot-url", s.handlePlotURL)
	mux.HandleFunc("GET /api/available", s.handleAvailable)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/artifacts", s.handleArtifacts)
	mux.HandleFunc("GET /api/share", s.handleShare)

	mux.HandleFunc("POST /api/selection/year", s.handleSetYear)
	mux.HandleFunc("POST /api/selection/number", s.handleSetNumber)
	mux.HandleFunc("POST /api/selection/date", s.handleSetDate)
	mux.HandleFunc("POST /api/selection/mpd", s.handleSelectAvailable)
	mux.HandleFunc("POST /api/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/step", s.handleStep)
	mux.HandleFunc("POST /api/deeplink", s.handleDeepLink)

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

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.machine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Package http exposes the aggregation service over a JSON API, plus the
// operational health, readiness, and metrics routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/swell-api/internal/domain"
	"github.com/couchcryptid/swell-api/internal/pipeline"
)

const (
	defaultWindowHours = 24
	maxWindowHours     = 168
)

// ConditionsService is the pipeline surface the API consumes.
type ConditionsService interface {
	Current(ctx context.Context, station string) (*domain.Observation, error)
	All(ctx context.Context) []domain.StationResult
	History(ctx context.Context, station string, hours int) ([]domain.Observation, error)
	Forecast(ctx context.Context, station string, hours int) (domain.Forecast, error)
	WindOverlay(ctx context.Context, b domain.Bounds) (domain.WindOverlay, error)
	SwellOverlay(ctx context.Context, b domain.Bounds) (domain.SwellOverlay, error)
	ClearCache()
	CheckReadiness(ctx context.Context) error
}

// Server exposes the buoy API and operational endpoints.
type Server struct {
	httpServer *http.Server
	svc        ConditionsService
	primary    string
	logger     *slog.Logger
}

// NewServer creates the HTTP server. primary names the station served by the
// bare /api/buoy-status route.
func NewServer(addr, primary string, svc ConditionsService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withCORS(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		primary: primary,
		logger:  logger,
	}

	mux.HandleFunc("GET /api/buoy-status", s.handlePrimaryStatus)
	mux.HandleFunc("GET /api/buoy-status/all", s.handleAllStatus)
	mux.HandleFunc("GET /api/buoys/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/buoys/{id}/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/overlay/wind", s.handleWindOverlay)
	mux.HandleFunc("GET /api/overlay/swell", s.handleSwellOverlay)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handlePrimaryStatus(w http.ResponseWriter, r *http.Request) {
	obs, err := s.svc.Current(r.Context(), s.primary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) handleAllStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.All(r.Context()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours, ok := parseHours(w, r)
	if !ok {
		return
	}
	rows, err := s.svc.History(r.Context(), r.PathValue("id"), hours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"station": r.PathValue("id"),
		"hours":   hours,
		"data":    rows,
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	hours, ok := parseHours(w, r)
	if !ok {
		return
	}
	f, err := s.svc.Forecast(r.Context(), r.PathValue("id"), hours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleWindOverlay(w http.ResponseWriter, r *http.Request) {
	b, ok := parseBounds(w, r)
	if !ok {
		return
	}
	overlay, err := s.svc.WindOverlay(r.Context(), b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlay)
}

func (s *Server) handleSwellOverlay(w http.ResponseWriter, r *http.Request) {
	b, ok := parseBounds(w, r)
	if !ok {
		return
	}
	overlay, err := s.svc.SwellOverlay(r.Context(), b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlay)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	s.svc.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeError maps domain error kinds onto HTTP statuses: unknown station is
// the caller's fault, upstream failures are gateway errors, timeouts are
// gateway timeouts.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := domain.ErrorKind(err)

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, domain.ErrUnknownStation):
		status = http.StatusNotFound
	case errors.Is(err, pipeline.ErrInvalidBounds):
		status = http.StatusBadRequest
	case kind == string(domain.FetchTimeout):
		status = http.StatusGatewayTimeout
	case kind == "internal":
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "kind", kind, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": kind})
}

// parseHours reads the hours query parameter, bounded to [1, 168] with a
// 24-hour default. A malformed value is a 400.
func parseHours(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return defaultWindowHours, true
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 1 || hours > maxWindowHours {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "hours must be an integer between 1 and 168",
		})
		return 0, false
	}
	return hours, true
}

// parseBounds reads bbox=latMin,lonMin,latMax,lonMax.
func parseBounds(w http.ResponseWriter, r *http.Request) (domain.Bounds, bool) {
	parts := strings.Split(r.URL.Query().Get("bbox"), ",")
	if len(parts) != 4 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "bbox must be latMin,lonMin,latMax,lonMax",
		})
		return domain.Bounds{}, false
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "bbox must be latMin,lonMin,latMax,lonMax",
			})
			return domain.Bounds{}, false
		}
		vals[i] = v
	}

	return domain.Bounds{LatMin: vals[0], LonMin: vals[1], LatMax: vals[2], LonMax: vals[3]}, true
}

// withCORS allows browser clients from any origin; the API is read-only
// public data.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

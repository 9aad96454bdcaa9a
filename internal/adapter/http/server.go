// Package http exposes the ops endpoints and the read-only forecast API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meteowatch/kindex-forecast/internal/domain"
	"github.com/meteowatch/kindex-forecast/internal/sensor"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ForecastSource yields the latest published snapshot.
type ForecastSource interface {
	Snapshot() *domain.Snapshot
}

// Server exposes health, readiness, metrics, and forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	source     ForecastSource
	sensors    []*sensor.Sensor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /v1/forecast routes. The source doubles as the readiness checker in
// production wiring; they are separate parameters so tests can vary them.
func NewServer(addr string, ready ReadinessChecker, source ForecastSource, sensors []*sensor.Sensor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:  source,
		sensors: sensors,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/forecast", s.handleForecast)

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

// forecastResponse is the JSON projection of the current snapshot.
type forecastResponse struct {
	ReferenceDate string        `json:"reference_date"`
	FetchedAt     time.Time     `json:"fetched_at"`
	Unit          string        `json:"unit"`
	StateClass    string        `json:"state_class"`
	Days          []forecastDay `json:"days"`
}

type forecastDay struct {
	Offset   int    `json:"offset"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	KIndex   int    `json:"kindex"`
	Status   string `json:"status"`
	Severity string `json:"severity"`
	Icon     string `json:"icon"`
}

func (s *Server) handleForecast(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no forecast published yet",
		})
		return
	}

	resp := forecastResponse{
		ReferenceDate: snap.ReferenceDate.Format("2006-01-02"),
		FetchedAt:     snap.FetchedAt,
		Unit:          sensor.Unit,
		StateClass:    sensor.StateClass,
		Days:          make([]forecastDay, 0, len(s.sensors)),
	}
	for _, sn := range s.sensors {
		r := sn.Reading()
		resp.Days = append(resp.Days, forecastDay{
			Offset:   sn.Offset(),
			Date:     snap.Date(sn.Offset()).Format("2006-01-02"),
			Name:     sn.Name(),
			KIndex:   r.Value,
			Status:   string(r.Status),
			Severity: string(sn.Severity()),
			Icon:     sn.Icon(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

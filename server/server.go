package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/geotren-matcher/publish"
	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
	"github.com/theoremus-urban-solutions/geotren-matcher/telemetry"
)

// Backend is the cycle driver as seen by the API.
type Backend interface {
	Store() *schedule.Store
	LoadSchedule(store *schedule.Store)
	LastCycle() time.Time
}

// Options configures the HTTP API.
type Options struct {
	Port            int
	RefreshInterval time.Duration
	Codespace       string
	MaxScheduleSize int64
}

// Server serves the HTTP API.
type Server struct {
	opts    Options
	backend Backend
	latest  *publish.Latest
	hub     *publish.Hub
	logger  zerolog.Logger
	router  chi.Router
}

// New builds the router. hub may be nil to disable the websocket endpoint.
func New(opts Options, backend Backend, latest *publish.Latest, hub *publish.Hub, logger zerolog.Logger) *Server {
	if opts.MaxScheduleSize <= 0 {
		opts.MaxScheduleSize = 32 << 20
	}
	s := &Server{
		opts:    opts,
		backend: backend,
		latest:  latest,
		hub:     hub,
		logger:  logger.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.MetricsMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/trains", s.handleTrains)
	r.Get("/api/matches", s.handleMatches)
	r.Get("/api/runs", s.handleRuns)
	r.Get("/api/runs/{code}", s.handleRun)
	r.Post("/api/schedule", s.handleLoadSchedule)
	r.Get("/api/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
	r.Get("/api/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
	r.Get("/api/siri/estimated-timetable.json", s.handleEstimatedTimetableJSON)
	r.Get("/api/siri/estimated-timetable.xml", s.handleEstimatedTimetableXML)
	if hub != nil {
		r.Get("/api/ws", hub.ServeHTTP)
	}
	r.Handle("/metrics", telemetry.Handler())

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info().Msg("server shut down successfully")
	return nil
}

// Package api exposes the published dataset over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/zed-insights/internal/aggregation"
	"github.com/yourusername/zed-insights/internal/insights"
	"github.com/yourusername/zed-insights/internal/metrics"
	"github.com/yourusername/zed-insights/internal/models"
	"github.com/yourusername/zed-insights/internal/service"
)

// Engine is the refresh orchestrator as seen by the API
type Engine interface {
	Current() *aggregation.Dataset
	Refresh(ctx context.Context, force bool) (*aggregation.Dataset, error)
	InvalidateCache(ctx context.Context) error
	Status() service.RefreshStatus
}

// Config holds server configuration
type Config struct {
	Port        int
	Logger      *logrus.Logger
	Engine      Engine
	Events      *EventHub
	MetricsPath string // empty disables the metrics endpoint
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	logger *logrus.Entry
	engine Engine
	events *EventHub
	now    func() time.Time
}

// NewServer creates a new HTTP server
func NewServer(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: cfg.Logger.WithField("component", "api"),
		engine: cfg.Engine,
		events: cfg.Events,
		now:    time.Now,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.MetricsPath)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(metricsPath string) {
	if metricsPath != "" {
		s.router.Handle(metricsPath, metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/cache/clear", s.handleClearCache)

		r.Get("/horses", s.handleListHorses)
		r.Get("/horses/{id}", s.handleGetHorse)
		r.Get("/races/{id}", s.handleGetRace)
		r.Get("/sets", s.handleListSets)
		r.Get("/sets/{key}", s.handleGetSet)
		r.Post("/race-summary", s.handleRaceSummary)

		if s.events != nil {
			r.Get("/events", s.events.ServeWS)
		}
	})
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

type statusResponse struct {
	Dataset aggregation.Summary   `json:"dataset"`
	Refresh service.RefreshStatus `json:"refresh"`
}

type refreshResponse struct {
	Dataset aggregation.Summary `json:"dataset"`
	Error   string              `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Dataset: s.engine.Current().Summary(),
		Refresh: s.engine.Status(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	ds, err := s.engine.Refresh(r.Context(), force)
	if err != nil {
		s.logger.WithError(err).Warn("Refresh requested over API failed")
		code := http.StatusInternalServerError
		if service.IsSourceFailure(err) {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, refreshResponse{Dataset: ds.Summary(), Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{Dataset: ds.Summary()})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.InvalidateCache(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHorses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Current().HorseIDs())
}

func (s *Server) handleGetHorse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile, ok := s.engine.Current().HorseProfile(id)
	if !ok {
		writeNotFound(w, "horse", id)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetRace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	race, ok := s.engine.Current().RaceGroup(id)
	if !ok {
		writeNotFound(w, "race", id)
		return
	}
	writeJSON(w, http.StatusOK, race)
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Current().ListEquipmentSetStats())
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid set key"})
		return
	}

	stats, ok := s.engine.Current().EquipmentSetStats(key)
	if !ok {
		writeNotFound(w, "equipment set", key)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type raceSummaryRequest struct {
	Entrants []insights.Entrant `json:"entrants"`
}

func (s *Server) handleRaceSummary(w http.ResponseWriter, r *http.Request) {
	var req raceSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := insights.ValidateEntrants(req.Entrants); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, insights.BuildRaceSummary(s.engine.Current(), req.Entrants, s.now()))
}

func writeNotFound(w http.ResponseWriter, kind, id string) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("%s %q: %v", kind, id, models.ErrNotFound)})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

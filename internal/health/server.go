// Package health serves liveness and readiness endpoints for the dataset engine.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/zed-insights/internal/aggregation"
)

// DefaultPort is used when no port is configured
const DefaultPort = "8091"

const (
	statusOK       = "ok"
	statusStale    = "stale"
	statusNotReady = "not_ready"
)

// DatabasePinger checks database connectivity
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// DatasetReadiness exposes the published dataset
type DatasetReadiness interface {
	Ready() bool
	Current() *aggregation.Dataset
}

// Config holds the health server settings. MaxDatasetAge of zero disables the
// staleness check.
type Config struct {
	ServiceName   string
	Version       string
	Commit        string
	Port          string
	Logger        *logrus.Logger
	DB            DatabasePinger
	Dataset       DatasetReadiness
	MaxDatasetAge time.Duration
}

// DatasetHealth describes the published dataset
type DatasetHealth struct {
	Published bool                `json:"published"`
	Age       string              `json:"age,omitempty"`
	Summary   aggregation.Summary `json:"summary"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version,omitempty"`
	Commit    string         `json:"commit,omitempty"`
	Dataset   *DatasetHealth `json:"dataset,omitempty"`
}

// ReadyResponse is returned by /ready
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server answers health checks for the engine
type Server struct {
	cfg    Config
	server *http.Server
	logger *logrus.Entry
	now    func() time.Time
}

// NewServer creates a health server; Start binds it
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Server{
		cfg:    cfg,
		logger: cfg.Logger.WithField("component", "health"),
		now:    time.Now,
	}
}

// IsReady reports whether a dataset has been published
func (s *Server) IsReady() bool {
	return s.cfg.Dataset != nil && s.cfg.Dataset.Ready()
}

// Routes returns the health endpoints
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/live", s.handleLive)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	return r
}

// Start binds the port and serves in the background until ctx is done.
// A bind failure is returned to the caller.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("health server listen on %s: %w", s.cfg.Port, err)
	}

	s.server = &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.WithField("addr", ln.Addr().String()).Info("Health server listening")
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Health server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	return nil
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusOK})
}

// handleHealth always answers 200; status is "stale" when the dataset is older than MaxDatasetAge
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	resp := HealthResponse{
		Status:    statusOK,
		Service:   s.cfg.ServiceName,
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
	}

	if s.cfg.Dataset != nil {
		ds := s.cfg.Dataset.Current()
		resp.Dataset = &DatasetHealth{Published: s.IsReady(), Summary: ds.Summary()}
		if resp.Dataset.Published {
			resp.Dataset.Age = ds.Age(now).Round(time.Second).String()
		}
		if s.stale(now) {
			resp.Status = statusStale
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleReady fails until a dataset is published, while it is stale, or while the database is unreachable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	checks := make(map[string]string)
	ready := true

	switch {
	case !s.IsReady():
		ready = false
		checks["dataset"] = "not_published"
	case s.stale(now):
		ready = false
		checks["dataset"] = statusStale
	default:
		checks["dataset"] = statusOK
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.cfg.DB.Ping(ctx); err != nil {
			ready = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = statusOK
		}
	}

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: statusNotReady, Checks: checks})
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Status: statusOK, Checks: checks})
}

func (s *Server) stale(now time.Time) bool {
	if s.cfg.MaxDatasetAge <= 0 || !s.IsReady() {
		return false
	}
	return s.cfg.Dataset.Current().Age(now) > s.cfg.MaxDatasetAge
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

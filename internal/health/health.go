package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
)

// Check probes one dependency
type Check func(ctx context.Context) error

// RunStats reports progress of the periodic analysis
type RunStats interface {
	Runs() int64
	Failures() int64
}

// Server provides liveness and readiness endpoints for the periodic analyzer
type Server struct {
	server    *http.Server
	checks    map[string]Check
	stats     RunStats
	ready     bool
	readyMu   sync.RWMutex
	startTime time.Time
}

// HealthStatus represents process health
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus represents readiness with dependency checks
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Runs      RunsStatus        `json:"runs"`
}

// RunsStatus shows analysis run counters
type RunsStatus struct {
	Total    int64 `json:"total"`
	Failures int64 `json:"failures"`
}

// NewServer creates new health check server. stats may be nil.
func NewServer(port string, checks map[string]Check, stats RunStats) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		checks:    checks,
		stats:     stats,
		startTime: time.Now(),
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReadiness)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReadiness)

	return s
}

// Start serves until Stop is called
func (s *Server) Start() error {
	logger.Info("health check server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping health check server...")
	return s.server.Shutdown(ctx)
}

// SetReady marks the service as ready
func (s *Server) SetReady(ready bool) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	s.ready = ready

	if ready {
		logger.Info("service marked as READY")
	} else {
		logger.Warn("service marked as NOT READY")
	}
}

// handleHealth always answers 200 while the process is alive
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.Checks, _ = s.runChecks(r.Context())
	}

	writeJSON(w, http.StatusOK, status)
}

// handleReadiness answers 200 only when marked ready and every dependency is healthy
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	s.readyMu.RLock()
	ready := s.ready
	s.readyMu.RUnlock()

	checks, allHealthy := s.runChecks(r.Context())

	status := ReadinessStatus{
		Ready:     ready && allHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if s.stats != nil {
		status.Runs = RunsStatus{Total: s.stats.Runs(), Failures: s.stats.Failures()}
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) runChecks(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	allHealthy := true
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			results[name] = "unhealthy: " + err.Error()
			allHealthy = false
			continue
		}
		results[name] = "healthy"
	}
	return results, allHealthy
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode health response", zap.Error(err))
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/podscope/internal/downward"
	"github.com/HerbHall/podscope/internal/metrics"
	"github.com/HerbHall/podscope/internal/version"
)

// Source produces a fresh Snapshot on every call.
type Source interface {
	Collect() downward.Snapshot
}

// Options configures the HTTP listener.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Metrics enables /metrics and request instrumentation when non-nil.
	Metrics *metrics.Recorder
}

// Server is the podscope HTTP server.
type Server struct {
	httpServer *http.Server
	source     Source
	metrics    *metrics.Recorder
	logger     *zap.Logger
	mux        *http.ServeMux
	paths      map[string]struct{}
}

// New creates a new Server instance.
func New(opts Options, src Source, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		source:  src,
		metrics: opts.Metrics,
		logger:  logger,
		mux:     mux,
		paths:   make(map[string]struct{}),
	}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.instrument(mux),
		ReadTimeout:  withDefault(opts.ReadTimeout, 15*time.Second),
		WriteTimeout: withDefault(opts.WriteTimeout, 15*time.Second),
		IdleTimeout:  withDefault(opts.IdleTimeout, 60*time.Second),
	}

	s.registerRoutes()

	return s
}

func withDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// registerRoutes sets up every route. Anything unmatched falls through to
// handleFallback.
func (s *Server) registerRoutes() {
	s.handle("/{$}", "/", s.handleDashboard)
	s.handle("/api/v1/podinfo", "/api/v1/podinfo", s.handlePodInfo)
	s.handle("/api/v1/health", "/api/v1/health", s.handleHealth)
	if s.metrics != nil {
		s.handle("/metrics", "/metrics", s.metrics.Handler().ServeHTTP)
	}
	s.mux.HandleFunc("/", s.handleFallback)
}

func (s *Server) handle(pattern, path string, h http.HandlerFunc) {
	s.mux.HandleFunc("GET "+pattern, h)
	s.paths[path] = struct{}{}
	s.logger.Debug("mounted route", zap.String("pattern", "GET "+pattern))
}

// Handler returns the fully wrapped handler the listener serves.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// collect runs one collection pass for the current request.
func (s *Server) collect(r *http.Request) downward.Snapshot {
	snap := s.source.Collect()
	if s.metrics != nil {
		s.metrics.ObserveSnapshot(snap)
	}
	if !snap.Labels.OK() {
		s.logger.Warn("label source unavailable",
			zap.String("path", snap.Labels.Err.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.NamedError("cause", snap.Labels.Err.Err),
		)
	}
	return snap
}

// handlePodInfo returns the current snapshot as JSON, or YAML with
// ?format=yaml.
func (s *Server) handlePodInfo(w http.ResponseWriter, r *http.Request) {
	format, err := downward.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	var buf bytes.Buffer
	if err := s.collect(r).Report().Encode(&buf, format); err != nil {
		s.logger.Error("failed to encode report", zap.Error(err))
		InternalError(w, "failed to encode report", r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "podscope",
		"version": version.Map(),
	})
}

// handleFallback answers requests no route matched: 405 for a known path
// with the wrong method, 404 otherwise.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.paths[r.URL.Path]; ok {
		MethodNotAllowed(w, "GET, HEAD", r.URL.Path)
		return
	}
	NotFound(w, "no route for "+r.URL.Path, r.URL.Path)
}

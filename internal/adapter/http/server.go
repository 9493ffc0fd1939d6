// Package http serves health, metrics, and the on-demand processing trigger.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trigger queues a processing run. It reports false when a run is in flight
// or one is already queued.
type Trigger interface {
	Trigger(daysFromToday int) bool
}

// Options configures the trigger endpoint.
type Options struct {
	DefaultDays int
	MaxDays     int
}

// Server exposes /healthz, /readyz, /metrics and POST /process.
type Server struct {
	httpServer *http.Server
	trigger    Trigger
	opts       Options
	logger     *slog.Logger
}

// NewServer creates the HTTP server.
func NewServer(addr string, ready sharedobs.ReadinessChecker, trigger Trigger, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		trigger: trigger,
		opts:    opts,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /process", s.handleProcess)

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

// handleProcess queues a run and answers 202 without waiting for it; a run
// can hold the lock well past any request timeout.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	days := s.opts.DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > s.opts.MaxDays {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "days must be an integer between 0 and " + strconv.Itoa(s.opts.MaxDays),
			})
			return
		}
		days = n
	}

	if !s.trigger.Trigger(days) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"status": "run in progress or queued"})
		return
	}
	s.logger.Info("processing run queued", "days", days, "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued", "days": days})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

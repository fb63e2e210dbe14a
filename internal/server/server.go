// Package server provides the HTTP server for the signsync recognition service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/server/api"
	"github.com/ayusman/signsync/internal/session"
	"github.com/ayusman/signsync/internal/store"
)

// Config holds the server configuration.
type Config struct {
	Sessions  *session.Manager
	Store     *store.Store
	StaticDir string
	Logger    *slog.Logger
}

// Server represents the HTTP server for the signsync application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *slog.Logger
}

// New creates a new Server with the given configuration. A nil Sessions
// manager gets a rules-only engine.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Sessions == nil {
		config.Sessions = session.NewManager(nil, session.WithLogger(config.Logger))
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: config.Logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	predict := api.NewPredictHandler(s.config.Sessions, s.logger)

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/predict", predict)
	s.mux.Handle("/api/reset", api.NewResetHandler(s.config.Sessions))
	s.mux.Handle("/api/gestures", api.NewGestureHandler(s.config.Store))
	s.mux.Handle("/api/stream", NewStreamHandler(predict, s.config.Sessions, s.logger))

	sessions := api.NewSessionsHandler(s.config.Sessions, s.config.Store)
	s.mux.Handle("/api/sessions/", sessions)

	// Capture requires sample storage
	if s.config.Store != nil {
		capture := api.NewCaptureHandler(s.config.Store, s.logger)
		s.mux.Handle("/api/capture", capture)
		s.mux.Handle("/api/capture/", capture)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status     string          `json:"status"`
	Uptime     string          `json:"uptime"`
	Engine     string          `json:"engine"`
	Vocabulary []gesture.Label `json:"vocabulary"`
	Sessions   int             `json:"sessions"`
}

// handleHealth reports liveness, the active engine and the vocabulary.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthResponse{
		Status:     "ok",
		Uptime:     time.Since(s.start).Round(time.Second).String(),
		Engine:     s.config.Sessions.Engine().Name(),
		Vocabulary: gesture.Vocabulary(),
		Sessions:   s.config.Sessions.Len(),
	}); err != nil {
		s.logger.Warn("failed to encode health response", "error", err)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// ABOUTME: HTTP server wiring for restlab
// ABOUTME: Composes middleware and routes, serves until context cancellation

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/unilab/restlab/internal/auth"
	"github.com/unilab/restlab/internal/config"
	"github.com/unilab/restlab/internal/store"
)

// Server owns the HTTP surface of restlab. Its collaborators are passed in
// explicitly at construction; there is no ambient singleton state.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	gate     *auth.Gate
	logger   *slog.Logger
	version  string
	serverID string
}

// New creates a Server with explicitly-injected collaborators.
func New(cfg *config.Config, st *store.Store, gate *auth.Gate, logger *slog.Logger, version string) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		gate:     gate,
		logger:   logger.With("component", "api"),
		version:  version,
		serverID: generateServerID(),
	}
}

// generateServerID creates a short instance identifier for this process.
func generateServerID() string {
	return "restlab-" + uuid.NewString()[:8]
}

// Handler builds the complete handler chain:
//
//	request logging -> bearer-token middleware -> mux -> per-route RequireAuth
//
// The token middleware runs on every request, including login and health,
// and never rejects; only the RequireAuth wrapper on the user routes turns
// a missing principal into a 401.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	requireAuth := auth.RequireAuth()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", s.handleLogin)
	mux.Handle("/api/v1/users", requireAuth(http.HandlerFunc(s.handleUsers)))
	mux.Handle("/api/v1/users/", requireAuth(http.HandlerFunc(s.handleUserByID)))

	return s.logRequests(auth.Middleware(s.gate)(mux))
}

// handleHealth handles GET /health requests. No auth required.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"server_id": s.serverID,
		"version":   s.version,
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs every request with a per-request id at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Debug("http request",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully. Shutdown uses a fresh context intentionally: the original
// one is already canceled by the time it runs.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("http server listening", "addr", s.cfg.Server.HTTPAddr, "server_id", s.serverID)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

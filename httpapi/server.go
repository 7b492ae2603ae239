// Package httpapi exposes the session store and renderers over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Cortexa-LLC/mcp/src/gridmd/config"
	"github.com/Cortexa-LLC/mcp/src/gridmd/converter"
	"github.com/Cortexa-LLC/mcp/src/gridmd/logging"
	"github.com/Cortexa-LLC/mcp/src/gridmd/session"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP API.
type Server struct {
	conv     converter.FileConverter
	store    *session.Store
	presets  config.Presets
	maxBytes int64
	router   *chi.Mux
}

// NewServer wires the API routes over store. Files are loaded through conv.
func NewServer(cfg *config.Config, conv converter.FileConverter, store *session.Store, presets config.Presets) *Server {
	s := &Server{
		conv:     conv,
		store:    store,
		presets:  presets,
		maxBytes: cfg.MaxFileSizeBytes,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Put("/", s.handleReplaceSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/ops", s.handleApplyOps)
			r.Post("/reset", s.handleResetSession)
			r.Get("/render", s.handleRender)
			r.Get("/download", s.handleDownload)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.FromContext(ctx).Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

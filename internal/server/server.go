// Package server exposes the services over a JSON REST API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/bobmcallan/fundboard/internal/app"
	"github.com/bobmcallan/fundboard/internal/common"
)

// Server is the fundboard HTTP API bound to one App.
type Server struct {
	app    *app.App
	http   *http.Server
	logger *common.Logger
	cfg    common.ServerConfig
}

// NewServer builds the routed, middleware-wrapped API for a.
func NewServer(a *app.App) *Server {
	cfg := a.Config.Server
	read, write, idle, _ := cfg.Timeouts()

	s := &Server{app: a, logger: a.Logger, cfg: cfg}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      applyMiddleware(mux, a.Logger, a.Config, a.Storage.InternalStore()),
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}
	return s
}

// Handler returns the wrapped mux, for httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves on the configured address until ctx is cancelled, then drains
// in-flight requests for at most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting REST API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error().Err(err).Msg("HTTP server failed")
		return err
	case <-ctx.Done():
	}

	_, _, _, grace := s.cfg.Timeouts()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown failed")
		return err
	}
	s.logger.Info().Msg("REST API server stopped")
	return nil
}

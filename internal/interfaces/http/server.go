package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/complytrack/complytrack/internal/config"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
)

// Server wraps http.Server with the engine's lifecycle conventions.
type Server struct {
	srv    *http.Server
	cfg    config.ServerConfig
	logger logging.Logger
}

// NewServer binds a handler to the configured address.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: log.Named("http"),
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start serves until Stop is called.  It returns nil on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.cfg.Addr()))
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

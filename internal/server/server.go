package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/devops863/kaizen-sourcing/internal/common/config"
	"github.com/devops863/kaizen-sourcing/internal/common/logger"
)

// Server owns the listener for the submission API.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout int
	logger          logger.Logger
}

func New(cfg config.ServerConfig, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewRouter(cfg, deps),
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          deps.Logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(s.shutdownTimeout))
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Start() {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Infof("starting server on %s", addr)

	if err := s.echo.Start(addr); err != nil {
		s.logger.Errorf("server stopped: %v", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) GET(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, middleware...)
}

func (s *Server) POST(path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) {
	s.echo.POST(path, handler, middleware...)
}

func (s *Server) Group(prefix string, middleware ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, middleware...)
}

func (s *Server) Use(middleware ...echo.MiddlewareFunc) {
	s.echo.Use(middleware...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

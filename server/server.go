// Package server exposes the parse engine over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/internal/profile"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
	"github.com/hrygo/fastdatetime/server/middleware"
	apiv1 "github.com/hrygo/fastdatetime/server/router/api/v1"
)

type Server struct {
	Profile *profile.Profile
	Parser  *dateparse.Service

	echoServer *echo.Echo
	logger     *slog.Logger
}

// NewServer builds the echo server and mounts the API.
func NewServer(profile *profile.Profile, parser *dateparse.Service, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.RequestID(logger))

	s := &Server{
		Profile:    profile,
		Parser:     parser,
		echoServer: echoServer,
		logger:     logger,
	}

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	var mws []echo.MiddlewareFunc
	if profile.RateLimited() {
		mws = append(mws, middleware.NewRateLimiter(profile.RateLimit, profile.RateBurst).Middleware())
	}
	apiv1.NewAPIV1Service(profile, parser, metrics).Register(echoServer, mws...)
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the profile address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	s.echoServer.Listener = listener

	s.logger.Info("server started",
		slog.String("addr", listener.Addr().String()),
		slog.String("mode", s.Profile.Mode),
		slog.String("version", s.Profile.Version))

	go func() {
		if err := s.echoServer.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Shutdown stops the server, waiting at most 10 seconds for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.logger.Info("server stopped properly")
}

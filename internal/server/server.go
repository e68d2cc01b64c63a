// Package server exposes the progression engine over HTTP. Evaluation
// endpoints are stateless and take contract JSON; the transition endpoint
// drives the store's atomic update so the persisted record stays the
// single source of truth for lifecycle state.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Desire-2/afriprog/internal/contract"
	"github.com/Desire-2/afriprog/internal/engine"
	"github.com/Desire-2/afriprog/internal/store"
	"github.com/Desire-2/afriprog/internal/telemetry"
)

type (
	Options struct {
		Addr           string
		Debug          bool
		DisableReqLogs bool
		Engine         *engine.Engine
		Progress       store.ProgressRepo
		Logger         *zap.Logger
		Metrics        *telemetry.Metrics
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetrics()
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.opts.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.Logger))
	}
	// do not recover in debug mode
	if !s.opts.Debug {
		s.app.Use(middleware.Recover())
	}

	s.app.HTTPErrorHandler = httpErrorHandler

	s.app.GET("/healthz", health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")
	registerProgressionAPI(v1, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":          "ok",
		"contractVersion": contract.Version,
	})
}

// requestLogger adapts echo's request logging middleware to zap.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

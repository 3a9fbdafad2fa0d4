package api

import (
	"context"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/api/handlers"
	apimw "github.com/anivibe/anivibe/internal/api/middleware"
	"github.com/anivibe/anivibe/internal/health"
	"github.com/anivibe/anivibe/internal/live"
	"github.com/anivibe/anivibe/internal/scheduler"
	"github.com/anivibe/anivibe/internal/web"
)

// Options carries the services the server exposes. Health, Scheduler and
// Logs are optional; their routes are skipped when nil.
type Options struct {
	Pages     *web.Handlers
	Renderer  echo.Renderer
	Hub       *live.Hub
	Static    fs.FS
	Backend   string
	Health    *health.Service
	Checks    map[health.HealthCategory]health.CheckFunc
	Scheduler *scheduler.Scheduler
	Logs      LogsProvider
}

// Server handles HTTP requests for the pages, the live socket and the
// diagnostics API.
type Server struct {
	echo      *echo.Echo
	opts      Options
	logger    zerolog.Logger
	startTime time.Time
}

// NewServer creates a new server instance.
func NewServer(opts Options, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = opts.Renderer

	s := &Server{
		echo:      e,
		opts:      opts,
		logger:    logger.With().Str("component", "http").Logger(),
		startTime: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(apimw.SecurityHeaders())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/static/")
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures page, socket and API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	if s.opts.Static != nil {
		s.echo.StaticFS("/static", s.opts.Static)
	}
	if s.opts.Hub != nil {
		s.echo.GET("/ws", s.opts.Hub.HandleWebSocket)
	}

	api := s.echo.Group("/api")
	api.GET("/status", s.getStatus)

	if s.opts.Health != nil {
		health.NewHandlers(s.opts.Health, s.opts.Checks).RegisterRoutes(api.Group("/health"))
	}

	if s.opts.Scheduler != nil {
		tasks := handlers.NewSchedulerHandler(s.opts.Scheduler)
		g := api.Group("/tasks")
		g.GET("", tasks.ListTasks)
		g.GET("/:id", tasks.GetTask)
		g.POST("/:id/run", tasks.RunTask)
	}

	if s.opts.Logs != nil {
		NewLogsHandlers(s.opts.Logs).RegisterRoutes(api.Group("/logs"))
	}

	if s.opts.Pages != nil {
		s.opts.Pages.RegisterRoutes(s.echo)
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/anivibe/anivibe/internal/api"
	"github.com/anivibe/anivibe/internal/backend"
	"github.com/anivibe/anivibe/internal/config"
	"github.com/anivibe/anivibe/internal/health"
	"github.com/anivibe/anivibe/internal/hooks"
	"github.com/anivibe/anivibe/internal/live"
	"github.com/anivibe/anivibe/internal/logger"
	"github.com/anivibe/anivibe/internal/nav"
	"github.com/anivibe/anivibe/internal/scheduler"
	"github.com/anivibe/anivibe/internal/scheduler/tasks"
	"github.com/anivibe/anivibe/internal/startup"
	"github.com/anivibe/anivibe/internal/web"
	assets "github.com/anivibe/anivibe/web"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("backend", cfg.Backend.BaseURL).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting AniVibe")

	loc, err := cfg.UI.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}
	clock := clockwork.NewRealClock()
	client := backend.NewClient(cfg.Backend, log.Logger)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}
	static, err := assets.StaticFS()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open static assets")
	}

	env := web.Env{
		Deps: hooks.Deps{
			Source:   client,
			Clock:    clock,
			Location: loc,
			Logger:   log.Logger,
		},
		Components: web.Components{Proxy: client.ProxyImageURL, Location: loc},
		Nav:        nav.MustLoad(),
	}
	pages := web.NewHandlers(env, renderer, cfg.UI.Interval(), log.Logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := live.NewHub(pages, clock, cfg.UI.Interval(), log.Logger)
	go hub.Run(ctx)

	healthService := health.NewService(clock, log.Logger)
	healthService.SetBroadcaster(hub)
	checker := health.NewBackendChecker(healthService, client, client.BaseURL())

	sched, err := scheduler.New(clock, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterBackendProbeTask(sched, checker, &cfg.Scheduler, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to register backend probe")
	}
	sched.Start()

	go func() {
		if err := startup.Warmup(ctx, clock, startup.DefaultRetryConfig(), checker.Check, log.Logger); err != nil {
			log.Warn().Err(err).Msg("backend did not wake up, pages will show errors until it does")
		}
	}()

	server := api.NewServer(api.Options{
		Pages:     pages,
		Renderer:  renderer,
		Hub:       hub,
		Static:    static,
		Backend:   client.BaseURL(),
		Health:    healthService,
		Checks:    map[health.HealthCategory]health.CheckFunc{health.CategoryBackend: checker.Check},
		Scheduler: sched,
		Logs:      log,
	}, log.Logger)

	go func() {
		addr := cfg.Server.Address()
		log.Info().Str("address", addr).Msg("HTTP server listening")
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		log.Info().Msg("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	stop()
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}

	log.Info().Msg("server stopped")
}

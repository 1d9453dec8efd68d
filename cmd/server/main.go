package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fieldops/opsboard/internal/cache"
	"github.com/fieldops/opsboard/internal/config"
	httpapi "github.com/fieldops/opsboard/internal/http"
	"github.com/fieldops/opsboard/internal/scheduler"
	"github.com/fieldops/opsboard/internal/service"
	"github.com/fieldops/opsboard/internal/upstream"
	"github.com/fieldops/opsboard/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "opsboard").Logger()

	ctx := context.Background()

	var gate cache.Gate
	if cfg.CacheBackend == "redis" {
		redisGate, err := cache.NewRedis(ctx, cfg.RedisAddr, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
			gate = cache.NewMemory()
		} else {
			defer redisGate.Close()
			gate = redisGate
			logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
		}
	} else {
		gate = cache.NewMemory()
	}

	var client upstream.Client
	if cfg.UpstreamMock {
		client = upstream.Mock{Seed: "opsboard-dev"}
		logger.Info().Msg("using mock upstream")
	} else {
		client = upstream.NewHTTPClient(cfg.APIBase, cfg.RequestTimeout)
	}

	views := view.NewRegistry(logger, view.FallbackMode(cfg.FallbackMode),
		view.WidgetSummary, view.WidgetZones, view.WidgetTeams, view.WidgetTickets,
		view.WidgetPerformance, view.WidgetMap, view.WidgetMaterials,
	)

	refresher := &service.Refresher{
		Upstream: client,
		Gate:     gate,
		Views:    views,
		Logger:   logger,
		TTL:      cfg.CacheTTL,
		PageSize: cfg.UpstreamPageSize,
	}

	sched := scheduler.New(logger)
	mustRegister(logger, sched, scheduler.Task{Name: "board", Period: cfg.BoardPeriod, Fn: refresher.RefreshBoard})
	mustRegister(logger, sched, scheduler.Task{Name: "performance", Period: cfg.PerformancePeriod, Fn: refresher.RefreshPerformance})
	sched.Start()

	router := httpapi.Router(cfg, views, client, sched, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	sched.Stop()
	logger.Info().Msg("server stopped")
}

func mustRegister(logger zerolog.Logger, sched *scheduler.Scheduler, task scheduler.Task) {
	if err := sched.Register(task); err != nil {
		logger.Fatal().Err(err).Str("task", task.Name).Msg("failed to register refresh task")
	}
}

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventdesk/internal/cache"
	"eventdesk/internal/config"
	"eventdesk/internal/database"
	"eventdesk/internal/feed"
	"eventdesk/internal/handlers"
	"eventdesk/internal/jobs"
	"eventdesk/internal/log"
	"eventdesk/internal/repository"
	"eventdesk/internal/server"
	"eventdesk/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "api")

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	bannerStore, err := storage.NewBannerStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init banner store")
	}
	if err := bannerStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure banner bucket failed")
	}

	hub := feed.NewHub()
	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, bannerStore, hub, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	feedCtx, stopFeed := context.WithCancel(ctx)
	runner := feed.NewRunner(hub, repository.NewEventRepository(dbPool), redisClient, logger)
	go func() {
		if err := runner.Run(feedCtx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("feed runner stopped")
		}
	}()

	scheduler := jobs.NewScheduler(redisClient, repository.NewSessionRepository(dbPool), cfg.Redis.Stream, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stopFeed, dbPool, redisClient)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	stopFeed context.CancelFunc,
	db *pgxpool.Pool,
	redisClient *redis.Client,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	stopFeed()
	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}

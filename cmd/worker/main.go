package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"eventdesk/internal/cache"
	"eventdesk/internal/config"
	"eventdesk/internal/database"
	"eventdesk/internal/log"
	"eventdesk/internal/mail"
	"eventdesk/internal/queue"
	"eventdesk/internal/repository"
	"eventdesk/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, "worker")

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	mailer := mail.NewSender(cfg.Mail.ResendAPIKey, cfg.Mail.From, logger)
	processor := tasks.NewProcessor(
		repository.NewEventRepository(dbPool),
		mailer,
		cfg.Mail.DigestTo,
		logger,
	)

	consumer := queue.NewConsumer(
		redisClient,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		time.Minute,
		logger,
		processor,
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(runCtx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-runCtx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}

package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"eventdesk/internal/repository"
)

// Scheduler drives the recurring work: a daily digest task for the
// worker and an hourly sweep of expired refresh sessions.
type Scheduler struct {
	cron     *cron.Cron
	queue    *redis.Client
	sessions *repository.SessionRepository
	stream   string
	log      zerolog.Logger
}

func NewScheduler(queue *redis.Client, sessions *repository.SessionRepository, stream string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		queue:    queue,
		sessions: sessions,
		stream:   stream,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 8 * * *", s.enqueueDigest); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.sweepSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueDigest() {
	if s.queue == nil {
		return
	}
	err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"type": "digest"},
	}).Err()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue digest failed")
	}
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired sessions swept")
	}
}

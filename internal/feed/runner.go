package feed

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventdesk/internal/models"
)

type EventLister interface {
	List(ctx context.Context) ([]models.Event, error)
}

// Runner bridges the pub/sub channel to the local hub: on every change
// notification it re-reads the full ordered list and broadcasts it.
// Subscribers therefore only ever see monotonically consistent
// snapshots, never partial updates.
type Runner struct {
	hub    *Hub
	events EventLister
	rdb    *redis.Client
	log    zerolog.Logger
}

func NewRunner(hub *Hub, events EventLister, rdb *redis.Client, log zerolog.Logger) *Runner {
	return &Runner{hub: hub, events: events, rdb: rdb, log: log}
}

func (r *Runner) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	r.refresh(ctx)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			r.refresh(ctx)
		}
	}
}

func (r *Runner) refresh(ctx context.Context) {
	events, err := r.events.List(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("feed refresh failed")
		return
	}
	r.hub.Broadcast(events)
}

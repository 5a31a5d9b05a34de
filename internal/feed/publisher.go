package feed

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventdesk/internal/models"
)

// Channel carries change notifications between API instances.
const Channel = "events:changed"

// Publisher pushes write notifications to the pub/sub channel (for
// live feeds) and to the activity stream (for the worker).
type Publisher struct {
	rdb    *redis.Client
	stream string
	log    zerolog.Logger
}

func NewPublisher(rdb *redis.Client, stream string, log zerolog.Logger) *Publisher {
	return &Publisher{rdb: rdb, stream: stream, log: log}
}

func (p *Publisher) EventCreated(ctx context.Context, event models.Event) {
	if p.rdb == nil {
		return
	}

	if err := p.rdb.Publish(ctx, Channel, event.ID).Err(); err != nil {
		p.log.Error().Err(err).Str("event_id", event.ID).Msg("publish change failed")
	}

	if err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":    "event.created",
			"eventId": event.ID,
			"title":   event.Title,
			"date":    event.Date.Format(models.DateLayout),
		},
	}).Err(); err != nil {
		p.log.Error().Err(err).Str("event_id", event.ID).Msg("enqueue activity failed")
	}
}

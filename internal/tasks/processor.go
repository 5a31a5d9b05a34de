package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventdesk/internal/mail"
	"eventdesk/internal/models"
)

type EventReader interface {
	GetByID(ctx context.Context, id string) (models.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error)
}

// Processor handles activity-stream tasks: a notification when an
// event is created and the daily upcoming-events digest.
type Processor struct {
	events     EventReader
	mailer     *mail.Sender
	recipients []string
	logger     zerolog.Logger
}

type TaskPayload struct {
	Type    string `json:"type"`
	EventID string `json:"eventId"`
	Title   string `json:"title"`
	Date    string `json:"date"`
}

func NewProcessor(events EventReader, mailer *mail.Sender, recipients []string, logger zerolog.Logger) *Processor {
	return &Processor{
		events:     events,
		mailer:     mailer,
		recipients: recipients,
		logger:     logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case "event.created":
		return p.handleEventCreated(ctx, payload)
	case "digest":
		return p.handleDigest(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (p *Processor) handleEventCreated(ctx context.Context, payload TaskPayload) error {
	if !p.mailer.Enabled() || len(p.recipients) == 0 {
		p.logger.Info().Str("event_id", payload.EventID).Msg("event notification skipped: mail disabled")
		return nil
	}

	event, err := p.events.GetByID(ctx, payload.EventID)
	if err != nil {
		return fmt.Errorf("load event %s: %w", payload.EventID, err)
	}

	subject := fmt.Sprintf("New event: %s", event.Title)
	html := fmt.Sprintf(
		"<h2>%s</h2><p>%s</p><p><b>Date:</b> %s<br><b>Location:</b> %s</p><p><a href=%q>Register</a></p>",
		event.Title,
		event.Description,
		event.Date.Format(models.DateLayout),
		event.Location,
		event.Link,
	)
	return p.mailer.Send(ctx, p.recipients, subject, html)
}

func (p *Processor) handleDigest(ctx context.Context) error {
	if !p.mailer.Enabled() || len(p.recipients) == 0 {
		p.logger.Info().Msg("digest skipped: mail disabled")
		return nil
	}

	now := time.Now()
	upcoming, err := p.events.ListUpcoming(ctx, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		return fmt.Errorf("list upcoming: %w", err)
	}
	if len(upcoming) == 0 {
		p.logger.Info().Msg("digest skipped: nothing upcoming")
		return nil
	}

	var b strings.Builder
	b.WriteString("<h2>Upcoming community events</h2><ul>")
	for _, event := range upcoming {
		fmt.Fprintf(&b, "<li><b>%s</b> on %s, %s</li>", event.Title, event.Date.Format(models.DateLayout), event.Location)
	}
	b.WriteString("</ul>")

	return p.mailer.Send(ctx, p.recipients, "Your upcoming events digest", b.String())
}

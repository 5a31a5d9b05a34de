package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eventdesk/internal/ids"
	"eventdesk/internal/models"
)

var ErrNoRegistrationLink = errors.New("no registration link provided")

// ValidationError names the first event field that failed the
// presence check.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

type EventStore interface {
	Create(ctx context.Context, event models.Event) error
	GetByID(ctx context.Context, id string) (models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error)
	IncrementAttendees(ctx context.Context, id string) (models.Event, error)
	SetBannerURL(ctx context.Context, id string, url string) error
}

// ChangeNotifier fans a successful write out to the live feed and the
// worker stream. Notification failures never fail the write.
type ChangeNotifier interface {
	EventCreated(ctx context.Context, event models.Event)
}

type EventService struct {
	events EventStore
	notify ChangeNotifier
	log    zerolog.Logger
}

func NewEventService(events EventStore, notify ChangeNotifier, log zerolog.Logger) *EventService {
	return &EventService{
		events: events,
		notify: notify,
		log:    log,
	}
}

type CreateEventInput struct {
	Title       string
	Description string
	Date        string
	StartTime   string
	Location    string
	Link        string
}

// Create validates the form fields and writes the record. Nothing is
// written when validation fails.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (models.Event, error) {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"title", input.Title},
		{"description", input.Description},
		{"date", input.Date},
		{"location", input.Location},
		{"link", input.Link},
	} {
		if strings.TrimSpace(field.value) == "" {
			return models.Event{}, &ValidationError{Field: field.name}
		}
	}

	date, err := time.Parse(models.DateLayout, input.Date)
	if err != nil {
		return models.Event{}, &ValidationError{Field: "date"}
	}

	event := models.Event{
		ID:          ids.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        date,
		StartTime:   strings.TrimSpace(input.StartTime),
		Location:    strings.TrimSpace(input.Location),
		Link:        strings.TrimSpace(input.Link),
	}

	if err := s.events.Create(ctx, event); err != nil {
		return models.Event{}, err
	}

	if s.notify != nil {
		s.notify.EventCreated(ctx, event)
	}

	s.log.Info().Str("event_id", event.ID).Str("title", event.Title).Msg("event created")
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (models.Event, error) {
	return s.events.GetByID(ctx, id)
}

// List returns the full collection, newest first. This is the same
// snapshot the live feed broadcasts.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.events.List(ctx)
}

// Upcoming returns events dated today or later, soonest first.
func (s *EventService) Upcoming(ctx context.Context, now time.Time) ([]models.Event, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.events.ListUpcoming(ctx, day)
}

// Register counts an attendee and hands back the registration link.
func (s *EventService) Register(ctx context.Context, id string) (models.Event, error) {
	event, err := s.events.IncrementAttendees(ctx, id)
	if err != nil {
		return models.Event{}, err
	}
	if event.Link == "" {
		return event, ErrNoRegistrationLink
	}
	return event, nil
}

func (s *EventService) SetBanner(ctx context.Context, id string, url string) error {
	return s.events.SetBannerURL(ctx, id, url)
}

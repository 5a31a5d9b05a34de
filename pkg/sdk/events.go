package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("event not found")
	ErrNoLink   = errors.New("no registration link provided")
)

// Event mirrors the API's event record. Date stays in "2006-01-02"
// wire form; ISO dates compare correctly as strings.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	Location    string    `json:"location"`
	Link        string    `json:"link"`
	BannerURL   *string   `json:"bannerUrl,omitempty"`
	Attendees   int       `json:"attendees"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidationError reports the first empty required field of the
// creation form. No request is sent when it fires.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Events does a one-shot snapshot read of the full list, newest
// record first.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var resp struct {
		Events []Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// EventDetail is a single record plus its rendered description.
type EventDetail struct {
	Event           Event
	DescriptionHTML string
}

// Event loads one record by id; ErrNotFound sends the caller back to
// the list view.
func (c *Client) Event(ctx context.Context, id string) (EventDetail, error) {
	var resp struct {
		Event           Event  `json:"event"`
		DescriptionHTML string `json:"descriptionHtml"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/events/"+id, nil, &resp)
	if err != nil {
		var apiErr *apiError
		if asAPIError(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return EventDetail{}, ErrNotFound
		}
		return EventDetail{}, err
	}
	return EventDetail{Event: resp.Event, DescriptionHTML: resp.DescriptionHTML}, nil
}

type CreateEventInput struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	Link        string
}

// CreateEvent validates the form fields locally, then writes the
// record. Validation failures never reach the store.
func (c *Client) CreateEvent(ctx context.Context, input CreateEventInput) (Event, error) {
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
			return Event{}, &ValidationError{Field: field.name}
		}
	}

	var resp struct {
		Event Event `json:"event"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/events", map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"date":        input.Date,
		"time":        input.Time,
		"location":    input.Location,
		"link":        input.Link,
	}, &resp)
	if err != nil {
		return Event{}, err
	}
	return resp.Event, nil
}

// RegisterURL resolves the registration call-to-action for an event.
func RegisterURL(event Event) (string, error) {
	if event.Link == "" {
		return "", ErrNoLink
	}
	return event.Link, nil
}

// EventList is the local view state behind a dashboard: a snapshot of
// the store plus the optimistic edits made between snapshots.
type EventList struct {
	items []Event
}

// ApplySnapshot replaces the list wholesale; snapshots from the watch
// feed always win over optimistic local state.
func (l *EventList) ApplySnapshot(events []Event) {
	l.items = append(l.items[:0], events...)
}

// Append optimistically adds a just-created record and re-sorts by
// date so the ordering invariant holds until the next snapshot.
func (l *EventList) Append(event Event) {
	l.items = append(l.items, event)
	sort.SliceStable(l.items, func(i, j int) bool {
		if l.items[i].Date != l.items[j].Date {
			return l.items[i].Date < l.items[j].Date
		}
		return l.items[i].ID < l.items[j].ID
	})
}

// Remove drops a record from the local list only. Nothing is deleted
// from the store; the next snapshot may bring the record back.
func (l *EventList) Remove(id string) {
	kept := l.items[:0]
	for _, event := range l.items {
		if event.ID != id {
			kept = append(kept, event)
		}
	}
	l.items = kept
}

func (l *EventList) Items() []Event {
	out := make([]Event, len(l.items))
	copy(out, l.items)
	return out
}

// Filter is the search-bar behavior: case-insensitive title substring
// over the current local list.
func (l *EventList) Filter(query string) []Event {
	return FilterByTitle(l.items, query)
}

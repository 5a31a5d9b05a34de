package sdk

import (
	"sort"
	"strings"
	"time"
)

// viewLimit caps the dashboard tiles.
const viewLimit = 8

// FilterByTitle keeps events whose title contains the query,
// case-insensitive. An empty query keeps everything. Applying the
// same query twice returns the same set.
func FilterByTitle(events []Event, query string) []Event {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Event, 0, len(events))
	for _, event := range events {
		if q == "" || strings.Contains(strings.ToLower(event.Title), q) {
			out = append(out, event)
		}
	}
	return out
}

// Popular ranks by attendee count, most registered first.
func Popular(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Attendees > out[j].Attendees
	})
	return capped(out)
}

// Upcoming keeps events dated strictly after now, soonest first.
// Same-day events tie-break on record id, which is creation-ordered.
func Upcoming(events []Event, now time.Time) []Event {
	today := now.UTC().Format("2006-01-02")
	out := make([]Event, 0, len(events))
	for _, event := range events {
		if event.Date > today {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return capped(out)
}

// Nearby keeps events whose location contains the given place,
// case-insensitive.
func Nearby(events []Event, location string) []Event {
	loc := strings.ToLower(strings.TrimSpace(location))
	out := make([]Event, 0, len(events))
	for _, event := range events {
		if loc == "" || strings.Contains(strings.ToLower(event.Location), loc) {
			out = append(out, event)
		}
	}
	return capped(out)
}

func capped(events []Event) []Event {
	if len(events) > viewLimit {
		return events[:viewLimit]
	}
	return events
}

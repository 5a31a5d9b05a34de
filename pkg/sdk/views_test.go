package sdk

import (
	"fmt"
	"testing"
	"time"
)

func sampleEvents() []Event {
	return []Event{
		{ID: "a", Title: "Go Meetup", Date: "2026-05-01", Location: "Seattle", Attendees: 12},
		{ID: "b", Title: "Rust Meetup", Date: "2026-04-01", Location: "Portland", Attendees: 40},
		{ID: "c", Title: "go conference", Date: "2026-03-01", Location: "Seattle", Attendees: 7},
		{ID: "d", Title: "Picnic", Date: "2026-04-01", Location: "Lake Park", Attendees: 3},
	}
}

func TestFilterByTitle(t *testing.T) {
	events := sampleEvents()

	got := FilterByTitle(events, "go")
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("matched %s and %s, want a and c", got[0].ID, got[1].ID)
	}

	// Filtering the filtered result again changes nothing.
	again := FilterByTitle(got, "go")
	if len(again) != len(got) {
		t.Errorf("second pass shrank the result: %d vs %d", len(again), len(got))
	}

	if got := FilterByTitle(events, ""); len(got) != len(events) {
		t.Errorf("empty query kept %d of %d", len(got), len(events))
	}

	if got := FilterByTitle(events, "zzz"); len(got) != 0 {
		t.Errorf("impossible query matched %d events", len(got))
	}
}

func TestPopular(t *testing.T) {
	got := Popular(sampleEvents())
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("order = %s, %s; want b, a", got[0].ID, got[1].ID)
	}
	if got[len(got)-1].ID != "d" {
		t.Errorf("least attended should sort last, got %s", got[len(got)-1].ID)
	}
}

func TestUpcomingOrderAndCutoff(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	got := Upcoming(sampleEvents(), now)

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3 (the March one is past)", len(got))
	}
	// Soonest first; same-day events tie-break on id.
	want := []string{"b", "d", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestUpcomingExcludesToday(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	got := Upcoming(sampleEvents(), now)

	for _, event := range got {
		if event.Date == "2026-04-01" {
			t.Errorf("same-day event %s should not be upcoming", event.ID)
		}
	}
}

func TestNearby(t *testing.T) {
	got := Nearby(sampleEvents(), "seattle")
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	for _, event := range got {
		if event.Location != "Seattle" {
			t.Errorf("unexpected location %q", event.Location)
		}
	}
}

func TestViewsCapAtEight(t *testing.T) {
	var events []Event
	for i := 0; i < 20; i++ {
		events = append(events, Event{
			ID:        fmt.Sprintf("e%02d", i),
			Title:     "Filler",
			Date:      fmt.Sprintf("2026-06-%02d", i+1),
			Location:  "Anywhere",
			Attendees: i,
		})
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := Upcoming(events, now); len(got) != 8 {
		t.Errorf("Upcoming returned %d, want 8", len(got))
	}
	if got := Popular(events); len(got) != 8 {
		t.Errorf("Popular returned %d, want 8", len(got))
	}
	if got := Nearby(events, "anywhere"); len(got) != 8 {
		t.Errorf("Nearby returned %d, want 8", len(got))
	}
}

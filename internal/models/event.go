package models

import "time"

// Event is a single community event record. Date carries only the
// calendar day (midnight UTC); StartTime, when present, is the
// wall-clock "HH:MM" shown to attendees.
type Event struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	Location    string
	Link        string
	BannerURL   *string
	Attendees   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DateLayout is the wire format for Event.Date.
const DateLayout = "2006-01-02"

package handlers

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"

	"eventdesk/internal/models"
)

// CalendarFeed publishes upcoming events as an iCalendar feed, so the
// list can be subscribed to from any calendar client.
func (h HandlerSet) CalendarFeed(c *gin.Context) {
	events, err := h.events.Upcoming(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//eventdesk//community events//EN")

	for _, event := range events {
		ve := cal.AddEvent(fmt.Sprintf("%s@eventdesk", event.ID))
		ve.SetDtStampTime(time.Now())
		ve.SetCreatedTime(event.CreatedAt)
		ve.SetSummary(event.Title)
		ve.SetDescription(event.Description)
		ve.SetLocation(event.Location)
		if event.Link != "" {
			ve.SetURL(event.Link)
		}

		if start, ok := eventStart(event); ok {
			ve.SetStartAt(start)
			ve.SetEndAt(start.Add(2 * time.Hour))
		} else {
			ve.SetAllDayStartAt(event.Date)
			ve.SetAllDayEndAt(event.Date.AddDate(0, 0, 1))
		}
	}

	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

// eventStart combines the calendar date with the optional "HH:MM"
// start time. Events without one render as all-day.
func eventStart(event models.Event) (time.Time, bool) {
	if event.StartTime == "" {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", event.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	d := event.Date
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), true
}

package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"eventdesk/internal/models"
	"eventdesk/internal/repository"
	"eventdesk/internal/service"
)

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type eventResponse struct {
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

func toEventResponse(event models.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date.Format(models.DateLayout),
		Time:        event.StartTime,
		Location:    event.Location,
		Link:        event.Link,
		BannerURL:   event.BannerURL,
		Attendees:   event.Attendees,
		CreatedAt:   event.CreatedAt,
	}
}

func toEventResponses(events []models.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toEventResponse(event))
	}
	return out
}

func (h HandlerSet) ListEvents(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": toEventResponses(events)})
}

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Link        string `json:"link"`
}

func (h HandlerSet) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.Create(c.Request.Context(), service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.Time,
		Location:    req.Location,
		Link:        req.Link,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": toEventResponse(event)})
}

func (h HandlerSet) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var rendered bytes.Buffer
	if err := mdRenderer.Convert([]byte(event.Description), &rendered); err != nil {
		h.log.Warn().Err(err).Str("event_id", event.ID).Msg("description render failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"event":           toEventResponse(event),
		"descriptionHtml": rendered.String(),
	})
}

// RegisterForEvent counts the click and sends the visitor on to the
// external registration page.
func (h HandlerSet) RegisterForEvent(c *gin.Context) {
	event, err := h.events.Register(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event_not_found"})
		case errors.Is(err, service.ErrNoRegistrationLink):
			c.JSON(http.StatusNotFound, gin.H{"error": "no_registration_link"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Redirect(http.StatusFound, event.Link)
}

// WatchEvents streams full-list snapshots over SSE. The subscription
// is released when the client goes away; one connection, one
// subscribe, one unsubscribe.
func (h HandlerSet) WatchEvents(c *gin.Context) {
	sub := h.hub.Subscribe()
	defer sub.Stop()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, err := h.events.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.SSEvent("snapshot", toEventResponses(events))
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", toEventResponses(snapshot))
			return true
		}
	})
}

func (h HandlerSet) UploadBanner(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	url, err := h.banners.Attach(c.Request.Context(), c.Param("id"), file, header)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event_not_found"})
		case errors.Is(err, service.ErrBannerTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"bannerUrl": url})
}

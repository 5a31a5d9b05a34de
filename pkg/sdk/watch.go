package sdk

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// EventWatch is a live subscription to the event list. Snapshots
// delivers the full list on connect and again after every change.
type EventWatch struct {
	Snapshots <-chan []Event

	cancel context.CancelFunc
	once   sync.Once
}

// Stop tears down the subscription. Safe to call more than once.
func (w *EventWatch) Stop() {
	w.once.Do(w.cancel)
}

// streamClient carries no Timeout: http.Client.Timeout bounds the
// whole body read, which would sever an open stream. Cancellation
// flows through the request context instead.
var streamClient = &http.Client{}

// WatchEvents opens the server-sent event stream at /events/watch.
// The returned watch stays live until Stop or ctx cancellation.
func (c *Client) WatchEvents(ctx context.Context) (*EventWatch, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/events/watch", nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build watch request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open watch stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, &apiError{Status: resp.StatusCode, Message: "watch stream rejected"}
	}

	snapshots := make(chan []Event, 1)
	watch := &EventWatch{Snapshots: snapshots, cancel: cancel}

	go func() {
		defer resp.Body.Close()
		defer close(snapshots)

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		inSnapshot := false
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				inSnapshot = strings.TrimSpace(strings.TrimPrefix(line, "event:")) == "snapshot"
			case strings.HasPrefix(line, "data:") && inSnapshot:
				var events []Event
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &events); err != nil {
					continue
				}
				// Displace an unread snapshot; only the latest matters.
				select {
				case snapshots <- events:
				default:
					select {
					case <-snapshots:
					default:
					}
					snapshots <- events
				}
			}
		}
	}()

	return watch, nil
}

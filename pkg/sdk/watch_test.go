package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func sseServer(t *testing.T, snapshots ...[]Event) (*httptest.Server, *int64) {
	t.Helper()

	var open int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&open, 1)
		defer atomic.AddInt64(&open, -1)

		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer does not flush")
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")

		for _, snapshot := range snapshots {
			data, _ := json.Marshal(snapshot)
			fmt.Fprintf(w, "event:snapshot\ndata:%s\n\n", data)
			flusher.Flush()
		}

		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv, &open
}

func TestWatchEventsReceivesSnapshots(t *testing.T) {
	srv, _ := sseServer(t,
		[]Event{{ID: "e1", Title: "First"}},
		[]Event{{ID: "e1", Title: "First"}, {ID: "e2", Title: "Second"}},
	)
	client, _ := New(srv.URL, nil)

	watch, err := client.WatchEvents(context.Background())
	if err != nil {
		t.Fatalf("WatchEvents failed: %v", err)
	}
	defer watch.Stop()

	deadline := time.After(2 * time.Second)
	var last []Event
	for len(last) != 2 {
		select {
		case snapshot, ok := <-watch.Snapshots:
			if !ok {
				t.Fatalf("stream closed early, last snapshot had %d events", len(last))
			}
			last = snapshot
		case <-deadline:
			t.Fatalf("timed out, last snapshot had %d events", len(last))
		}
	}
	if last[1].ID != "e2" {
		t.Errorf("second event = %q, want e2", last[1].ID)
	}
}

func TestWatchStopClosesConnection(t *testing.T) {
	srv, open := sseServer(t, []Event{{ID: "e1"}})
	client, _ := New(srv.URL, nil)

	watch, err := client.WatchEvents(context.Background())
	if err != nil {
		t.Fatalf("WatchEvents failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(open) != 1 {
		select {
		case <-deadline:
			t.Fatal("stream never opened")
		case <-time.After(10 * time.Millisecond):
		}
	}

	watch.Stop()
	watch.Stop() // repeated stop must be safe

	deadline = time.After(2 * time.Second)
	for atomic.LoadInt64(open) != 0 {
		select {
		case <-deadline:
			t.Fatal("connection leaked after Stop")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The snapshot channel drains and closes.
	for {
		if _, ok := <-watch.Snapshots; !ok {
			return
		}
	}
}

func TestWatchOutlivesRequestTimeout(t *testing.T) {
	// The stream must not inherit the JSON client's body-read
	// timeout: a snapshot arriving after that deadline still lands.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher.Flush()

		time.Sleep(300 * time.Millisecond)
		data, _ := json.Marshal([]Event{{ID: "late"}})
		fmt.Fprintf(w, "event:snapshot\ndata:%s\n\n", data)
		flusher.Flush()

		<-r.Context().Done()
	}))
	defer srv.Close()

	client, _ := New(srv.URL, nil)
	client.http.Timeout = 50 * time.Millisecond

	watch, err := client.WatchEvents(context.Background())
	if err != nil {
		t.Fatalf("WatchEvents failed: %v", err)
	}
	defer watch.Stop()

	select {
	case snapshot, ok := <-watch.Snapshots:
		if !ok {
			t.Fatal("stream closed before the late snapshot arrived")
		}
		if len(snapshot) != 1 || snapshot[0].ID != "late" {
			t.Fatalf("snapshot = %+v", snapshot)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("late snapshot never arrived")
	}
}

func TestWatchRejectedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	client, _ := New(srv.URL, nil)

	if _, err := client.WatchEvents(context.Background()); err == nil {
		t.Fatal("expected an error for a rejected stream")
	}
}

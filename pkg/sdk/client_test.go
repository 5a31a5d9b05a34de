package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// fakeAPI stands in for the server's auth and event endpoints.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Role == "" {
			req.Role = "user"
		}
		writeAuthResponse(w, req.Email, req.Role)
	})
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_credentials"})
			return
		}
		writeAuthResponse(w, req.Email, "user")
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/events/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "event_not_found"})
	})
	mux.HandleFunc("GET /api/v1/events/e1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"event":           Event{ID: "e1", Title: "Launch", Date: "2026-06-01", Location: "Seattle", Link: "https://example.com"},
			"descriptionHtml": "<p>hello</p>",
		})
	})
	mux.HandleFunc("GET /api/v1/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"events": []Event{
				{ID: "e2", Title: "Newest"},
				{ID: "e1", Title: "Launch"},
			},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeAuthResponse(w http.ResponseWriter, email, role string) {
	json.NewEncoder(w).Encode(map[string]any{
		"accessToken":  "access-token",
		"refreshToken": "refresh-token",
		"deviceId":     "device-1",
		"user": map[string]string{
			"uid":   "u1",
			"email": email,
			"role":  role,
		},
	})
}

func TestSignUpKeepsRequestedRole(t *testing.T) {
	srv := fakeAPI(t)
	client, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	session, err := client.SignUp(context.Background(), "boss@example.com", "password123", "admin")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if session.Role != "admin" || !session.IsAdmin() {
		t.Errorf("role = %q, want admin", session.Role)
	}
	if RouteFor(session) != RouteAdminDashboard {
		t.Errorf("admin session should land on the admin dashboard")
	}

	current := client.CurrentSession()
	if current == nil || current.UID != "u1" {
		t.Errorf("CurrentSession = %+v", current)
	}
}

func TestSessionPersistsAcrossClients(t *testing.T) {
	srv := fakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")

	client, err := New(srv.URL, NewFileStorage(path))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Login(context.Background(), "alice@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// A fresh client hydrates the persisted session.
	revived, err := New(srv.URL, NewFileStorage(path))
	if err != nil {
		t.Fatalf("second New failed: %v", err)
	}
	session := revived.CurrentSession()
	if session == nil || session.Email != "alice@example.com" {
		t.Fatalf("hydrated session = %+v", session)
	}
}

func TestLogoutClearsStorage(t *testing.T) {
	srv := fakeAPI(t)
	path := filepath.Join(t.TempDir(), "session.json")

	client, err := New(srv.URL, NewFileStorage(path))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Login(context.Background(), "alice@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if client.CurrentSession() != nil {
		t.Error("session should be nil after logout")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("session file should be removed, stat err = %v", err)
	}

	// Logging out signed-out is a no-op.
	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("repeated Logout failed: %v", err)
	}
}

func TestSubscribeToAuthState(t *testing.T) {
	srv := fakeAPI(t)
	client, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var seen []*Session
	unsubscribe := client.SubscribeToAuthState(func(s *Session) {
		seen = append(seen, s)
	})

	if len(seen) != 1 || seen[0] != nil {
		t.Fatalf("expected an immediate nil callback, got %d calls", len(seen))
	}

	if _, err := client.Login(context.Background(), "alice@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if len(seen) != 2 || seen[1] == nil || seen[1].Email != "alice@example.com" {
		t.Fatalf("login callback missing, calls = %d", len(seen))
	}

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if len(seen) != 3 || seen[2] != nil {
		t.Fatalf("logout callback missing, calls = %d", len(seen))
	}

	unsubscribe()
	if _, err := client.Login(context.Background(), "bob@example.com", "password123"); err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("unsubscribed callback fired, calls = %d", len(seen))
	}
}

func TestLoginBadPassword(t *testing.T) {
	srv := fakeAPI(t)
	client, _ := New(srv.URL, nil)

	_, err := client.Login(context.Background(), "alice@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Op != "login" {
		t.Errorf("op = %q, want login", authErr.Op)
	}
	if client.CurrentSession() != nil {
		t.Error("failed login must not set a session")
	}
}

func TestEventNotFound(t *testing.T) {
	srv := fakeAPI(t)
	client, _ := New(srv.URL, nil)

	_, err := client.Event(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventDetail(t *testing.T) {
	srv := fakeAPI(t)
	client, _ := New(srv.URL, nil)

	detail, err := client.Event(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Event failed: %v", err)
	}
	if detail.Event.Title != "Launch" {
		t.Errorf("title = %q", detail.Event.Title)
	}
	if detail.DescriptionHTML != "<p>hello</p>" {
		t.Errorf("descriptionHtml = %q", detail.DescriptionHTML)
	}
}

func TestEventsSnapshot(t *testing.T) {
	srv := fakeAPI(t)
	client, _ := New(srv.URL, nil)

	events, err := client.Events(context.Background())
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 || events[0].ID != "e2" {
		t.Fatalf("events = %+v", events)
	}
}

func TestCreateEventValidatesBeforeSending(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"event":{"id":"e1"}}`)
	}))
	defer srv.Close()

	client, _ := New(srv.URL, nil)

	input := CreateEventInput{
		Title:       "Go Meetup",
		Description: "Talks",
		Date:        "2026-09-15",
		Location:    "Seattle",
		Link:        "https://example.com",
	}

	for _, tc := range []struct {
		field string
		mut   func(*CreateEventInput)
	}{
		{"title", func(in *CreateEventInput) { in.Title = " " }},
		{"description", func(in *CreateEventInput) { in.Description = "" }},
		{"date", func(in *CreateEventInput) { in.Date = "" }},
		{"location", func(in *CreateEventInput) { in.Location = "" }},
		{"link", func(in *CreateEventInput) { in.Link = "" }},
	} {
		bad := input
		tc.mut(&bad)

		_, err := client.CreateEvent(context.Background(), bad)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.field, err)
		}
		if vErr.Field != tc.field {
			t.Errorf("failed field = %q, want %q", vErr.Field, tc.field)
		}
	}
	if n := atomic.LoadInt64(&requests); n != 0 {
		t.Fatalf("invalid input reached the server %d times", n)
	}

	if _, err := client.CreateEvent(context.Background(), input); err != nil {
		t.Fatalf("valid CreateEvent failed: %v", err)
	}
	if n := atomic.LoadInt64(&requests); n != 1 {
		t.Fatalf("valid input should hit the server once, got %d", n)
	}
}

func TestRegisterURL(t *testing.T) {
	if _, err := RegisterURL(Event{}); !errors.Is(err, ErrNoLink) {
		t.Errorf("expected ErrNoLink, got %v", err)
	}
	url, err := RegisterURL(Event{Link: "https://example.com/r"})
	if err != nil || url != "https://example.com/r" {
		t.Errorf("url = %q, err = %v", url, err)
	}
}

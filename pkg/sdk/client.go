// Package sdk is the Go client for the eventdesk API. It carries the
// session/role/view behavior the browser front-end had: a session
// manager with persisted state and auth-state subscriptions, role
// routing, and local event-list state fed by snapshot reads or a live
// watch.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// AuthError is any failure of a sign-up, login, or federated flow.
type AuthError struct {
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	storage SessionStorage

	mu      sync.Mutex
	current *Session
	subs    map[int]func(*Session)
	nextSub int
}

// New builds a client and hydrates the session from storage, so a
// restart resumes the previous sign-in. storage may be nil for a
// purely in-memory session.
func New(baseURL string, storage SessionStorage) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		storage: storage,
		subs:    make(map[int]func(*Session)),
	}

	if storage != nil {
		session, err := storage.Load()
		if err != nil {
			return nil, fmt.Errorf("hydrate session: %w", err)
		}
		c.current = session
	}

	return c, nil
}

// CurrentSession returns the session, or nil when signed out.
func (c *Client) CurrentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSession(c.current)
}

// SubscribeToAuthState registers fn and invokes it immediately with
// the current session (nil when signed out), then again on every
// sign-in or sign-out until the returned unsubscribe func is called.
func (c *Client) SubscribeToAuthState(fn func(*Session)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	current := cloneSession(c.current)
	c.mu.Unlock()

	fn(current)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// SignUp registers an email/password account with the chosen role and
// signs in.
func (c *Client) SignUp(ctx context.Context, email, password, role string) (*Session, error) {
	return c.authRequest(ctx, "signup", "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"role":     role,
	})
}

// Login signs in with email/password; the role comes back from the
// record stored at sign-up.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authRequest(ctx, "login", "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// LoginWithGoogle exchanges a provider ID token for a session,
// storing the requested role alongside the account.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken, role string) (*Session, error) {
	return c.authRequest(ctx, "google", "/api/v1/auth/google", map[string]string{
		"idToken": idToken,
		"role":    role,
	})
}

// Logout clears local state and storage and notifies subscribers.
// Calling it signed out is a no-op. The server-side session drop is
// best-effort.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	session := c.current
	c.mu.Unlock()

	if session != nil {
		body, _ := json.Marshal(map[string]string{
			"userId":   session.UID,
			"deviceId": session.DeviceID,
		})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/logout", bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
			if resp, err := c.http.Do(req); err == nil {
				resp.Body.Close()
			}
		}
	}

	return c.setSession(nil)
}

func (c *Client) authRequest(ctx context.Context, op, path string, payload map[string]string) (*Session, error) {
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		DeviceID     string `json:"deviceId"`
		User         struct {
			UID   string `json:"uid"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}

	if err := c.doJSON(ctx, http.MethodPost, path, payload, &resp); err != nil {
		var apiErr *apiError
		if ok := asAPIError(err, &apiErr); ok {
			return nil, &AuthError{Op: op, Message: apiErr.Message}
		}
		return nil, &AuthError{Op: op, Message: err.Error()}
	}

	session := &Session{
		UID:          resp.User.UID,
		Email:        resp.User.Email,
		Role:         resp.User.Role,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		DeviceID:     resp.DeviceID,
	}

	if err := c.setSession(session); err != nil {
		return nil, err
	}
	return cloneSession(session), nil
}

// setSession swaps the process-wide session, persists the change, and
// fans it out to auth-state subscribers.
func (c *Client) setSession(session *Session) error {
	c.mu.Lock()
	c.current = session

	var persistErr error
	if c.storage != nil {
		if session == nil {
			persistErr = c.storage.Clear()
		} else {
			persistErr = c.storage.Save(session)
		}
	}

	fns := make([]func(*Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	snapshot := cloneSession(session)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(cloneSession(snapshot))
	}
	return persistErr
}

func cloneSession(s *Session) *Session {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func asAPIError(err error, target **apiError) bool {
	if e, ok := err.(*apiError); ok {
		*target = e
		return true
	}
	return false
}

// doJSON sends a JSON request and decodes the 2xx response into out.
// Error bodies are surfaced as *apiError.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	if c.current != nil {
		req.Header.Set("Authorization", "Bearer "+c.current.AccessToken)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return &apiError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

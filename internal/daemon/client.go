package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a running daemon. CLI commands use it so the daemon stays
// the only process writing state while it runs.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// IsConflict reports whether err is a 409 from the daemon, such as tapping
// without an active session.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// NewClient returns a client for the daemon at addr. When secret is set a
// short-lived token is minted for every client.
func NewClient(addr, secret string) (*Client, error) {
	c := &Client{
		baseURL: "http://" + addr,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	if secret != "" {
		tok, err := IssueToken(secret, "japa-cli", 5*time.Minute)
		if err != nil {
			return nil, err
		}
		c.token = tok
	}
	return c, nil
}

// Health checks that the daemon answers.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "unhealthy"}
	}
	return nil
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// StartSession starts a session on the daemon.
func (c *Client) StartSession(ctx context.Context, label string, target *int) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/session/start", StartRequest{Label: label, Target: target}, &out)
	return out, err
}

// Tap adds n taps.
func (c *Client) Tap(ctx context.Context, n int) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/tap", TapRequest{N: n}, &out)
	return out, err
}

// EndSession ends the active session.
func (c *Client) EndSession(ctx context.Context) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/session/end", nil, &out)
	return out, err
}

// RemoteCount reports a count observed on another device.
func (c *Client) RemoteCount(ctx context.Context, count int) (RemoteCountResponse, error) {
	var out RemoteCountResponse
	err := c.do(ctx, http.MethodPost, "/v1/remote-count", RemoteCountRequest{Count: &count}, &out)
	return out, err
}

// SignIn attaches an identity.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (Snapshot, error) {
	var out Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/signin", req, &out)
	return out, err
}

// SignOut clears the identity.
func (c *Client) SignOut(ctx context.Context) (Snapshot, error) {
	var out Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/signout", nil, &out)
	return out, err
}

// ContinueAsGuest switches the profile to guest mode.
func (c *Client) ContinueAsGuest(ctx context.Context) (Snapshot, error) {
	var out Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/guest", nil, &out)
	return out, err
}

// Donate records a completed donation.
func (c *Client) Donate(ctx context.Context, productID string) (DonationResponse, error) {
	var out DonationResponse
	err := c.do(ctx, http.MethodPost, "/v1/donations", DonationRequest{ProductID: productID}, &out)
	return out, err
}

// UpdatePreferences patches the profile preferences.
func (c *Client) UpdatePreferences(ctx context.Context, req PreferencesRequest) (Snapshot, error) {
	var out Snapshot
	err := c.do(ctx, http.MethodPatch, "/v1/profile", req, &out)
	return out, err
}

// Reset wipes history and counters.
func (c *Client) Reset(ctx context.Context) (Snapshot, error) {
	var out Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/reset", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting daemon: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		var er ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if er.Error == "" {
			er.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: er.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

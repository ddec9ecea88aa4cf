// Package apiclient talks to the studio HTTP API on behalf of one signed-in user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"studio/internal/auth"
	"studio/internal/model"
)

// ErrNotLoggedIn is returned by calls made before Login.
var ErrNotLoggedIn = errors.New("apiclient: not logged in")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("studio api error %d: %s", e.Code, e.Body)
}

// Client calls the studio API. It is safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu     sync.Mutex
	user   model.User
	tokens auth.TokenPair
}

// New creates a client with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Login signs in and keeps the issued tokens for later calls.
func (c *Client) Login(ctx context.Context, role model.Role, id, password string) (model.User, error) {
	var out struct {
		User   model.User     `json:"user"`
		Tokens auth.TokenPair `json:"tokens"`
	}
	in := map[string]string{"role": string(role), "id": id, "password": password}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", in, &out); err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	c.mu.Lock()
	c.user, c.tokens = out.User, out.Tokens
	c.mu.Unlock()
	return out.User, nil
}

// User returns the signed-in user.
func (c *Client) User() model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Client) Messages(ctx context.Context, peerID string) ([]model.DirectMessage, error) {
	var out []model.DirectMessage
	if err := c.authed(ctx, http.MethodGet, "/v1/conversations/"+url.PathEscape(peerID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Send(ctx context.Context, peerID, content string) (model.DirectMessage, error) {
	var out model.DirectMessage
	in := map[string]string{"content": content}
	if err := c.authed(ctx, http.MethodPost, "/v1/conversations/"+url.PathEscape(peerID), in, &out); err != nil {
		return model.DirectMessage{}, err
	}
	return out, nil
}

func (c *Client) Contacts(ctx context.Context) ([]model.Contact, error) {
	var out []model.Contact
	if err := c.authed(ctx, http.MethodGet, "/v1/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks the messages peerID sent to the signed-in user as read.
func (c *Client) MarkRead(ctx context.Context, peerID string) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.authed(ctx, http.MethodPost, "/v1/conversations/"+url.PathEscape(peerID)+"/read", nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// authed sends a request with the access token. An expired access token is refreshed
// once and the request retried.
func (c *Client) authed(ctx context.Context, method, path string, in, out any) error {
	c.mu.Lock()
	access := c.tokens.AccessToken
	c.mu.Unlock()
	if access == "" {
		return ErrNotLoggedIn
	}

	err := c.do(ctx, method, path, access, in, out)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return err
	}
	c.mu.Lock()
	access = c.tokens.AccessToken
	c.mu.Unlock()
	return c.do(ctx, method, path, access, in, out)
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.tokens.RefreshToken
	c.mu.Unlock()

	var pair auth.TokenPair
	if err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refreshToken": refresh}, &pair); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	c.mu.Lock()
	c.tokens = pair
	c.mu.Unlock()
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("studio api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

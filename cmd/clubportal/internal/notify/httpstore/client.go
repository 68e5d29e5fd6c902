// Package httpstore talks to the remote notification store over HTTP/JSON.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status from notification store")

const defaultTimeout = 10 * time.Second

// Client implements notify.Store against the portal's REST API.
type Client struct {
	baseURL    string
	credential string
	http       *http.Client
}

var _ notify.Store = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a client for the store at baseURL. The credential, when set,
// is sent as a bearer token.
func New(baseURL, credential string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid notification API base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		http:       &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListMine fetches the full notification set of the current subject. The
// response body may be a bare array or an object with a "data" array.
func (c *Client) ListMine(ctx context.Context) ([]notify.Notification, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/notifications/mine")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []notify.Notification{}, nil
	}

	var items []notify.Notification
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode notifications: %w", err)
		}
	} else {
		var envelope struct {
			Data []notify.Notification `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode notifications: %w", err)
		}
		items = envelope.Data
	}
	if items == nil {
		items = []notify.Notification{}
	}
	return items, nil
}

// MarkRead confirms a notification as read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notification id is required")
	}
	_, err := c.do(ctx, http.MethodPatch, "/api/notifications/"+url.PathEscape(id)+"/read")
	return err
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, method, path, resp.StatusCode)
	}
	return body, nil
}

// Package wspush subscribes to the portal's WebSocket notification feed.
package wspush

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

//go:embed new_notification.schema.json
var newNotificationSchema string

const (
	defaultBuffer    = 32
	defaultReadLimit = 64 << 10
	schemaURL        = "new_notification.schema.json"
)

// Client implements notify.PushChannel over a WebSocket.
type Client struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
	buffer     int
	schema     *jsonschema.Schema
}

var _ notify.PushChannel = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithClock sets the clock used for events without a creation time.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithHTTPClient overrides the client used for the handshake.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the feed at rawURL (ws:// or wss://).
func New(rawURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse push URL: %w", err)
	}
	switch parsed.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("push URL %q must use ws or wss", rawURL)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	c := &Client{
		url:    rawURL,
		now:    time.Now,
		buffer: defaultBuffer,
		schema: schema,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Subscribe dials the feed with credential as bearer token. The returned
// channel is closed when the socket ends; cancelling ctx closes the socket.
func (c *Client) Subscribe(ctx context.Context, credential string) (<-chan notify.Event, error) {
	if credential == "" {
		return nil, errors.New("push subscription requires a credential")
	}

	conn, _, err := websocket.Dial(ctx, c.dialURL(credential), &websocket.DialOptions{
		HTTPClient: c.httpClient,
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + credential}},
	})
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}
	conn.SetReadLimit(defaultReadLimit)

	events := make(chan notify.Event, c.buffer)
	go c.readLoop(ctx, conn, events)
	return events, nil
}

// dialURL adds the credential as a token query parameter for feeds that sit
// behind proxies which strip the Authorization header on upgrade.
func (c *Client) dialURL(credential string) string {
	u, err := url.Parse(c.url)
	if err != nil {
		return c.url
	}
	q := u.Query()
	q.Set("token", credential)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- notify.Event) {
	defer close(events)
	defer conn.Close(websocket.StatusNormalClosure, "unsubscribed")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("push channel closed: %v", err)
			}
			return
		}

		ev, ok := c.decode(data)
		if !ok {
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type newNotificationPayload struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Body      *string `json:"body"`
	Link      *string `json:"link"`
	CreatedAt *string `json:"created_at"`
}

// decode turns a frame into an event. Frames for other events and payloads
// that fail validation are skipped.
func (c *Client) decode(data []byte) (notify.Event, bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("push channel: malformed frame: %v", err)
		return notify.Event{}, false
	}
	if env.Event != notify.EventNewNotification {
		return notify.Event{}, false
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(env.Data))
	if err != nil {
		log.Printf("push channel: malformed %s payload: %v", env.Event, err)
		return notify.Event{}, false
	}
	if err := c.schema.Validate(instance); err != nil {
		log.Printf("push channel: invalid %s payload: %v", env.Event, err)
		return notify.Event{}, false
	}

	var payload newNotificationPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		log.Printf("push channel: decode %s payload: %v", env.Event, err)
		return notify.Event{}, false
	}

	n := notify.Notification{
		ID:        payload.ID,
		Title:     payload.Title,
		Body:      deref(payload.Body),
		Link:      deref(payload.Link),
		CreatedAt: c.now(),
	}
	if raw := strings.TrimSpace(deref(payload.CreatedAt)); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			n.CreatedAt = ts
		} else {
			log.Printf("push channel: notification %s has unparseable created_at %q", payload.ID, raw)
		}
	}

	return notify.Event{Name: env.Event, Notification: n}, true
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(newNotificationSchema))
	if err != nil {
		return nil, fmt.Errorf("parse notification schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add notification schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile notification schema: %w", err)
	}
	return schema, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

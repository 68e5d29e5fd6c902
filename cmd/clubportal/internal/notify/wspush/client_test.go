package wspush

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

// newFeed serves frames to every authorised subscriber, then holds the
// socket open until the client goes away.
func newFeed(t *testing.T, frames []string) (*httptest.Server, chan string) {
	t.Helper()
	auths := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		for _, frame := range frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, auths
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func collect(t *testing.T, events <-chan notify.Event, n int) []notify.Event {
	t.Helper()
	var out []notify.Event
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "channel closed after %d events", len(out))
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestSubscribe_DecodesNewNotifications(t *testing.T) {
	receipt := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	srv, auths := newFeed(t, []string{
		`{"event":"new_notification","data":{"id":"n1","title":"Welcome","body":"Glad you joined","link":"/clubs/3","created_at":"2026-10-01T08:00:00Z"}}`,
		`{"event":"club_updated","data":{"id":"c3"}}`,
		`{"event":"new_notification","data":{"title":"missing id"}}`,
		`{"event":"new_notification","data":{"id":7,"title":"wrong type"}}`,
		`not json`,
		`{"event":"new_notification","data":{"id":"n2","title":"No timestamp","link":null}}`,
	})

	client, err := New(wsURL(srv), WithClock(func() time.Time { return receipt }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.Subscribe(ctx, "secret-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", <-auths)

	got := collect(t, events, 2)

	assert.Equal(t, notify.EventNewNotification, got[0].Name)
	assert.Equal(t, "n1", got[0].Notification.ID)
	assert.Equal(t, "Welcome", got[0].Notification.Title)
	assert.Equal(t, "Glad you joined", got[0].Notification.Body)
	assert.Equal(t, "/clubs/3", got[0].Notification.Link)
	assert.False(t, got[0].Notification.Read)
	assert.True(t, got[0].Notification.CreatedAt.Equal(time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)))

	assert.Equal(t, "n2", got[1].Notification.ID)
	assert.Empty(t, got[1].Notification.Link)
	assert.True(t, got[1].Notification.CreatedAt.Equal(receipt))
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	srv, _ := newFeed(t, nil)
	client, err := New(wsURL(srv))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := client.Subscribe(ctx, "tok")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after cancel")
	}
}

func TestSubscribe_ServerDisconnectClosesChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Close(websocket.StatusGoingAway, "restarting")
	}))
	defer srv.Close()

	client, err := New(wsURL(srv))
	require.NoError(t, err)

	events, err := client.Subscribe(context.Background(), "tok")
	require.NoError(t, err)

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after server disconnect")
	}
}

func TestSubscribe_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := New(wsURL(srv))
	require.NoError(t, err)

	_, err = client.Subscribe(context.Background(), "")
	assert.Error(t, err)

	_, err = client.Subscribe(context.Background(), "tok")
	assert.Error(t, err)
}

func TestNew_RejectsScheme(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/feed", "http://example.com/feed", "https://example.com/feed"} {
		_, err := New(raw)
		assert.ErrorContains(t, err, "must use ws or wss", raw)
	}

	_, err := New("wss://example.com/feed")
	assert.NoError(t, err)
}

func TestDialURL_AddsToken(t *testing.T) {
	client, err := New("wss://portal.example.edu/ws/notifications?v=2")
	require.NoError(t, err)

	assert.Equal(t, "wss://portal.example.edu/ws/notifications?token=a+b%2Fc&v=2", client.dialURL("a b/c"))
}

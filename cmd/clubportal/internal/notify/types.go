// Package notify keeps a client-side notification list in sync with a remote
// store: one bulk load, live pushes, and read-state changes that are applied
// only after the store confirms them.
package notify

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClosed is returned by Engine operations after Close.
	ErrClosed = errors.New("notification engine closed")
	// ErrNotFound is returned when marking an id the engine does not hold.
	ErrNotFound = errors.New("notification not found")
)

// Notification is the client's cached copy of a remote notification.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// EventNewNotification is the only push event the engine consumes.
const EventNewNotification = "new_notification"

// Event is a decoded push channel message.
type Event struct {
	Name         string
	Notification Notification
}

// Store is the remote source of truth for notifications.
type Store interface {
	// ListMine returns every notification for the current subject.
	ListMine(ctx context.Context) ([]Notification, error)
	// MarkRead confirms a read-state change remotely.
	MarkRead(ctx context.Context, id string) error
}

// PushChannel opens a live event stream authenticated with credential.
// The returned channel is closed when the connection ends or ctx is done.
type PushChannel interface {
	Subscribe(ctx context.Context, credential string) (<-chan Event, error)
}

// Snapshot is a point-in-time copy of the engine's observable state.
type Snapshot struct {
	Items      []Notification
	Loading    bool
	Subscribed bool
}

// UnreadCount counts unread items. It is always derived, never stored.
func (s Snapshot) UnreadCount() int {
	return countUnread(s.Items)
}

func countUnread(items []Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

package notifications

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

func TestRenderSnapshot(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	snap := notify.Snapshot{Items: []notify.Notification{
		{ID: "n-2", Title: "New post", Body: "Photos from the fair", Link: "/clubs/7/posts/1", CreatedAt: created},
		{ID: "n-1", Title: "Meeting", Body: "Room 3", Read: true, CreatedAt: created},
	}}

	var buf bytes.Buffer
	require.NoError(t, renderSnapshot(&buf, snap))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "1 unread of 2\n"))
	assert.Contains(t, out, "/clubs/7/posts/1")
	assert.Less(t, strings.Index(out, "n-2"), strings.Index(out, "n-1"), "arrival order is preserved")
}

func TestRenderSnapshot_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderSnapshot(&buf, notify.Snapshot{Loading: true}))
	assert.Equal(t, "Loading notifications...\n0 unread of 0\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
